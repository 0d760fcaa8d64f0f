package services

import (
	"sort"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// AggregateByFile collapses chunk hits into one hit per file. Each file
// keeps its highest score and the page range of the hit that scored it;
// on equal scores the earlier hit wins. Files are ordered by score,
// descending, with ties in order of first appearance.
func AggregateByFile(hits []domain.ChunkHit) []domain.FileHit {
	files := make([]domain.FileHit, 0, len(hits))
	pos := make(map[string]int, len(hits))

	for _, h := range hits {
		i, seen := pos[h.File]
		if !seen {
			pos[h.File] = len(files)
			files = append(files, domain.FileHit{
				File:      h.File,
				Topic:     h.Topic,
				BestScore: h.Score,
				BestPages: h.Pages,
			})
			continue
		}
		if h.Score > files[i].BestScore {
			files[i].BestScore = h.Score
			files[i].BestPages = h.Pages
		}
	}

	sort.SliceStable(files, func(a, b int) bool {
		return files[a].BestScore > files[b].BestScore
	})
	return files
}
