package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

func TestAggregateByFile(t *testing.T) {
	hits := []domain.ChunkHit{
		{File: "a.pdf", Topic: "NLP", Pages: "1-2", Score: 0.8},
		{File: "b.pdf", Topic: "Vision", Pages: "3-3", Score: 0.7},
		{File: "a.pdf", Topic: "NLP", Pages: "5-6", Score: 0.9},
		{File: "c.pdf", Topic: "NLP", Pages: "1-1", Score: 0.7},
		{File: "b.pdf", Topic: "Vision", Pages: "4-4", Score: 0.7},
	}

	files := AggregateByFile(hits)

	assert.Equal(t, []domain.FileHit{
		{File: "a.pdf", Topic: "NLP", BestScore: 0.9, BestPages: "5-6"},
		{File: "b.pdf", Topic: "Vision", BestScore: 0.7, BestPages: "3-3"},
		{File: "c.pdf", Topic: "NLP", BestScore: 0.7, BestPages: "1-1"},
	}, files)
}

func TestAggregateByFile_Empty(t *testing.T) {
	files := AggregateByFile(nil)

	assert.NotNil(t, files)
	assert.Empty(t, files)
}
