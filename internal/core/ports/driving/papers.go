package driving

import (
	"context"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// PaperService ingests, organises and searches PDF papers.
type PaperService interface {
	// AddPaper ingests one PDF. Precondition failures (missing file,
	// non-PDF path) are returned as errors; every later failure is reported
	// through the returned outcome.
	AddPaper(ctx context.Context, path string, opts domain.AddPaperOptions) (*domain.IngestResult, error)

	// BatchOrganize ingests every PDF below folder, one at a time, classifying
	// each against topics. One file's failure never aborts the batch.
	BatchOrganize(ctx context.Context, folder string, topics []string) (*domain.BatchResult, error)

	// SearchPapers answers a natural-language query over paper chunks.
	SearchPapers(ctx context.Context, query string, opts domain.PaperSearchOptions) (*domain.PaperSearchResult, error)

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)
}
