package driving

import (
	"context"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// IngestService turns course sources into a record file.
type IngestService interface {
	// Ingest fetches, normalises, chunks and records every source.
	// Per-source failures are reported, not returned. An empty result
	// writes no file and returns a report with zero records.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error)
}

// EmbedService adds embeddings to a course's ingested records.
type EmbedService interface {
	// Embed loads the ingested records, embeds them and writes the embedded file.
	Embed(ctx context.Context, courseID string) (*domain.EmbedReport, error)
}

// IndexService loads embedded records into the vector store.
type IndexService interface {
	// Index inserts the embedded records into the course collection.
	// When recreate is true the collection is dropped first.
	Index(ctx context.Context, courseID string, recreate bool) (*domain.IndexReport, error)
}

// EvalService answers evaluation cases and records the responses.
type EvalService interface {
	// Run evaluates every unanswered case of the request's source.
	Run(ctx context.Context, req domain.EvalRequest) (*domain.EvalReport, error)
}
