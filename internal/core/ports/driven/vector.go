package driven

import (
	"context"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// VectorStore holds embedded records in named collections and answers
// nearest-neighbour queries over them. The core treats it as an external capability.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	// When recreate is true an existing collection is dropped first.
	// Returns domain.ErrDimensionMismatch if an existing collection has another dimension.
	EnsureCollection(ctx context.Context, collection string, dimensions int, recreate bool) error

	// Insert adds embedded records to the collection.
	Insert(ctx context.Context, collection string, records []domain.Record) error

	// Search returns up to topK records ordered by descending similarity.
	// Returns domain.ErrNotFound if the collection does not exist.
	Search(ctx context.Context, collection string, query []float32, topK int) ([]domain.RetrievedContext, error)

	// DropCollection removes a collection and its records. Missing collections are not an error.
	DropCollection(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}
