package driven

import (
	"context"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// EvalStore reads evaluation cases and records the answers given.
type EvalStore interface {
	// Load returns all cases in row order.
	Load(ctx context.Context) ([]domain.EvalCase, error)

	// SaveResponses writes the responses of one case back to its row.
	SaveResponses(ctx context.Context, c domain.EvalCase) error

	// Close releases resources and flushes pending writes.
	Close() error
}

// EvalStoreOpener opens an EvalStore for a source (file path or spreadsheet id).
type EvalStoreOpener interface {
	Open(ctx context.Context, source, worksheet string) (EvalStore, error)
}
