package driven

import (
	"context"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// Connector fetches raw course material from one kind of location.
type Connector interface {
	// Type returns the connector identifier (e.g., "filesystem", "web", "github").
	Type() string

	// Fetch retrieves every document reachable from source.
	// A connector that walks many files may return partial results
	// together with per-file failures.
	Fetch(ctx context.Context, source string) (*FetchResult, error)
}

// FetchResult contains documents fetched from one source.
type FetchResult struct {
	// Documents are the fetched raw documents.
	Documents []domain.RawDocument

	// Failures lists items under the source that could not be read.
	Failures []domain.SourceFailure
}

// ConnectorResolver picks the connector for a source string.
type ConnectorResolver interface {
	// Resolve returns the connector responsible for source.
	Resolve(source string) (Connector, error)
}
