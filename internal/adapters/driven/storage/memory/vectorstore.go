package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/storage/rank"
	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// collection is one named set of vectors with a fixed dimension.
type collection struct {
	dimensions int
	records    []rank.Candidate
}

// VectorStore is an in-memory implementation of driven.VectorStore.
// Contents are lost when the process exits.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string]*collection),
	}
}

// EnsureCollection creates the collection, dropping it first when recreate is set.
func (s *VectorStore) EnsureCollection(_ context.Context, name string, dimensions int, recreate bool) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.collections[name]; ok && !recreate {
		if existing.dimensions != dimensions {
			return fmt.Errorf("%w: collection %s has %d dimensions, got %d",
				domain.ErrDimensionMismatch, name, existing.dimensions, dimensions)
		}
		return nil
	}
	s.collections[name] = &collection{dimensions: dimensions}
	return nil
}

// Insert appends records to an existing collection.
func (s *VectorStore) Insert(_ context.Context, name string, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}

	// Validate the whole batch before storing any of it.
	for _, r := range records {
		if len(r.Embedding) != c.dimensions {
			return fmt.Errorf("%w: record %s has %d dimensions, collection %s has %d",
				domain.ErrDimensionMismatch, r.ChunkID(), len(r.Embedding), name, c.dimensions)
		}
	}
	for _, r := range records {
		c.records = append(c.records, rank.Candidate{
			Text:      r.Text,
			ChunkID:   r.ChunkID(),
			Embedding: append([]float32(nil), r.Embedding...),
		})
	}
	return nil
}

// Search ranks the collection by cosine similarity.
func (s *VectorStore) Search(_ context.Context, name string, query []float32, topK int) ([]domain.RetrievedContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	if len(query) != c.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %s has %d",
			domain.ErrDimensionMismatch, len(query), name, c.dimensions)
	}
	return rank.TopK(query, c.records, topK), nil
}

// DropCollection removes a collection.
func (s *VectorStore) DropCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// Count returns the number of records in a collection.
func (s *VectorStore) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return len(c.records)
	}
	return 0
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}
