// Package yamlfile keeps evaluation cases in a YAML file holding a sequence
// of mappings with question, follow_up, response and follow_up_response keys.
// Responses are written back into the same file after each case.
package yamlfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

var (
	_ driven.EvalStore       = (*Store)(nil)
	_ driven.EvalStoreOpener = Opener{}
)

// Opener opens YAML case files. The worksheet argument is ignored.
type Opener struct{}

// Open reads path and returns a store over its cases.
func (Opener) Open(_ context.Context, path, _ string) (driven.EvalStore, error) {
	return Open(path)
}

// Store is an evaluation store backed by one YAML file.
type Store struct {
	mu    sync.Mutex
	path  string
	cases []domain.EvalCase
}

// Open reads the cases in path.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cases: %w", err)
	}

	var cases []domain.EvalCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidInput, path, err)
	}
	for i := range cases {
		cases[i].Row = i + 1
	}

	return &Store{path: path, cases: cases}, nil
}

// Load returns a copy of the cases in file order.
func (s *Store) Load(_ context.Context) ([]domain.EvalCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.EvalCase(nil), s.cases...), nil
}

// SaveResponses stores the case's responses and rewrites the file.
func (s *Store) SaveResponses(_ context.Context, c domain.EvalCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Row < 1 || c.Row > len(s.cases) {
		return fmt.Errorf("%w: row %d out of range", domain.ErrInvalidInput, c.Row)
	}
	s.cases[c.Row-1].Response = c.Response
	s.cases[c.Row-1].FollowUpResponse = c.FollowUpResponse
	return s.write()
}

// write replaces the file through a temporary sibling (caller must hold lock).
func (s *Store) write() error {
	data, err := yaml.Marshal(s.cases)
	if err != nil {
		return fmt.Errorf("encoding cases: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cases: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cases: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// Close is a no-op; every save is already on disk.
func (s *Store) Close() error {
	return nil
}
