// Package jsonfile persists record files as JSON arrays, one file per course
// and stage, so they can be inspected and edited between pipeline steps.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// File name suffixes per stage.
var suffixes = map[domain.RecordStage]string{
	domain.StageIngested: "_site_data.json",
	domain.StageEmbedded: "_embeddings.json",
}

// RecordStore reads and writes <dir>/<course><suffix>.
type RecordStore struct {
	dir string
}

// NewRecordStore creates a record store rooted at dir.
func NewRecordStore(dir string) *RecordStore {
	return &RecordStore{dir: dir}
}

// Path returns the file for a course and stage.
func (s *RecordStore) Path(courseID string, stage domain.RecordStage) string {
	suffix, ok := suffixes[stage]
	if !ok {
		suffix = "_" + string(stage) + ".json"
	}
	return filepath.Join(s.dir, courseID+suffix)
}

// Save writes records through a temporary file and renames it into place.
func (s *RecordStore) Save(_ context.Context, courseID string, stage domain.RecordStage, records []domain.Record) (string, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	if records == nil {
		records = []domain.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding records: %w", err)
	}

	path := s.Path(courseID, stage)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing records: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("replacing %s: %w", path, err)
	}
	return path, nil
}

// Load reads the records for a course and stage.
func (s *RecordStore) Load(_ context.Context, courseID string, stage domain.RecordStage) ([]domain.Record, error) {
	path := s.Path(courseID, stage)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return records, nil
}
