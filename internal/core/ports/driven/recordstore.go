package driven

import (
	"context"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// RecordStore persists record files between the ingest, embed and index steps.
type RecordStore interface {
	// Save writes all records for a course and stage, replacing any previous file.
	// Returns the location written.
	Save(ctx context.Context, courseID string, stage domain.RecordStage, records []domain.Record) (string, error)

	// Load reads the records for a course and stage.
	// Returns domain.ErrNotFound if nothing has been saved.
	Load(ctx context.Context, courseID string, stage domain.RecordStage) ([]domain.Record, error)

	// Path returns where the records for a course and stage live.
	Path(courseID string, stage domain.RecordStage) string
}
