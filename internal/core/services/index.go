package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// indexBatchSize bounds the records sent per Insert call.
const indexBatchSize = 100

// IndexService loads embedded records into a course's vector collection.
type IndexService struct {
	settings    driving.SettingsService
	vectorStore driven.VectorStore
	records     driven.RecordStore
}

// NewIndexService creates a new indexing service.
func NewIndexService(settings driving.SettingsService, vectorStore driven.VectorStore, records driven.RecordStore) *IndexService {
	return &IndexService{
		settings:    settings,
		vectorStore: vectorStore,
		records:     records,
	}
}

// Index inserts the embedded records of a course. With recreate the
// collection is dropped and rebuilt first. Records without an embedding or a
// course id are skipped. Every vector must share one dimension.
func (s *IndexService) Index(ctx context.Context, courseID string, recreate bool) (*domain.IndexReport, error) {
	if s.vectorStore == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}
	course, err := s.settings.ResolveCourse(courseID)
	if err != nil {
		return nil, err
	}
	loaded, err := s.records.Load(ctx, course.ID, domain.StageEmbedded)
	if err != nil {
		return nil, fmt.Errorf("load embedded records: %w", err)
	}

	start := time.Now()
	report := &domain.IndexReport{CourseID: course.ID, Collection: course.Collection}

	records := make([]domain.Record, 0, len(loaded))
	for i := range loaded {
		r := loaded[i]
		switch {
		case !r.HasEmbedding():
			logger.Warn("Skipping record %q without embedding", r.ChunkID())
			report.Skipped++
			continue
		case r.CourseID() == "":
			logger.Warn("Skipping record %q without course_id", r.ChunkID())
			report.Skipped++
			continue
		}
		if report.Dimensions == 0 {
			report.Dimensions = len(r.Embedding)
		} else if len(r.Embedding) != report.Dimensions {
			return nil, fmt.Errorf("%w: record %q has %d, expected %d",
				domain.ErrDimensionMismatch, r.ChunkID(), len(r.Embedding), report.Dimensions)
		}
		records = append(records, r)
	}
	if len(records) == 0 {
		logger.Warn("No records to index for %s", course.ID)
		report.Duration = time.Since(start)
		return report, nil
	}

	logger.Section("Index " + course.Collection)
	if err := s.vectorStore.EnsureCollection(ctx, course.Collection, report.Dimensions, recreate); err != nil {
		return nil, fmt.Errorf("ensure collection %s: %w", course.Collection, err)
	}
	for from := 0; from < len(records); from += indexBatchSize {
		to := min(from+indexBatchSize, len(records))
		if err := s.vectorStore.Insert(ctx, course.Collection, records[from:to]); err != nil {
			return nil, fmt.Errorf("insert into %s: %w", course.Collection, err)
		}
		report.Inserted = to
		logger.Debug("Inserted %d/%d", to, len(records))
	}

	report.Duration = time.Since(start)
	logger.Info("Indexed %d records into %s", report.Inserted, course.Collection)
	return report, nil
}
