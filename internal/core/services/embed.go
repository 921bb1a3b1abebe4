package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

// Ensure EmbedService implements the interface.
var _ driving.EmbedService = (*EmbedService)(nil)

// EmbedService attaches embeddings to the ingested records of a course.
type EmbedService struct {
	settings         driving.SettingsService
	embeddingService driven.EmbeddingService
	records          driven.RecordStore
}

// NewEmbedService creates a new embedding service.
// A nil embeddingService makes Embed return ErrEmbeddingUnavailable.
func NewEmbedService(
	settings driving.SettingsService,
	embeddingService driven.EmbeddingService,
	records driven.RecordStore,
) *EmbedService {
	return &EmbedService{
		settings:         settings,
		embeddingService: embeddingService,
		records:          records,
	}
}

// Embed loads the ingested records, embeds them batch by batch and writes the
// embedded record file. Records with blank text are skipped. Any failed
// batch aborts the run and nothing is written.
func (s *EmbedService) Embed(ctx context.Context, courseID string) (*domain.EmbedReport, error) {
	if s.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	courseID = domain.NormaliseCourseID(courseID)
	if courseID == "" {
		return nil, fmt.Errorf("%w: course id is required", domain.ErrInvalidInput)
	}

	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	loaded, err := s.records.Load(ctx, courseID, domain.StageIngested)
	if err != nil {
		return nil, fmt.Errorf("load ingested records: %w", err)
	}

	start := time.Now()
	report := &domain.EmbedReport{CourseID: courseID, Model: s.embeddingService.ModelName()}

	records := make([]domain.Record, 0, len(loaded))
	for i := range loaded {
		if strings.TrimSpace(loaded[i].Text) == "" {
			logger.Warn("Skipping record %q with empty text", loaded[i].ChunkID())
			report.Skipped++
			continue
		}
		records = append(records, loaded[i])
	}
	if len(records) == 0 {
		logger.Warn("No records to embed for %s", courseID)
		report.Duration = time.Since(start)
		return report, nil
	}

	batchSize := settings.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = domain.DefaultEmbedBatchSize
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps := settings.Embedding.RequestsPerSecond; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	logger.Section("Embed " + courseID)
	for from := 0; from < len(records); from += batchSize {
		to := min(from+batchSize, len(records))
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		texts := make([]string, 0, to-from)
		for _, r := range records[from:to] {
			texts = append(texts, r.Text)
		}
		vectors, err := s.embeddingService.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed records %d-%d: %w", from, to-1, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embed records %d-%d: got %d vectors for %d texts", from, to-1, len(vectors), len(texts))
		}
		for i, vec := range vectors {
			records[from+i].Embedding = vec
		}
		logger.Debug("Embedded %d/%d", to, len(records))
	}

	report.Embedded = len(records)
	report.Dimensions = len(records[0].Embedding)
	path, err := s.records.Save(ctx, courseID, domain.StageEmbedded, records)
	if err != nil {
		return nil, fmt.Errorf("save embedded records: %w", err)
	}
	report.Path = path
	report.Duration = time.Since(start)
	logger.Info("Embedded %d records (%d dims) to %s", report.Embedded, report.Dimensions, path)
	return report, nil
}
