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

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns course sources into the ingested record file.
type IngestService struct {
	resolver  driven.ConnectorResolver
	registry  driven.NormaliserRegistry
	pipelines driven.PipelineFactory
	records   driven.RecordStore
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	resolver driven.ConnectorResolver,
	registry driven.NormaliserRegistry,
	pipelines driven.PipelineFactory,
	records driven.RecordStore,
) *IngestService {
	return &IngestService{
		resolver:  resolver,
		registry:  registry,
		pipelines: pipelines,
		records:   records,
	}
}

// Ingest fetches, normalises and chunks every source in order and writes the
// resulting records. A failing source or document is recorded in the report
// and skipped. When nothing is produced no file is written.
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	courseID := domain.NormaliseCourseID(req.CourseID)
	if courseID == "" {
		return nil, fmt.Errorf("%w: course id is required", domain.ErrInvalidInput)
	}
	if len(req.Sources) == 0 {
		return nil, fmt.Errorf("%w: at least one source is required", domain.ErrInvalidInput)
	}

	start := time.Now()
	report := &domain.IngestReport{CourseID: courseID}
	builder := NewRecordBuilder(courseID)
	var records []domain.Record

	logger.Section("Ingest " + courseID)
	for _, source := range req.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		docs, failures := s.fetch(ctx, source)
		report.Failures = append(report.Failures, failures...)

		for i := range docs {
			doc := &docs[i]
			doc.CourseID = courseID

			chunks, err := s.chunk(ctx, doc)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				report.Failures = append(report.Failures, domain.SourceFailure{Source: doc.URI, Err: err})
				continue
			}
			if len(chunks) == 0 {
				logger.Debug("No chunks from %s", doc.URI)
				continue
			}
			records = append(records, builder.Build(doc, chunks)...)
			report.Documents++
		}
	}

	for _, f := range report.Failures {
		logger.Warn("Skipping %s: %v", f.Source, f.Err)
	}

	report.Records = len(records)
	report.Duration = time.Since(start)
	if len(records) == 0 {
		logger.Warn("No records produced for %s, nothing written", courseID)
		return report, nil
	}

	path, err := s.records.Save(ctx, courseID, domain.StageIngested, records)
	if err != nil {
		return nil, fmt.Errorf("save records: %w", err)
	}
	report.Path = path
	logger.Info("Wrote %d records from %d documents to %s", report.Records, report.Documents, path)
	return report, nil
}

// fetch reads one source and normalises everything it yields.
func (s *IngestService) fetch(ctx context.Context, source string) ([]domain.Document, []domain.SourceFailure) {
	connector, err := s.resolver.Resolve(source)
	if err != nil {
		return nil, []domain.SourceFailure{{Source: source, Err: err}}
	}

	logger.Debug("Fetching %s with %s connector", source, connector.Type())
	result, err := connector.Fetch(ctx, source)
	if err != nil {
		return nil, []domain.SourceFailure{{Source: source, Err: fmt.Errorf("fetch: %w", err)}}
	}

	failures := append([]domain.SourceFailure(nil), result.Failures...)
	var docs []domain.Document
	for i := range result.Documents {
		raw := &result.Documents[i]
		normalised, err := s.registry.Normalise(ctx, raw)
		if err != nil {
			failures = append(failures, domain.SourceFailure{Source: raw.URI, Err: fmt.Errorf("normalise: %w", err)})
			continue
		}
		docs = append(docs, normalised.Documents...)
	}
	return docs, failures
}

func (s *IngestService) chunk(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	pipeline, err := s.pipelines.PipelineFor(doc.Type)
	if err != nil {
		return nil, fmt.Errorf("pipeline for %s: %w", doc.Type, err)
	}
	chunks, err := pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}
	return chunks, nil
}
