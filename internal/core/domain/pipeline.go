package domain

import (
	"fmt"
	"time"
)

// IngestRequest describes one ingestion run.
type IngestRequest struct {
	// CourseID scopes every produced record.
	CourseID string

	// Sources are file paths, directories, URLs or github: references.
	Sources []string
}

// SourceFailure records a source or document that could not be processed.
type SourceFailure struct {
	Source string
	Err    error
}

// Error implements error.
func (f SourceFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Source, f.Err)
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	CourseID  string
	Documents int
	Records   int
	Path      string
	Failures  []SourceFailure
	Duration  time.Duration
}

// EmbedReport summarises an embedding run.
type EmbedReport struct {
	CourseID   string
	Embedded   int
	Skipped    int
	Dimensions int
	Model      string
	Path       string
	Duration   time.Duration
}

// IndexReport summarises an indexing run.
type IndexReport struct {
	CourseID   string
	Collection string
	Inserted   int
	Skipped    int
	Dimensions int
	Duration   time.Duration
}
