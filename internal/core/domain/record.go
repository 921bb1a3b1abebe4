package domain

// Record is a chunk with its merged metadata.
// It is the unit persisted to the record files, embedded and indexed.
type Record struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// Metadata holds course, source, document type and splitter keys.
	Metadata Metadata `json:"metadata"`

	// Embedding is set once the record has been through the embedding step.
	Embedding []float32 `json:"embedding,omitempty"`
}

// CourseID returns the record's course identifier.
func (r *Record) CourseID() string {
	return r.Metadata.String(KeyCourseID)
}

// ChunkID returns the record's chunk identifier.
func (r *Record) ChunkID() string {
	return r.Metadata.String(KeyChunkID)
}

// HasEmbedding returns true if the record carries a non-empty vector.
func (r *Record) HasEmbedding() bool {
	return len(r.Embedding) > 0
}

// RecordStage identifies which record file is meant.
type RecordStage string

// Record file stages.
const (
	// StageIngested is the output of ingestion: text and metadata only.
	StageIngested RecordStage = "ingested"

	// StageEmbedded is the output of the embedding step.
	StageEmbedded RecordStage = "embedded"
)
