package services

import (
	"fmt"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// RecordBuilder wraps chunks into records, numbering them across every
// document of one ingestion run so chunk ids are unique per course.
type RecordBuilder struct {
	courseID string
	next     int
}

// NewRecordBuilder creates a builder for one course.
func NewRecordBuilder(courseID string) *RecordBuilder {
	return &RecordBuilder{courseID: domain.NormaliseCourseID(courseID)}
}

// Build returns one record per chunk. Each record's metadata is the document
// metadata plus the course, source and numbering keys, overlaid with the
// chunk's own metadata. Splitter keys win on collision.
func (b *RecordBuilder) Build(doc *domain.Document, chunks []domain.Chunk) []domain.Record {
	records := make([]domain.Record, 0, len(chunks))
	for _, chunk := range chunks {
		base := doc.Metadata.Merge(domain.Metadata{
			domain.KeyCourseID:     b.courseID,
			domain.KeyDocumentType: doc.Type.String(),
			domain.KeyChunkID:      fmt.Sprintf("%s_%d", b.courseID, b.next),
			domain.KeyChunkIndex:   chunk.Position,
		})
		if doc.IsRemote() {
			base[domain.KeySourceURL] = doc.URI
		} else {
			base[domain.KeySourcePath] = doc.URI
		}
		if doc.Title != "" {
			base[domain.KeyTitle] = doc.Title
		}

		records = append(records, domain.Record{
			Text:     chunk.Text,
			Metadata: base.Merge(chunk.Metadata),
		})
		b.next++
	}
	return records
}

// Count returns how many records have been built.
func (b *RecordBuilder) Count() int {
	return b.next
}
