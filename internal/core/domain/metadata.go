package domain

import "fmt"

// Well-known metadata keys carried by documents, chunks and records.
const (
	KeyCourseID     = "course_id"
	KeySourcePath   = "source_path"
	KeySourceURL    = "source_url"
	KeyDocumentType = "document_type"
	KeyTitle        = "title"
	KeyChunkID      = "chunk_id"
	KeyChunkIndex   = "chunk_index"
	KeyPage         = "page"
	KeyHeading      = "heading"
	KeyHeadingLevel = "heading_level"
	KeyHeadingPath  = "heading_path"
	KeyMIMEType     = "mime_type"
)

// Metadata is a string-keyed attribute map attached to documents, chunks and records.
// Values must be JSON-serialisable.
type Metadata map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (m Metadata) Clone() Metadata {
	dst := make(Metadata, len(m))
	for k, v := range m {
		dst[k] = v
	}
	return dst
}

// Merge returns a new map holding m's entries overlaid with override's.
// On collision the value from override wins. Neither input is modified.
func (m Metadata) Merge(override Metadata) Metadata {
	dst := make(Metadata, len(m)+len(override))
	for k, v := range m {
		dst[k] = v
	}
	for k, v := range override {
		dst[k] = v
	}
	return dst
}

// String returns the value for key formatted as a string, or "" when absent.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the value for key as an int.
// JSON numbers decode as float64 so that case is handled too.
func (m Metadata) Int(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
