package domain

import "time"

// DocumentType classifies where a document's text came from.
// It is persisted verbatim in record metadata.
type DocumentType string

// Known document types.
const (
	DocumentTypePDF        DocumentType = "PDF_Text"
	DocumentTypeGoogleSite DocumentType = "Google_Site"
	DocumentTypeWebPage    DocumentType = "Web_Page"
	DocumentTypeMarkdown   DocumentType = "Markdown"
	DocumentTypeText       DocumentType = "Text"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypePDF, DocumentTypeGoogleSite, DocumentTypeWebPage, DocumentTypeMarkdown, DocumentTypeText:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// AllDocumentTypes returns every known document type.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypePDF,
		DocumentTypeGoogleSite,
		DocumentTypeWebPage,
		DocumentTypeMarkdown,
		DocumentTypeText,
	}
}

// Document is the extracted text of one course source.
// A multi-page PDF yields one Document per page.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// CourseID scopes the document to one course corpus.
	CourseID string

	// URI is the original location (file path or URL).
	URI string

	// Title is the human-readable title.
	Title string

	// Type classifies the source.
	Type DocumentType

	// Content is the full extracted text before chunking.
	Content string

	// Metadata contains source-specific key-value pairs (e.g. page).
	Metadata Metadata

	// FetchedAt is when the source was read.
	FetchedAt time.Time
}

// IsRemote returns true if the document came from a URL rather than a local file.
func (d *Document) IsRemote() bool {
	return hasScheme(d.URI, "http://") || hasScheme(d.URI, "https://") || hasScheme(d.URI, "github://")
}

func hasScheme(uri, scheme string) bool {
	return len(uri) >= len(scheme) && uri[:len(scheme)] == scheme
}

// Chunk is a bounded span of a document's text.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Position is the ordinal position within the document.
	Position int

	// Metadata holds splitter-provided keys such as heading_path.
	Metadata Metadata
}
