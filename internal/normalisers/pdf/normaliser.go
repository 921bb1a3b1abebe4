// Package pdf extracts text from PDF files with github.com/ledongthuc/pdf,
// a pure Go reader. Each page with text becomes its own document so that
// retrieved chunks can cite a page number.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrNoText is returned for PDFs without a text layer, such as scans.
var ErrNoText = errors.New("pdf has no extractable text")

// Extraction is the text of a PDF split by page.
type Extraction struct {
	// Title is the document information title, if any.
	Title string

	// Pages holds the plain text of each page in order.
	Pages []string
}

// Extractor reads page text from PDF bytes.
type Extractor func(content []byte) (*Extraction, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	extract Extractor
}

// New creates a PDF normaliser backed by ledongthuc/pdf.
func New() *Normaliser {
	return &Normaliser{extract: Extract}
}

// NewWithExtractor creates a normaliser with a custom extractor (for testing).
func NewWithExtractor(extract Extractor) *Normaliser {
	return &Normaliser{extract: extract}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns one PDF_Text document per page that has text.
// Pages are numbered from 1 in the page metadata key.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	extraction, err := n.extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	title := strings.TrimSpace(extraction.Title)
	if title == "" {
		title = titleFromURI(raw.URI)
	}

	now := time.Now()
	var docs []domain.Document
	for i, text := range extraction.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		metadata := raw.Metadata.Clone()
		metadata[domain.KeyMIMEType] = raw.MIMEType
		metadata[domain.KeyPage] = i + 1

		docs = append(docs, domain.Document{
			ID:        uuid.New().String(),
			URI:       raw.URI,
			Title:     title,
			Type:      domain.DocumentTypePDF,
			Content:   text,
			Metadata:  metadata,
			FetchedAt: now,
		})
	}

	if len(docs) == 0 {
		return nil, ErrNoText
	}
	return &driven.NormaliseResult{Documents: docs}, nil
}

// Extract reads every page's plain text. The reader panics on some
// malformed files, so panics are turned into errors.
func Extract(content []byte) (result *Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	result = &Extraction{
		Title: reader.Trailer().Key("Info").Key("Title").Text(),
	}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			result.Pages = append(result.Pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		result.Pages = append(result.Pages, text)
	}
	return result, nil
}

// titleFromURI derives a title from the file name.
func titleFromURI(uri string) string {
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
