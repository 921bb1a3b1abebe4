// Package cleaner normalises whitespace in extracted text.
package cleaner

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

var (
	newlineRuns = regexp.MustCompile(`\n{2,}`)
	spaceRuns   = regexp.MustCompile(` {2,}`)
)

// Clean collapses newline runs to one newline, collapses space runs to one
// space and trims the result. It is idempotent.
func Clean(text string) string {
	text = newlineRuns.ReplaceAllString(text, "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Processor applies Clean as a pipeline stage.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a cleaner processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "cleaner"
}

// Process cleans the incoming chunks, dropping any left empty.
// As the first stage it receives no chunks and emits the cleaned document
// content as a single chunk.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if chunks == nil {
		text := Clean(doc.Content)
		if text == "" {
			return nil, nil
		}
		return []domain.Chunk{{Text: text, Metadata: domain.Metadata{}}}, nil
	}

	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		c.Text = Clean(c.Text)
		if c.Text == "" {
			continue
		}
		c.Position = len(out)
		out = append(out, c)
	}
	return out, nil
}
