// Package chunker provides a sentence-aware text chunking processor.
package chunker

import (
	"context"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// DefaultMaxSize is the default maximum chunk length in characters.
const DefaultMaxSize = domain.DefaultChunkMaxSize

// DefaultOverlap is the default overlap budget in characters.
const DefaultOverlap = domain.DefaultChunkOverlap

// Processor splits document content into sentence-aligned chunks.
// It implements the PostProcessor interface.
type Processor struct {
	maxSize int
	overlap int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxSize sets the maximum chunk size in characters.
func WithMaxSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.maxSize = size
		}
	}
}

// WithOverlap sets the overlap budget between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxSize: DefaultMaxSize,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.maxSize {
		p.overlap = p.maxSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxSize returns the configured maximum chunk size.
func (p *Processor) MaxSize() int {
	return p.maxSize
}

// Overlap returns the configured overlap budget.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process chunks the document. As the first stage it chunks the document
// content. Otherwise every incoming chunk is re-chunked, except heading
// sections that already fit: their heading line is kept verbatim. Pieces
// inherit the metadata of the chunk they came from.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if chunks == nil {
		var out []domain.Chunk
		for text := range Chunks(doc.Content, p.maxSize, p.overlap) {
			out = append(out, domain.Chunk{Text: text, Position: len(out), Metadata: domain.Metadata{}})
		}
		return out, nil
	}

	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if isSection(c) && runeLen(c.Text) <= p.maxSize {
			c.Position = len(out)
			out = append(out, c)
			continue
		}
		for text := range Chunks(c.Text, p.maxSize, p.overlap) {
			out = append(out, domain.Chunk{Text: text, Position: len(out), Metadata: c.Metadata.Clone()})
		}
	}
	return out, nil
}

// isSection reports whether c came from the heading splitter.
func isSection(c domain.Chunk) bool {
	_, ok := c.Metadata[domain.KeyHeadingPath]
	return ok
}
