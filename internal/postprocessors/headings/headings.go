// Package headings splits markdown into sections aligned to its heading hierarchy.
package headings

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// Reserved heading names for text outside any heading.
const (
	PreambleHeading     = "Document Preamble"
	FullDocumentHeading = "Full Document"
)

// PathSeparator joins the titles of a heading path.
const PathSeparator = ">"

var headingLine = regexp.MustCompile(`^(#{1,6})[ \t]+(.+?)[ \t]*$`)

// Section is the span from one heading line to the next.
type Section struct {
	// Text is the heading line followed by its content, trimmed.
	Text string

	// Heading is the section title, or a reserved name.
	Heading string

	// Level is the heading depth 1-6, or 0 for reserved sections.
	Level int

	// Path joins the open titles at levels up to Level.
	Path string
}

// Split scans markdown once, top to bottom, and returns its sections in order.
// Lines inside fenced code blocks are never headings. Text before the first
// heading becomes a preamble section; a document without headings becomes a
// single full-document section. Empty sections are dropped.
func Split(markdown string) []Section {
	var (
		sections []Section
		open     [7]string
		lines    []string
		current  = Section{Heading: FullDocumentHeading, Path: FullDocumentHeading}
		fence    string
	)

	flush := func() {
		text := strings.TrimSpace(strings.Join(lines, "\n"))
		if text != "" {
			current.Text = text
			sections = append(sections, current)
		}
		lines = lines[:0]
	}

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if marker := fenceMarker(line); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(marker, fence):
				fence = ""
			}
		} else if fence == "" {
			if m := headingLine.FindStringSubmatch(line); m != nil {
				if current.Level == 0 {
					current.Heading, current.Path = PreambleHeading, PreambleHeading
				}
				flush()

				level := len(m[1])
				open[level] = title(m[2])
				for l := level + 1; l < len(open); l++ {
					open[l] = ""
				}
				current = Section{Heading: open[level], Level: level, Path: joinPath(open[1 : level+1])}
			}
		}
		lines = append(lines, line)
	}
	flush()

	return sections
}

func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, marker) {
			return marker
		}
	}
	return ""
}

// title drops an optional closing sequence of '#'.
func title(raw string) string {
	if t := strings.TrimSpace(strings.TrimRight(raw, "#")); t != "" {
		return t
	}
	return raw
}

func joinPath(titles []string) string {
	parts := make([]string, 0, len(titles))
	for _, t := range titles {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, PathSeparator)
}

// Processor applies Split as a pipeline stage.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a heading splitter processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "headings"
}

// Process splits the document content into one chunk per section.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	sections := Split(doc.Content)
	chunks := make([]domain.Chunk, 0, len(sections))
	for i, s := range sections {
		chunks = append(chunks, domain.Chunk{
			Text:     s.Text,
			Position: i,
			Metadata: domain.Metadata{
				domain.KeyHeading:      s.Heading,
				domain.KeyHeadingLevel: s.Level,
				domain.KeyHeadingPath:  s.Path,
			},
		})
	}
	return chunks, nil
}
