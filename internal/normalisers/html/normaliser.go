package html

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// googleSitesContentClass marks the content column of published Google Sites.
const googleSitesContentClass = "f32l6"

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise extracts the main content of a page as text.
// Content is expected to be UTF-8; the web connector decodes other charsets.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	root, err := html.Parse(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	w := &textWriter{base: baseURL(raw.URI)}
	w.walk(mainContent(root))

	metadata := raw.Metadata.Clone()
	metadata[domain.KeyMIMEType] = raw.MIMEType

	doc := domain.Document{
		ID:        uuid.New().String(),
		URI:       raw.URI,
		Title:     extractHTMLTitle(root, raw.URI),
		Type:      documentType(raw.URI),
		Content:   w.String(),
		Metadata:  metadata,
		FetchedAt: time.Now(),
	}

	return &driven.NormaliseResult{
		Documents: []domain.Document{doc},
	}, nil
}

// documentType classifies a page by its host.
func documentType(uri string) domain.DocumentType {
	u, err := url.Parse(uri)
	if err == nil && strings.EqualFold(u.Hostname(), "sites.google.com") {
		return domain.DocumentTypeGoogleSite
	}
	return domain.DocumentTypeWebPage
}

func baseURL(uri string) *url.URL {
	u, err := url.Parse(uri)
	if err != nil || !u.IsAbs() {
		return nil
	}
	return u
}

// mainContent picks the region holding the page's content. Preference order:
// the Google Sites content column, role="main", <main>, <article>, <body>.
func mainContent(root *html.Node) *html.Node {
	matchers := []func(*html.Node) bool{
		func(n *html.Node) bool { return hasClass(n, googleSitesContentClass) },
		func(n *html.Node) bool { return attr(n, "role") == "main" },
		func(n *html.Node) bool { return n.DataAtom == atom.Main },
		func(n *html.Node) bool { return n.DataAtom == atom.Article },
		func(n *html.Node) bool { return n.DataAtom == atom.Body },
	}
	for _, match := range matchers {
		if found := find(root, match); found != nil {
			return found
		}
	}
	return root
}

// find returns the first element in document order that satisfies match.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// extractHTMLTitle reads <title>, falling back to the last path segment.
func extractHTMLTitle(root *html.Node, uri string) string {
	if t := find(root, func(n *html.Node) bool { return n.DataAtom == atom.Title }); t != nil {
		var b strings.Builder
		for c := t.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		if title := strings.Join(strings.Fields(b.String()), " "); title != "" {
			return title
		}
	}

	filename := filepath.Base(strings.TrimRight(uri, "/"))
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Head:     true,
	atom.Nav:      true,
}

// block elements start and end a line.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true, atom.Main: true,
	atom.Header: true, atom.Footer: true, atom.Aside: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Br: true, atom.Hr: true, atom.Figure: true, atom.Figcaption: true,
}

// textWriter flattens a node tree into trimmed, non-empty lines.
type textWriter struct {
	base  *url.URL
	cur   strings.Builder
	lines []string
}

func (w *textWriter) flush() {
	if line := strings.Join(strings.Fields(w.cur.String()), " "); line != "" {
		w.lines = append(w.lines, line)
	}
	w.cur.Reset()
}

func (w *textWriter) line(s string) {
	w.flush()
	w.cur.WriteString(s)
	w.flush()
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.cur.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
		switch n.DataAtom {
		case atom.Img:
			if alt := strings.TrimSpace(attr(n, "alt")); alt != "" {
				w.line("Image alt text: " + alt)
			}
			if title := strings.TrimSpace(attr(n, "title")); title != "" {
				w.line("Image title: " + title)
			}
			return
		case atom.Iframe:
			if src := attr(n, "src"); src != "" {
				w.line("Embedded content detected. Source URL: " + w.resolve(src))
			}
			return
		case atom.Td, atom.Th:
			w.cur.WriteString(" ")
		}
	}

	isBlock := n.Type == html.ElementNode && block[n.DataAtom]
	if isBlock {
		w.flush()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if isBlock {
		w.flush()
	}
}

func (w *textWriter) resolve(ref string) string {
	if w.base == nil {
		return ref
	}
	u, err := w.base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// String returns the collected lines joined by newlines.
func (w *textWriter) String() string {
	w.flush()
	return strings.Join(w.lines, "\n")
}
