// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// ContextList displays the course material retrieved for the latest answer.
type ContextList struct {
	contexts []domain.RetrievedContext
	query    string
	styles   *styles.Styles
	width    int
	height   int
}

// NewContextList creates a new context list component.
func NewContextList(s *styles.Styles) *ContextList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ContextList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (c *ContextList) Init() tea.Cmd {
	return nil
}

// Update handles list messages.
func (c *ContextList) Update(msg tea.Msg) (*ContextList, tea.Cmd) {
	return c, nil
}

// View renders the contexts, one preview line each, limited to the height.
func (c *ContextList) View() string {
	if len(c.contexts) == 0 {
		return c.styles.Muted.Render("No course material retrieved")
	}

	header := fmt.Sprintf("Sources (%d)", len(c.contexts))
	if c.query != "" {
		header += " for " + fmt.Sprintf("%q", c.query)
	}
	lines := []string{c.styles.Subtitle.Render(header)}

	visible := c.height - 1
	if visible < 1 {
		visible = 1
	}
	if visible > len(c.contexts) {
		visible = len(c.contexts)
	}

	for i := 0; i < visible; i++ {
		lines = append(lines, c.renderContext(i, &c.contexts[i]))
	}
	if hidden := len(c.contexts) - visible; hidden > 0 {
		lines = append(lines, c.styles.Muted.Render(fmt.Sprintf("  ... %d more", hidden)))
	}

	return strings.Join(lines, "\n")
}

func (c *ContextList) renderContext(index int, rc *domain.RetrievedContext) string {
	score := c.styles.Muted.Render(fmt.Sprintf("%.2f", rc.Score))

	maxLen := c.width - 12
	if maxLen < 20 {
		maxLen = 20
	}
	preview := strings.Join(strings.Fields(rc.Text), " ")
	if runes := []rune(preview); len(runes) > maxLen {
		preview = string(runes[:maxLen-3]) + "..."
	}

	return fmt.Sprintf("%d. %s ", index+1, score) + c.styles.Context.Render(preview)
}

// SetContexts replaces the contexts and the query that retrieved them.
func (c *ContextList) SetContexts(query string, contexts []domain.RetrievedContext) {
	c.query = query
	c.contexts = contexts
}

// Contexts returns the current contexts.
func (c *ContextList) Contexts() []domain.RetrievedContext {
	return c.contexts
}

// Query returns the search query behind the contexts.
func (c *ContextList) Query() string {
	return c.query
}

// Clear removes all contexts.
func (c *ContextList) Clear() {
	c.contexts = nil
	c.query = ""
}

// SetDimensions sets the component dimensions.
func (c *ContextList) SetDimensions(width, height int) {
	c.width = width
	c.height = height
}

// Width returns the current width.
func (c *ContextList) Width() int {
	return c.width
}

// Height returns the current height.
func (c *ContextList) Height() int {
	return c.height
}

// Count returns the number of contexts.
func (c *ContextList) Count() int {
	return len(c.contexts)
}

// IsEmpty returns whether the list is empty.
func (c *ContextList) IsEmpty() bool {
	return len(c.contexts) == 0
}
