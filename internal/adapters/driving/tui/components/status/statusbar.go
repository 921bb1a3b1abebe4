// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateHelp     State = "help"
)

// Bar displays the course, session state and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	message  string
	course   string
	turns    int
	cached   bool
	width    int
	fullHelp bool
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	// StatusBar pads one cell on each side.
	padding := s.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	prefix := ""
	if s.course != "" {
		prefix = s.styles.Subtitle.Render(s.course) + " "
	}

	switch s.state {
	case StateThinking:
		return prefix + s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			return prefix + s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return prefix + s.styles.Error.Render("Error")
	case StateHelp:
		return prefix + s.styles.Normal.Render("Help")
	case StateReady:
	}

	if s.turns == 0 {
		return prefix + s.styles.Muted.Render("Ready")
	}
	info := fmt.Sprintf("%d turns", s.turns)
	if s.turns == 1 {
		info = "1 turn"
	}
	if s.cached {
		info += " (cached)"
	}
	return prefix + s.styles.Normal.Render(info)
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.fullHelp {
		for _, group := range s.keymap.FullHelp() {
			bindings = append(bindings, group...)
		}
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetCourse sets the course shown on the left.
func (s *Bar) SetCourse(course string) {
	s.course = course
}

// SetTurns records how many answered turns the session holds and whether
// the last answer's retrieval was served from the session cache.
func (s *Bar) SetTurns(turns int, cached bool) {
	s.turns = turns
	s.cached = cached
}

// Turns returns the number of answered turns.
func (s *Bar) Turns() int {
	return s.turns
}

// ToggleHelp switches between short and full keybinding hints.
func (s *Bar) ToggleHelp() {
	s.fullHelp = !s.fullHelp
}

// FullHelp reports whether full hints are shown.
func (s *Bar) FullHelp() bool {
	return s.fullHelp
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.turns = 0
	s.cached = false
}
