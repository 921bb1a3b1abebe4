// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
)

const (
	// contextPanelHeight is the number of lines given to retrieved sources.
	contextPanelHeight = 6

	// eventBuffer bounds the streamed deltas queued ahead of the view.
	eventBuffer = 64
)

// entry is one rendered turn of the transcript.
type entry struct {
	role string
	text string
	err  bool
}

// View shows the transcript, the streamed answer in progress, the sources
// behind the last answer, and the question input.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.ChatInput
	contexts  *list.ContextList
	statusbar *status.Bar
	viewport  viewport.Model
	spinner   spinner.Model

	session driving.ChatSession
	ctx     context.Context

	transcript  []entry
	pending     strings.Builder
	question    string
	events      chan tea.Msg
	cancel      context.CancelFunc
	thinking    bool
	showContext bool

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view bound to one session.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.ChatSession) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.AssistantLabel

	v := &View{
		styles:      s,
		keymap:      km,
		input:       input.NewChatInput(s),
		contexts:    list.NewContextList(s),
		statusbar:   status.NewBar(s, km),
		viewport:    viewport.New(80, 10),
		spinner:     sp,
		session:     session,
		ctx:         context.Background(),
		showContext: true,
		width:       80,
		height:      24,
	}
	if session != nil {
		v.statusbar.SetCourse(session.CourseID())
		v.restoreHistory(session.History())
	}
	return v
}

// WithContext sets the parent context for answers.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.MessageSubmitted:
		return v, v.startAnswer(msg.Text)

	case messages.AnswerDelta:
		v.pending.WriteString(msg.Text)
		v.refreshTranscript()
		return v, waitForEvent(v.events)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.SessionReset:
		v.reset()
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refreshTranscript()
		return v, cmd
	}

	var inputCmd, viewportCmd tea.Cmd
	v.input, inputCmd = v.input.Update(msg)
	v.viewport, viewportCmd = v.viewport.Update(msg)
	return v, tea.Batch(inputCmd, viewportCmd)
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Cancel):
		if v.thinking && v.cancel != nil {
			v.cancel()
		}
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Send):
		if v.thinking {
			return v, nil
		}
		text := v.input.Submit()
		if text == "" {
			return v, nil
		}
		return v, func() tea.Msg { return messages.MessageSubmitted{Text: text} }

	case keymap.Matches(keyStr, v.keymap.Reset):
		if v.thinking {
			return v, nil
		}
		return v, func() tea.Msg { return messages.SessionReset{} }

	case keymap.Matches(keyStr, v.keymap.ToggleContext):
		v.showContext = !v.showContext
		v.layout()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Help):
		v.statusbar.ToggleHelp()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollUp):
		v.viewport.ViewUp()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollDown):
		v.viewport.ViewDown()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// startAnswer posts the question on a goroutine and streams its events
// back through the returned command.
func (v *View) startAnswer(text string) tea.Cmd {
	if v.session == nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: ErrNoSession} }
	}

	v.err = nil
	v.question = text
	v.thinking = true
	v.pending.Reset()
	v.transcript = append(v.transcript, entry{role: domain.RoleUser, text: text})
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.refreshTranscript()

	parent := v.ctx
	ctx, cancel := context.WithCancel(parent)
	v.cancel = cancel
	events := make(chan tea.Msg, eventBuffer)
	v.events = events

	session := v.session
	go func() {
		defer close(events)
		answer, err := session.PostStream(ctx, text, func(delta string) {
			select {
			case events <- messages.AnswerDelta{Text: delta}:
			case <-ctx.Done():
			}
		})
		select {
		case events <- messages.AnswerReceived{Answer: answer, Err: err}:
		case <-parent.Done():
		}
	}()

	return tea.Batch(waitForEvent(events), v.spinner.Tick)
}

// waitForEvent reads the next streamed event. A closed channel yields nil,
// which Bubbletea ignores.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// handleAnswer settles the turn started by startAnswer.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.thinking = false
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.events = nil
	v.pending.Reset()

	if msg.Err != nil {
		// The failed question goes back into the input for a retry.
		v.input.SetValue(v.question)
		v.transcript = append(v.transcript, entry{role: domain.RoleAssistant, text: msg.Err.Error(), err: true})
		v.setError(msg.Err)
		v.refreshTranscript()
		return
	}

	v.transcript = append(v.transcript, entry{role: domain.RoleAssistant, text: msg.Answer.Text})
	v.contexts.SetContexts(msg.Answer.SearchQuery, msg.Answer.Contexts)
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
	v.statusbar.SetTurns(len(v.session.History())/2, msg.Answer.SearchCached)
	v.refreshTranscript()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) reset() {
	if v.session != nil {
		v.session.Reset()
	}
	v.transcript = nil
	v.pending.Reset()
	v.err = nil
	v.contexts.Clear()
	v.statusbar.Clear()
	v.refreshTranscript()
}

func (v *View) restoreHistory(history []domain.ChatMessage) {
	for _, m := range history {
		if m.Role == domain.RoleSystem {
			continue
		}
		v.transcript = append(v.transcript, entry{role: m.Role, text: m.Content})
	}
	v.statusbar.SetTurns(len(history)/2, false)
	v.refreshTranscript()
}

// refreshTranscript re-renders the transcript into the viewport and
// follows the newest line.
func (v *View) refreshTranscript() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.transcript) == 0 && !v.thinking {
		return v.styles.Muted.Render("Ask a question about the course material to get started.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-2, 20))
	blocks := make([]string, 0, len(v.transcript)+1)
	for _, e := range v.transcript {
		blocks = append(blocks, v.renderEntry(wrap, e))
	}
	if v.thinking {
		label := v.styles.AssistantLabel.Render("Assistant ") + v.spinner.View()
		blocks = append(blocks, label+"\n"+wrap.Render(v.pending.String()))
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderEntry(wrap lipgloss.Style, e entry) string {
	var label string
	switch e.role {
	case domain.RoleUser:
		label = v.styles.UserLabel.Render("You")
	default:
		label = v.styles.AssistantLabel.Render("Assistant")
	}

	text := wrap.Render(e.text)
	if e.err {
		text = v.styles.Error.Render(wrap.Render("Error: " + e.text))
	}
	return label + "\n" + text
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("CourseMate")
	if v.session != nil {
		header += v.styles.Muted.Render(fmt.Sprintf("  %s", v.session.CourseID()))
	}

	sections := []string{header, v.viewport.View()}
	if v.showContext {
		sections = append(sections, v.contexts.View())
	}
	sections = append(sections, v.input.View(), v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.layout()
}

// layout divides the height between the transcript and the fixed panels.
func (v *View) layout() {
	// header, bordered input (3 lines), status bar
	fixed := 5
	if v.showContext {
		fixed += contextPanelHeight
	}
	transcriptHeight := v.height - fixed
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	v.viewport.Width = v.width
	v.viewport.Height = transcriptHeight
	v.input.SetWidth(v.width)
	v.contexts.SetDimensions(v.width, contextPanelHeight)
	v.statusbar.SetWidth(v.width)
	v.refreshTranscript()
}

// Shutdown cancels an answer still in flight.
func (v *View) Shutdown() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Thinking reports whether an answer is being generated.
func (v *View) Thinking() bool {
	return v.thinking
}

// ShowContext reports whether retrieved sources are displayed.
func (v *View) ShowContext() bool {
	return v.showContext
}

// Input returns the current input text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the input text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// Contexts returns the sources behind the last answer.
func (v *View) Contexts() []domain.RetrievedContext {
	return v.contexts.Contexts()
}

// TranscriptLen returns the number of rendered turns.
func (v *View) TranscriptLen() int {
	return len(v.transcript)
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}
