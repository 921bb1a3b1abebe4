package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(NewPorts(&MockChatService{}), "F27SA")
	require.NoError(t, err)
	return app
}

func TestNewApp_Success(t *testing.T) {
	app := newTestApp(t)

	require.NotNil(t, app)
	assert.Equal(t, "F27SA", app.Session().CourseID())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{}, "F27SA")

	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingChatService)
}

func TestNewApp_MissingCourse(t *testing.T) {
	app, err := NewApp(NewPorts(&MockChatService{}), "  ")

	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingCourse)
}

func TestNewApp_SessionError(t *testing.T) {
	chat := &MockChatService{
		NewSessionFunc: func(string) (driving.ChatSession, error) {
			return nil, domain.ErrLLMUnavailable
		},
	}

	app, err := NewApp(NewPorts(chat), "F27SA")

	assert.Nil(t, app)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)
	ctx := context.WithValue(context.Background(), struct{}{}, "v")

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	assert.NotNil(t, newTestApp(t).Init())
}

func TestApp_View_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", newTestApp(t).View())
}

func TestApp_WindowSize(t *testing.T) {
	app := newTestApp(t)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Nil(t, cmd)
	assert.Same(t, app, model)
	assert.True(t, app.Ready())
	assert.Equal(t, 100, app.Width())
	assert.Equal(t, 30, app.Height())
	assert.Contains(t, app.View(), "CourseMate")
}

func TestApp_QuitKey(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_ForwardsKeysToChat(t *testing.T) {
	app := newTestApp(t)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.MessageSubmitted{Text: "hello"}, cmd())
}
