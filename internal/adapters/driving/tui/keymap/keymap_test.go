package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_QuitBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Quit.Keys()
	assert.Contains(t, keys, "ctrl+c")
	assert.NotContains(t, keys, "q", "plain letters belong to the input line")
}

func TestDefaultKeyMap_SendBinding(t *testing.T) {
	km := DefaultKeyMap()

	assert.Contains(t, km.Send.Keys(), "enter")
}

func TestDefaultKeyMap_ScrollBindings(t *testing.T) {
	km := DefaultKeyMap()

	assert.Contains(t, km.ScrollUp.Keys(), "pgup")
	assert.Contains(t, km.ScrollDown.Keys(), "pgdown")
}

func TestDefaultKeyMap_NoPrintableKeys(t *testing.T) {
	km := DefaultKeyMap()

	all := []key.Binding{
		km.Quit, km.Help, km.Send, km.ToggleContext,
		km.Reset, km.ScrollUp, km.ScrollDown, km.Cancel,
	}
	for _, b := range all {
		for _, k := range b.Keys() {
			assert.Greater(t, len([]rune(k)), 1, "key %q would swallow typed input", k)
		}
	}
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()

	assert.Len(t, bindings, 3)
	assert.Equal(t, km.Send, bindings[0])
	assert.Equal(t, km.Quit, bindings[2])
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.FullHelp()

	assert.Len(t, bindings, 3)    // 3 groups
	assert.Len(t, bindings[0], 2) // Send, Cancel
	assert.Len(t, bindings[1], 3) // ScrollUp, ScrollDown, ToggleContext
	assert.Len(t, bindings[2], 3) // Reset, Help, Quit
}

func TestMatches_True(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("f1", km.Help))
	assert.True(t, Matches("enter", km.Send))
	assert.True(t, Matches("ctrl+r", km.Reset))
}

func TestMatches_False(t *testing.T) {
	km := DefaultKeyMap()

	assert.False(t, Matches("q", km.Quit))
	assert.False(t, Matches("?", km.Help))
	assert.False(t, Matches("pgdown", km.ScrollUp))
}

func TestBindings_HaveHelp(t *testing.T) {
	km := DefaultKeyMap()

	testCases := []struct {
		name    string
		binding key.Binding
	}{
		{"Quit", km.Quit},
		{"Help", km.Help},
		{"Send", km.Send},
		{"ToggleContext", km.ToggleContext},
		{"Reset", km.Reset},
		{"ScrollUp", km.ScrollUp},
		{"ScrollDown", km.ScrollDown},
		{"Cancel", km.Cancel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			help := tc.binding.Help()
			assert.NotEmpty(t, help.Key, "binding should have help key")
		})
	}
}
