package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPorts(t *testing.T) {
	chat := &MockChatService{}

	ports := NewPorts(chat)

	require.NotNil(t, ports)
	assert.Equal(t, chat, ports.Chat)
}

func TestPorts_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, NewPorts(&MockChatService{}).Validate())
	})

	t.Run("missing chat service", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingChatService)
	})

	t.Run("nil ports", func(t *testing.T) {
		var ports *Ports
		assert.ErrorIs(t, ports.Validate(), ErrInvalidPorts)
	})
}
