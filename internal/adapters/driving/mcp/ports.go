package mcp

import (
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Chat answers questions and runs retrieval.
	Chat driving.ChatService

	// Settings lists configured courses. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
