package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoSession indicates that no chat session was provided.
	ErrNoSession = errors.New("chat session is required")
)
