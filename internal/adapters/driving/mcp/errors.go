// Package mcp exposes course question answering over the Model Context
// Protocol, so assistants can query indexed course material as a tool.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
