package driven

import (
	"context"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// LLMService provides chat completions for query rewriting and answering.
//
// Implementations may include:
//   - OpenAI (GPT-4o family) and OpenAI-compatible servers
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the full reply.
	Chat(ctx context.Context, messages []domain.ChatMessage, opts ChatOptions) (string, error)

	// ChatStream is Chat with incremental delivery. onDelta receives each text
	// fragment in order; the concatenation is also returned.
	ChatStream(ctx context.Context, messages []domain.ChatMessage, opts ChatOptions, onDelta func(string)) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
