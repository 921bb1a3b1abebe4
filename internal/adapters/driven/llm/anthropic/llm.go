// Package anthropic provides an LLM service adapter using the Anthropic API.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-haiku-latest"
	DefaultTimeout = 120 * time.Second

	// defaultMaxTokens is sent when the caller sets no limit; the API requires one.
	defaultMaxTokens = 1024
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-haiku-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides chat completions using the Anthropic Messages API.
type LLMService struct {
	client sdk.Client
	model  string
}

// NewLLMService creates a new Anthropic LLM service.
// SDK retries are disabled; failures surface to the caller.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client: sdk.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithRequestTimeout(cfg.Timeout),
			option.WithMaxRetries(0),
		),
		model: cfg.Model,
	}, nil
}

// Chat conducts a multi-turn conversation.
// System messages are lifted into the request's system prompt.
func (s *LLMService) Chat(ctx context.Context, messages []domain.ChatMessage, opts driven.ChatOptions) (string, error) {
	msg, err := s.client.Messages.New(ctx, s.params(messages, opts))
	if err != nil {
		return "", fmt.Errorf("anthropic: create message: %w", err)
	}

	var reply strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(sdk.TextBlock); ok {
			reply.WriteString(text.Text)
		}
	}
	if reply.Len() == 0 {
		return "", fmt.Errorf("anthropic: no text content returned")
	}
	return reply.String(), nil
}

// ChatStream conducts a multi-turn conversation, passing each text delta to
// onDelta as it arrives. It returns the concatenated reply.
func (s *LLMService) ChatStream(
	ctx context.Context,
	messages []domain.ChatMessage,
	opts driven.ChatOptions,
	onDelta func(string),
) (string, error) {
	stream := s.client.Messages.NewStreaming(ctx, s.params(messages, opts))
	defer stream.Close()

	var reply strings.Builder
	for stream.Next() {
		event, ok := stream.Current().AsAny().(sdk.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if delta, ok := event.Delta.AsAny().(sdk.TextDelta); ok && delta.Text != "" {
			reply.WriteString(delta.Text)
			onDelta(delta.Text)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("anthropic: stream: %w", err)
	}
	return reply.String(), nil
}

func (s *LLMService) params(messages []domain.ChatMessage, opts driven.ChatOptions) sdk.MessageNewParams {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(s.model),
		MaxTokens: defaultMaxTokens,
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = int64(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		params.Temperature = sdk.Float(opts.Temperature)
	}

	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			params.System = append(params.System, sdk.TextBlockParam{Text: msg.Content})
		case domain.RoleAssistant:
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(sdk.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, sdk.NewUserMessage(sdk.NewTextBlock(msg.Content)))
		}
	}
	return params
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing one model.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx, sdk.ModelListParams{Limit: sdk.Int(1)}); err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
