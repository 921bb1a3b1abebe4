package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// MessageInput is one prior conversation turn.
type MessageInput struct {
	Role    string `json:"role" jsonschema:"user or assistant"`
	Content string `json:"content" jsonschema:"the message text"`
}

// AskInput is the input schema for the ask_course tool.
type AskInput struct {
	Course   string         `json:"course" jsonschema:"the course code, e.g. F21CA"`
	Question string         `json:"question" jsonschema:"the question to answer from course material"`
	History  []MessageInput `json:"history,omitempty" jsonschema:"earlier turns of the conversation, oldest first"`
}

// AskOutput is the output schema for the ask_course tool.
type AskOutput struct {
	Answer      string          `json:"answer"`
	SearchQuery string          `json:"search_query"`
	Contexts    []ContextOutput `json:"contexts"`
}

// SearchInput is the input schema for the search_course tool.
type SearchInput struct {
	Course string `json:"course" jsonschema:"the course code, e.g. F21CA"`
	Query  string `json:"query" jsonschema:"the search query"`
	TopK   int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default from settings)"`
}

// SearchOutput is the output schema for the search_course tool.
type SearchOutput struct {
	Contexts []ContextOutput `json:"contexts"`
	Count    int             `json:"count"`
}

// ContextOutput is one retrieved chunk.
type ContextOutput struct {
	ChunkID string  `json:"chunk_id,omitempty"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_course",
		Description: "Answer a question using only the indexed material of one course",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_course",
		Description: "Return the course material chunks most similar to a query",
	}, s.handleSearch)
}

// handleAsk answers in a fresh session seeded with the caller's history.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	session, err := s.ports.Chat.NewSession(input.Course)
	if err != nil {
		return nil, AskOutput{}, err
	}

	history := make([]domain.ChatMessage, 0, len(input.History))
	for _, m := range input.History {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != domain.RoleUser && role != domain.RoleAssistant {
			return nil, AskOutput{}, fmt.Errorf("%w: history role %q", domain.ErrInvalidInput, m.Role)
		}
		history = append(history, domain.ChatMessage{Role: role, Content: m.Content})
	}
	session.Seed(history)

	answer, err := session.Post(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:      answer.Text,
		SearchQuery: answer.SearchQuery,
		Contexts:    toContextOutputs(answer.Contexts),
	}, nil
}

// handleSearch runs retrieval only.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	contexts, err := s.ports.Chat.Search(ctx, input.Course, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Contexts: toContextOutputs(contexts),
		Count:    len(contexts),
	}, nil
}

func toContextOutputs(contexts []domain.RetrievedContext) []ContextOutput {
	out := make([]ContextOutput, len(contexts))
	for i, c := range contexts {
		out[i] = ContextOutput{ChunkID: c.ChunkID, Score: c.Score, Text: c.Text}
	}
	return out
}
