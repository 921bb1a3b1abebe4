package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

// QueryRewriter turns a follow-up question into a standalone search query.
type QueryRewriter struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewQueryRewriter creates a rewriter backed by the LLM and the query_rewrite prompt.
func NewQueryRewriter(llm driven.LLMService, prompts driven.PromptStore) *QueryRewriter {
	return &QueryRewriter{llm: llm, prompts: prompts}
}

// Rewrite asks the model once for a self-contained rephrasing of query given
// the recent turns, oldest first. The call is not retried. An empty reply
// falls back to the original query.
func (r *QueryRewriter) Rewrite(ctx context.Context, query string, recent []domain.ChatMessage) (string, error) {
	template, err := r.prompts.Load(driven.PromptQueryRewrite)
	if err != nil {
		return "", fmt.Errorf("load rewrite prompt: %w", err)
	}

	lines := make([]string, len(recent))
	for i, m := range recent {
		lines[i] = m.Role + ": " + m.Content
	}
	prompt := fmt.Sprintf(template, strings.Join(lines, "\n"), query)

	reply, err := r.llm.Chat(ctx, []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}}, driven.ChatOptions{})
	if err != nil {
		return "", err
	}

	rewritten := strings.TrimSpace(reply)
	if rewritten == "" {
		logger.Debug("Rewriter returned nothing, using original query")
		return query, nil
	}
	logger.Debug("Rewrote %q as %q", query, rewritten)
	return rewritten, nil
}
