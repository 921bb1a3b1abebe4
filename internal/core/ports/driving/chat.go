package driving

import (
	"context"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// ChatService opens chat sessions and runs retrieval-only queries.
type ChatService interface {
	// NewSession starts an empty session scoped to one course.
	NewSession(courseID string) (ChatSession, error)

	// Search embeds the query and returns the topK nearest contexts.
	// A topK of zero uses the configured default.
	Search(ctx context.Context, courseID, query string, topK int) ([]domain.RetrievedContext, error)
}

// ChatSession is one conversation. It owns the history and the retrieval cache.
// A session is not safe for concurrent use.
type ChatSession interface {
	// ID returns the session identifier.
	ID() string

	// CourseID returns the course the session is scoped to.
	CourseID() string

	// Post answers one user message. The turn is appended to the history on success.
	Post(ctx context.Context, text string) (*domain.Answer, error)

	// PostStream is Post with the answer delivered incrementally to onDelta.
	PostStream(ctx context.Context, text string, onDelta func(string)) (*domain.Answer, error)

	// History returns a copy of the conversation so far.
	History() []domain.ChatMessage

	// Seed replaces the history, e.g. with turns supplied by an MCP client.
	Seed(history []domain.ChatMessage)

	// Reset clears the history and both cache maps.
	Reset()
}
