package tui

import (
	"context"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
)

// MockChatService implements driving.ChatService for testing.
type MockChatService struct {
	NewSessionFunc func(courseID string) (driving.ChatSession, error)
}

func (m *MockChatService) NewSession(courseID string) (driving.ChatSession, error) {
	if m.NewSessionFunc != nil {
		return m.NewSessionFunc(courseID)
	}
	return &MockSession{courseID: courseID}, nil
}

func (m *MockChatService) Search(
	ctx context.Context, courseID, query string, topK int,
) ([]domain.RetrievedContext, error) {
	return nil, nil
}

// MockSession implements driving.ChatSession for testing.
type MockSession struct {
	courseID string
}

func (m *MockSession) ID() string       { return "session" }
func (m *MockSession) CourseID() string { return m.courseID }

func (m *MockSession) Post(ctx context.Context, text string) (*domain.Answer, error) {
	return &domain.Answer{Text: "answer", SearchQuery: text}, nil
}

func (m *MockSession) PostStream(ctx context.Context, text string, onDelta func(string)) (*domain.Answer, error) {
	onDelta("answer")
	return m.Post(ctx, text)
}

func (m *MockSession) History() []domain.ChatMessage     { return nil }
func (m *MockSession) Seed(history []domain.ChatMessage) {}
func (m *MockSession) Reset()                            {}
