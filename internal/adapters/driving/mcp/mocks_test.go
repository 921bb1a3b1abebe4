package mcp

import (
	"context"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	session    *mockSession
	sessionErr error
	contexts   []domain.RetrievedContext
	searchErr  error

	lastCourse string
	lastQuery  string
	lastTopK   int
}

func (m *mockChatService) NewSession(courseID string) (driving.ChatSession, error) {
	m.lastCourse = courseID
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	return m.session, nil
}

func (m *mockChatService) Search(_ context.Context, courseID, query string, topK int) ([]domain.RetrievedContext, error) {
	m.lastCourse, m.lastQuery, m.lastTopK = courseID, query, topK
	return m.contexts, m.searchErr
}

// mockSession is a mock implementation of driving.ChatSession.
type mockSession struct {
	answer  *domain.Answer
	err     error
	seeded  []domain.ChatMessage
	posted  []string
	history []domain.ChatMessage
}

func (m *mockSession) ID() string       { return "session-1" }
func (m *mockSession) CourseID() string { return "F21CA" }

func (m *mockSession) Post(_ context.Context, text string) (*domain.Answer, error) {
	m.posted = append(m.posted, text)
	return m.answer, m.err
}

func (m *mockSession) PostStream(ctx context.Context, text string, onDelta func(string)) (*domain.Answer, error) {
	answer, err := m.Post(ctx, text)
	if err == nil {
		onDelta(answer.Text)
	}
	return answer, err
}

func (m *mockSession) History() []domain.ChatMessage     { return m.history }
func (m *mockSession) Seed(history []domain.ChatMessage) { m.seeded = history }
func (m *mockSession) Reset()                            { m.history = nil }

// mockSettingsService overrides the course lookups; other methods are unused.
type mockSettingsService struct {
	driving.SettingsService
	courses []domain.Course
	err     error
}

func (m *mockSettingsService) Courses() ([]domain.Course, error) {
	return m.courses, m.err
}

func (m *mockSettingsService) ResolveCourse(courseID string) (*domain.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.courses {
		if c.ID == courseID {
			return &c, nil
		}
	}
	return &domain.Course{ID: courseID, Collection: domain.CollectionFor("", courseID)}, nil
}
