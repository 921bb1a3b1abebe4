package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

// Ensure ChatService and Session implement the interfaces.
var (
	_ driving.ChatService = (*ChatService)(nil)
	_ driving.ChatSession = (*Session)(nil)
)

// contextSeparator joins retrieved chunks in the system prompt.
const contextSeparator = "\n\n"

// ChatService answers course questions from retrieved context.
type ChatService struct {
	settings         driving.SettingsService
	embeddingService driven.EmbeddingService
	vectorStore      driven.VectorStore
	llmService       driven.LLMService
	prompts          driven.PromptStore
}

// NewChatService creates a new chat service.
// Any of embeddingService, vectorStore and llmService may be nil; the
// operations that need them then return the matching unavailable error.
func NewChatService(
	settings driving.SettingsService,
	embeddingService driven.EmbeddingService,
	vectorStore driven.VectorStore,
	llmService driven.LLMService,
	prompts driven.PromptStore,
) *ChatService {
	return &ChatService{
		settings:         settings,
		embeddingService: embeddingService,
		vectorStore:      vectorStore,
		llmService:       llmService,
		prompts:          prompts,
	}
}

// NewSession starts an empty session scoped to one course.
func (s *ChatService) NewSession(courseID string) (driving.ChatSession, error) {
	if s.llmService == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if err := s.checkRetrieval(); err != nil {
		return nil, err
	}

	course, err := s.settings.ResolveCourse(courseID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	logger.Debug("New chat session for %s (collection %s)", course.ID, course.Collection)
	return &Session{
		id:       uuid.New().String(),
		course:   *course,
		cfg:      settings.Chat,
		service:  s,
		rewriter: NewQueryRewriter(s.llmService, s.prompts),
		cache:    NewRetrievalCache(),
	}, nil
}

// Search embeds the query and returns the topK nearest contexts.
func (s *ChatService) Search(ctx context.Context, courseID, query string, topK int) ([]domain.RetrievedContext, error) {
	if err := s.checkRetrieval(); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	course, err := s.settings.ResolveCourse(courseID)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		settings, err := s.settings.Get()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		topK = settings.Chat.TopK
	}
	return s.search(ctx, course.Collection, query, topK)
}

func (s *ChatService) checkRetrieval() error {
	if s.embeddingService == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if s.vectorStore == nil {
		return domain.ErrVectorStoreUnavailable
	}
	return nil
}

func (s *ChatService) search(ctx context.Context, collection, query string, topK int) ([]domain.RetrievedContext, error) {
	logger.Section("Retrieval")
	vec, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := s.vectorStore.Search(ctx, collection, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	logger.Debug("Retrieved %d contexts from %s", len(results), collection)
	return results, nil
}

// Session is one conversation with a course. It owns the history and the
// retrieval cache. A session is not safe for concurrent use.
type Session struct {
	id       string
	course   domain.Course
	cfg      domain.ChatSettings
	service  *ChatService
	rewriter *QueryRewriter
	cache    *RetrievalCache
	history  []domain.ChatMessage
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CourseID returns the course the session is scoped to.
func (s *Session) CourseID() string {
	return s.course.ID
}

// History returns a copy of the conversation so far.
func (s *Session) History() []domain.ChatMessage {
	return append([]domain.ChatMessage(nil), s.history...)
}

// Seed replaces the history.
func (s *Session) Seed(history []domain.ChatMessage) {
	s.history = append([]domain.ChatMessage(nil), history...)
}

// Reset clears the history and both cache maps.
func (s *Session) Reset() {
	s.history = nil
	s.cache.Clear()
}

// Post answers one user message.
func (s *Session) Post(ctx context.Context, text string) (*domain.Answer, error) {
	return s.post(ctx, text, nil)
}

// PostStream answers one user message, delivering the reply to onDelta as it arrives.
func (s *Session) PostStream(ctx context.Context, text string, onDelta func(string)) (*domain.Answer, error) {
	if onDelta == nil {
		onDelta = func(string) {}
	}
	return s.post(ctx, text, onDelta)
}

func (s *Session) post(ctx context.Context, text string, onDelta func(string)) (*domain.Answer, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	recent := recentTurns(s.history, s.cfg.HistoryTurns)
	key := CacheKey(query, recent, s.course.ID)
	answer := &domain.Answer{SearchQuery: query}

	if s.cfg.RewriteQuery {
		rewritten, hit, err := s.cache.Rewrite(key, func() (string, error) {
			return s.rewriter.Rewrite(ctx, query, recent)
		})
		if err != nil {
			return nil, fmt.Errorf("rewrite query: %w", err)
		}
		answer.SearchQuery, answer.RewriteCached = rewritten, hit
	}

	contexts, hit, err := s.cache.Search(key, func() ([]domain.RetrievedContext, error) {
		return s.service.search(ctx, s.course.Collection, answer.SearchQuery, s.cfg.TopK)
	})
	if err != nil {
		return nil, err
	}
	answer.Contexts, answer.SearchCached = contexts, hit
	logger.Debug("Search query %q (rewrite cached=%t, search cached=%t)", answer.SearchQuery, answer.RewriteCached, hit)

	system, err := s.systemPrompt(query, contexts)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.ChatMessage, 0, len(s.history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: system})
	messages = append(messages, s.history...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: query})

	opts := driven.ChatOptions{MaxTokens: s.cfg.MaxTokens, Temperature: s.cfg.Temperature}
	var reply string
	if onDelta != nil {
		reply, err = s.service.llmService.ChatStream(ctx, messages, opts, onDelta)
	} else {
		reply, err = s.service.llmService.Chat(ctx, messages, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer.Text = strings.TrimSpace(reply)
	s.history = append(s.history,
		domain.ChatMessage{Role: domain.RoleUser, Content: query},
		domain.ChatMessage{Role: domain.RoleAssistant, Content: answer.Text},
	)
	return answer, nil
}

func (s *Session) systemPrompt(query string, contexts []domain.RetrievedContext) (string, error) {
	template, err := s.service.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		return "", fmt.Errorf("load answer prompt: %w", err)
	}
	texts := make([]string, len(contexts))
	for i, c := range contexts {
		texts[i] = c.Text
	}
	return fmt.Sprintf(template, s.course.ID, query, strings.Join(texts, contextSeparator)), nil
}
