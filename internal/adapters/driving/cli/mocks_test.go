package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
)

// mockChatService implements driving.ChatService for testing.
type mockChatService struct {
	session       *mockSession
	newSessionErr error
	contexts      []domain.RetrievedContext
	searchErr     error
	lastCourse    string
	lastTopK      int
}

func (m *mockChatService) NewSession(courseID string) (driving.ChatSession, error) {
	m.lastCourse = courseID
	if m.newSessionErr != nil {
		return nil, m.newSessionErr
	}
	if m.session == nil {
		m.session = &mockSession{}
	}
	m.session.courseID = courseID
	return m.session, nil
}

func (m *mockChatService) Search(
	ctx context.Context, courseID, query string, topK int,
) ([]domain.RetrievedContext, error) {
	m.lastCourse = courseID
	m.lastTopK = topK
	return m.contexts, m.searchErr
}

// mockSession implements driving.ChatSession for testing.
type mockSession struct {
	courseID   string
	questions  []string
	answerFunc func(text string) (*domain.Answer, error)
	resets     int
	history    []domain.ChatMessage
}

func (m *mockSession) ID() string       { return "session-1" }
func (m *mockSession) CourseID() string { return m.courseID }

func (m *mockSession) Post(ctx context.Context, text string) (*domain.Answer, error) {
	m.questions = append(m.questions, text)
	if m.answerFunc != nil {
		return m.answerFunc(text)
	}
	return &domain.Answer{
		Text:        "answer to " + text,
		SearchQuery: "search " + text,
		Contexts:    []domain.RetrievedContext{{Text: "chunk text", Score: 0.75, ChunkID: "F21CA_0"}},
	}, nil
}

func (m *mockSession) PostStream(ctx context.Context, text string, onDelta func(string)) (*domain.Answer, error) {
	answer, err := m.Post(ctx, text)
	if err != nil {
		return nil, err
	}
	for _, word := range strings.SplitAfter(answer.Text, " ") {
		onDelta(word)
	}
	return answer, nil
}

func (m *mockSession) History() []domain.ChatMessage     { return m.history }
func (m *mockSession) Seed(history []domain.ChatMessage) { m.history = history }
func (m *mockSession) Reset()                            { m.resets++ }

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	requests []domain.IngestRequest
	report   *domain.IngestReport
	err      error
}

func (m *mockIngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.IngestReport{
		CourseID: req.CourseID, Documents: 2, Records: 5,
		Path: "/data/" + req.CourseID + "_site_data.json",
	}, nil
}

// mockEmbedService implements driving.EmbedService for testing.
type mockEmbedService struct {
	courseID string
	report   *domain.EmbedReport
	err      error
}

func (m *mockEmbedService) Embed(ctx context.Context, courseID string) (*domain.EmbedReport, error) {
	m.courseID = courseID
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.EmbedReport{
		CourseID: courseID, Embedded: 5, Dimensions: 768, Model: "nomic-embed-text",
		Path: "/data/" + courseID + "_embeddings.json",
	}, nil
}

// mockIndexService implements driving.IndexService for testing.
type mockIndexService struct {
	courseID string
	recreate bool
	err      error
}

func (m *mockIndexService) Index(ctx context.Context, courseID string, recreate bool) (*domain.IndexReport, error) {
	m.courseID = courseID
	m.recreate = recreate
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IndexReport{
		CourseID: courseID, Collection: "HWU_MACS_" + courseID, Inserted: 5, Dimensions: 768,
	}, nil
}

// mockEvalService implements driving.EvalService for testing.
type mockEvalService struct {
	req    domain.EvalRequest
	report *domain.EvalReport
	err    error
}

func (m *mockEvalService) Run(ctx context.Context, req domain.EvalRequest) (*domain.EvalReport, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.EvalReport{CourseID: req.CourseID, Total: 3, Answered: 2, Skipped: 1}, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	courses     []domain.Course
	validateErr error
	pingErr     error

	embedding   []string
	llm         []string
	vector      []string
	addedCourse []string
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.DataDir = "/home/student/.coursemate/data"
	return &mockSettingsService{settings: s}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	m.embedding = []string{string(provider), model, baseURL, apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	m.llm = []string{string(provider), model, baseURL, apiKey}
	return nil
}

func (m *mockSettingsService) SetVectorStore(backend domain.VectorBackend, dsn string) error {
	m.vector = []string{string(backend), dsn}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) GetPipelineConfig() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}

func (m *mockSettingsService) AddCourse(courseID, collection string) (*domain.Course, error) {
	id := domain.NormaliseCourseID(courseID)
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	if collection == "" {
		collection = domain.CollectionFor("", id)
	}
	m.addedCourse = []string{id, collection}
	return &domain.Course{ID: id, Collection: collection}, nil
}

func (m *mockSettingsService) Courses() ([]domain.Course, error) { return m.courses, nil }

func (m *mockSettingsService) ResolveCourse(courseID string) (*domain.Course, error) {
	id := domain.NormaliseCourseID(courseID)
	return &domain.Course{ID: id, Collection: domain.CollectionFor("", id)}, nil
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }
func (m *mockSettingsService) ValidateLLMConfig() error       { return m.pingErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	chat     *mockChatService
	ingest   *mockIngestService
	embed    *mockEmbedService
	index    *mockIndexService
	eval     *mockEvalService
	settings *mockSettingsService
}

// setupTestServices installs fresh mocks and restores the previous services
// when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	prev := Services{
		Chat: chatService, Ingest: ingestService, Embed: embedService,
		Index: indexService, Eval: evalService, Settings: settingsService,
	}
	t.Cleanup(func() { SetServices(prev) })

	ts := &testServices{
		chat:     &mockChatService{},
		ingest:   &mockIngestService{},
		embed:    &mockEmbedService{},
		index:    &mockIndexService{},
		eval:     &mockEvalService{},
		settings: newMockSettingsService(),
	}
	SetServices(Services{
		Chat: ts.chat, Ingest: ts.ingest, Embed: ts.embed,
		Index: ts.index, Eval: ts.eval, Settings: ts.settings,
	})
	return ts
}

// execute runs the root command with args and stdin, returning combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(io.Reader(strings.NewReader(stdin)))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag to its default, since flag variables
// outlive a single Execute call.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
