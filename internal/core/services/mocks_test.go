package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// mockLLM returns scripted replies and counts calls.
type mockLLM struct {
	mu       sync.Mutex
	replies  []string
	err      error
	failAt   int
	calls    [][]domain.ChatMessage
	opts     []driven.ChatOptions
	streamed int
}

func (m *mockLLM) next() (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "default reply", nil
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r, nil
}

func (m *mockLLM) Chat(_ context.Context, messages []domain.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]domain.ChatMessage(nil), messages...))
	m.opts = append(m.opts, opts)
	if m.failAt == len(m.calls) {
		return "", errors.New("llm unavailable")
	}
	return m.next()
}

func (m *mockLLM) ChatStream(ctx context.Context, messages []domain.ChatMessage, opts driven.ChatOptions, onDelta func(string)) (string, error) {
	reply, err := m.Chat(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	m.streamed++
	for _, word := range strings.SplitAfter(reply, " ") {
		onDelta(word)
	}
	return reply, nil
}

func (m *mockLLM) ModelName() string              { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error     { return nil }
func (m *mockLLM) Close() error                   { return nil }
func (m *mockLLM) callCount() int                 { return len(m.calls) }
func (m *mockLLM) lastCall() []domain.ChatMessage { return m.calls[len(m.calls)-1] }

// mockEmbedder derives a small vector from the text length.
type mockEmbedder struct {
	dims     int
	err      error
	batchErr error
	calls    int
	batches  [][]string
	short    bool
}

func (m *mockEmbedder) vector(text string) []float32 {
	v := make([]float32, m.dims)
	for i := range v {
		v[i] = float32(len(text) + i)
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batches = append(m.batches, texts)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.vector(t))
	}
	if m.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return m.dims }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockVectorStore records collection operations and returns canned results.
type mockVectorStore struct {
	results        []domain.RetrievedContext
	searchErr      error
	ensureErr      error
	searches       int
	lastCollection string
	lastQuery      []float32
	lastTopK       int
	collections    map[string]int
	recreated      []string
	inserted       map[string][]domain.Record
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{collections: map[string]int{}, inserted: map[string][]domain.Record{}}
}

func (m *mockVectorStore) EnsureCollection(_ context.Context, collection string, dims int, recreate bool) error {
	if m.ensureErr != nil {
		return m.ensureErr
	}
	if recreate {
		m.recreated = append(m.recreated, collection)
		delete(m.inserted, collection)
	} else if existing, ok := m.collections[collection]; ok && existing != dims {
		return fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, existing, dims)
	}
	m.collections[collection] = dims
	return nil
}

func (m *mockVectorStore) Insert(_ context.Context, collection string, records []domain.Record) error {
	m.inserted[collection] = append(m.inserted[collection], records...)
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, collection string, query []float32, topK int) ([]domain.RetrievedContext, error) {
	m.searches++
	m.lastCollection = collection
	m.lastQuery, m.lastTopK = query, topK
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK < len(m.results) {
		return m.results[:topK], nil
	}
	return m.results, nil
}

func (m *mockVectorStore) DropCollection(_ context.Context, collection string) error {
	delete(m.collections, collection)
	delete(m.inserted, collection)
	return nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptQueryRewrite: "History:\n%s\nQuery: %s",
		driven.PromptAnswerSystem: "Course: %s\nOriginal query: %s\nCONTEXT:\n%s",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("prompt not found")
}

func (m *mockPromptStore) Reload() {}

// mockRecordStore keeps records in memory keyed by course and stage.
type mockRecordStore struct {
	records map[string][]domain.Record
	saveErr error
	saves   int
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{records: map[string][]domain.Record{}}
}

func (m *mockRecordStore) key(courseID string, stage domain.RecordStage) string {
	return courseID + "/" + string(stage)
}

func (m *mockRecordStore) Save(_ context.Context, courseID string, stage domain.RecordStage, records []domain.Record) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saves++
	m.records[m.key(courseID, stage)] = records
	return m.Path(courseID, stage), nil
}

func (m *mockRecordStore) Load(_ context.Context, courseID string, stage domain.RecordStage) ([]domain.Record, error) {
	records, ok := m.records[m.key(courseID, stage)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return records, nil
}

func (m *mockRecordStore) Path(courseID string, stage domain.RecordStage) string {
	return "/data/" + courseID + "_" + string(stage) + ".json"
}

// mockConnector returns canned fetch results per source.
type mockConnector struct {
	results map[string]*driven.FetchResult
	errs    map[string]error
	fetched []string
}

func (m *mockConnector) Type() string { return "mock" }

func (m *mockConnector) Fetch(_ context.Context, source string) (*driven.FetchResult, error) {
	m.fetched = append(m.fetched, source)
	if err, ok := m.errs[source]; ok {
		return nil, err
	}
	if r, ok := m.results[source]; ok {
		return r, nil
	}
	return &driven.FetchResult{}, nil
}

// mockResolver routes everything except "bad:" sources to one connector.
type mockResolver struct {
	connector *mockConnector
}

func (m *mockResolver) Resolve(source string) (driven.Connector, error) {
	if strings.HasPrefix(source, "bad:") {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, source)
	}
	return m.connector, nil
}

// mockNormaliserRegistry maps MIME types to document types and copies content verbatim.
type mockNormaliserRegistry struct{}

func (mockNormaliserRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	types := map[string]domain.DocumentType{
		"text/markdown": domain.DocumentTypeMarkdown,
		"text/plain":    domain.DocumentTypeText,
		"text/html":     domain.DocumentTypeWebPage,
	}
	docType, ok := types[raw.MIMEType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, raw.MIMEType)
	}
	return &driven.NormaliseResult{Documents: []domain.Document{{
		ID:      raw.URI,
		URI:     raw.URI,
		Title:   raw.URI,
		Type:    docType,
		Content: string(raw.Content),
	}}}, nil
}

func (mockNormaliserRegistry) Register(driven.Normaliser) {}

func (mockNormaliserRegistry) SupportedMIMETypes() []string {
	return []string{"text/html", "text/markdown", "text/plain"}
}

// mockEvalStore keeps cases in memory and records every save.
type mockEvalStore struct {
	cases   []domain.EvalCase
	saved   []domain.EvalCase
	loadErr error
	saveErr error
	closed  bool
}

func (m *mockEvalStore) Load(context.Context) ([]domain.EvalCase, error) {
	return m.cases, m.loadErr
}

func (m *mockEvalStore) SaveResponses(_ context.Context, c domain.EvalCase) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, c)
	return nil
}

func (m *mockEvalStore) Close() error {
	m.closed = true
	return nil
}

// mockEvalOpener hands out one store.
type mockEvalOpener struct {
	store     *mockEvalStore
	err       error
	source    string
	worksheet string
}

func (m *mockEvalOpener) Open(_ context.Context, source, worksheet string) (driven.EvalStore, error) {
	m.source, m.worksheet = source, worksheet
	if m.err != nil {
		return nil, m.err
	}
	return m.store, nil
}
