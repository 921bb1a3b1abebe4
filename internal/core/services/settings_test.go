package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// mockAIValidator records validation calls.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

func newTestSettings(t *testing.T) (*SettingsService, *memory.ConfigStore) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	store := memory.NewConfigStore()
	return NewSettingsService(store, nil), store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettings(t)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Chunking, settings.Chunking)
	assert.Equal(t, defaults.Chat, settings.Chat)
	assert.Equal(t, defaults.VectorStore, settings.VectorStore)
	assert.Equal(t, domain.DefaultEmbedBatchSize, settings.Embedding.BatchSize)
	assert.Equal(t, "data", settings.DataDir)
	assert.False(t, settings.Embedding.IsConfigured())
	assert.False(t, settings.LLM.IsConfigured())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newTestSettings(t)
	_ = store.Set("data_dir", "/var/coursemate")
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.api_key", "sk-embed")
	_ = store.Set("llm.provider", "anthropic")
	_ = store.Set("llm.model", "claude-3-5-sonnet-latest")
	_ = store.Set("chunking.max_size", int64(1200))
	_ = store.Set("chunking.overlap", int64(0))
	_ = store.Set("chat.top_k", int64(8))
	_ = store.Set("chat.rewrite_query", false)
	_ = store.Set("chat.temperature", 0.0)
	_ = store.Set("vector_store.backend", "postgres")
	_ = store.Set("vector_store.dsn", "postgres://localhost/rag")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "/var/coursemate", settings.DataDir)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, "sk-embed", settings.Embedding.APIKey)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.Equal(t, 1200, settings.Chunking.MaxSize)
	assert.Equal(t, 0, settings.Chunking.Overlap)
	assert.Equal(t, 8, settings.Chat.TopK)
	assert.False(t, settings.Chat.RewriteQuery)
	assert.Zero(t, settings.Chat.Temperature)
	assert.Equal(t, domain.VectorBackendPostgres, settings.VectorStore.Backend)
	assert.Equal(t, "postgres://localhost/rag", settings.VectorStore.DSN)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, store := newTestSettings(t)
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("vector_store.backend", "qdrant")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProvider(""), settings.Embedding.Provider)
	assert.Equal(t, domain.VectorBackendSQLite, settings.VectorStore.Backend)
}

func TestSettingsService_Get_APIKeyFromEnvironment(t *testing.T) {
	service, store := newTestSettings(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	_ = store.Set("llm.provider", "openai")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-env", settings.LLM.APIKey)
	assert.True(t, settings.LLM.IsConfigured())
}

func TestSettingsService_Save_RoundTrip(t *testing.T) {
	service, store := newTestSettings(t)
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text", BaseURL: "http://gpu:11434", BatchSize: 16}
	settings.Chat.TopK = 3
	settings.Chat.Temperature = 0.7

	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", got.Embedding.Model)
	assert.Equal(t, "http://gpu:11434", got.Embedding.BaseURL)
	assert.Equal(t, 16, got.Embedding.BatchSize)
	assert.Equal(t, 3, got.Chat.TopK)
	assert.InDelta(t, 0.7, got.Chat.Temperature, 1e-9)
	assert.Equal(t, "", store.GetString("embedding.api_key"))
}

func TestSettingsService_Save_EnvironmentKeyNotPersisted(t *testing.T) {
	service, store := newTestSettings(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	_ = store.Set("llm.provider", "anthropic")

	settings, err := service.Get()
	require.NoError(t, err)
	require.NoError(t, service.Save(settings))

	assert.Equal(t, "", store.GetString("llm.api_key"))
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	t.Run("ollama gets default model and url", func(t *testing.T) {
		service, _ := newTestSettings(t)

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", "", ""))

		settings, _ := service.Get()
		assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
		assert.Equal(t, "all-minilm", settings.Embedding.Model)
		assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	})

	t.Run("openai requires key", func(t *testing.T) {
		service, _ := newTestSettings(t)

		err := service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "", "")

		assert.ErrorContains(t, err, "API key required")
	})

	t.Run("openai key from environment", func(t *testing.T) {
		service, _ := newTestSettings(t)
		t.Setenv("OPENAI_API_KEY", "sk-env")

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "", ""))

		settings, _ := service.Get()
		assert.Equal(t, "sk-env", settings.Embedding.APIKey)
		assert.Equal(t, "", settings.Embedding.BaseURL)
	})

	t.Run("anthropic has no embeddings", func(t *testing.T) {
		service, _ := newTestSettings(t)

		err := service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "", "key")

		assert.ErrorContains(t, err, "does not support embeddings")
	})

	t.Run("invalid provider", func(t *testing.T) {
		service, _ := newTestSettings(t)

		assert.Error(t, service.SetEmbeddingProvider("bogus", "", "", ""))
	})
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service, store := newTestSettings(t)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "", "sk-ant"))

	settings, _ := service.Get()
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.LLM.Model)
	assert.Equal(t, "sk-ant", store.GetString("llm.api_key"))

	// Switching provider clears the previous key.
	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "llama3.1", "", ""))
	settings, _ = service.Get()
	assert.Equal(t, "llama3.1", settings.LLM.Model)
	assert.Equal(t, "", settings.LLM.APIKey)
}

func TestSettingsService_SetVectorStore(t *testing.T) {
	service, _ := newTestSettings(t)

	assert.Error(t, service.SetVectorStore("qdrant", ""))
	assert.ErrorContains(t, service.SetVectorStore(domain.VectorBackendPostgres, ""), "requires a DSN")
	require.NoError(t, service.SetVectorStore(domain.VectorBackendPostgres, "postgres://db/rag"))

	settings, _ := service.Get()
	assert.Equal(t, domain.VectorBackendPostgres, settings.VectorStore.Backend)
	assert.Equal(t, "postgres://db/rag", settings.VectorStore.DSN)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr error
		wantMsg string
	}{
		{
			name:    "no providers",
			values:  map[string]any{},
			wantErr: domain.ErrEmbeddingUnavailable,
		},
		{
			name:    "no llm",
			values:  map[string]any{"embedding.provider": "ollama"},
			wantErr: domain.ErrLLMUnavailable,
		},
		{
			name:    "overlap too large",
			values:  map[string]any{"chunking.max_size": 100, "chunking.overlap": 100},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "postgres without dsn",
			values:  map[string]any{"vector_store.backend": "postgres"},
			wantMsg: "requires vector_store.dsn",
		},
		{
			name:   "valid",
			values: map[string]any{"embedding.provider": "ollama", "llm.provider": "ollama"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newTestSettings(t)
			for k, v := range tt.values {
				_ = store.Set(k, v)
			}

			err := service.Validate()

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				assert.ErrorContains(t, err, tt.wantMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsService_ValidateConfigs(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "ollama")
	validator := &mockAIValidator{llmErr: errors.New("unreachable")}
	service := NewSettingsService(store, validator)

	require.NoError(t, service.ValidateEmbeddingConfig())
	assert.Equal(t, domain.AIProviderOllama, validator.embedding.Provider)
	assert.ErrorContains(t, service.ValidateLLMConfig(), "unreachable")

	// No validator means nothing to check.
	assert.NoError(t, NewSettingsService(store, nil).ValidateLLMConfig())
}

func TestSettingsService_Courses(t *testing.T) {
	service, store := newTestSettings(t)

	course, err := service.AddCourse(" f21ca ", "")
	require.NoError(t, err)
	assert.Equal(t, domain.Course{ID: "F21CA", Collection: "HWU_MACS_F21CA"}, *course)

	_, err = service.AddCourse("F20BC", "bio_notes")
	require.NoError(t, err)
	_ = store.Set("courses.F99XX.note", "ignored")

	courses, err := service.Courses()
	require.NoError(t, err)
	assert.Equal(t, []domain.Course{
		{ID: "F20BC", Collection: "bio_notes"},
		{ID: "F21CA", Collection: "HWU_MACS_F21CA"},
	}, courses)

	_, err = service.AddCourse("", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = service.AddCourse("a.b", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_ResolveCourse(t *testing.T) {
	service, store := newTestSettings(t)
	_, _ = service.AddCourse("F20BC", "bio_notes")

	course, err := service.ResolveCourse("f20bc")
	require.NoError(t, err)
	assert.Equal(t, "bio_notes", course.Collection)

	course, err = service.ResolveCourse("F21CA")
	require.NoError(t, err)
	assert.Equal(t, "HWU_MACS_F21CA", course.Collection)

	_ = store.Set("vector_store.collection_prefix", "UNI_")
	course, err = service.ResolveCourse("F21CA")
	require.NoError(t, err)
	assert.Equal(t, "UNI_F21CA", course.Collection)

	_, err = service.ResolveCourse("  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_GetPipelineConfig(t *testing.T) {
	service, store := newTestSettings(t)

	cfg := service.GetPipelineConfig()
	assert.Equal(t, []string{"headings", "chunker"}, cfg.ProcessorsFor(domain.DocumentTypeMarkdown))
	assert.Equal(t, domain.DefaultChunkMaxSize, cfg.GetProcessorConfig("chunker")["max_size"])

	_ = store.Set("pipeline.Markdown", []any{"cleaner", "chunker"})
	_ = store.Set("chunking.max_size", int64(800))
	_ = store.Set("chunking.overlap", int64(0))

	cfg = service.GetPipelineConfig()
	assert.Equal(t, []string{"cleaner", "chunker"}, cfg.ProcessorsFor(domain.DocumentTypeMarkdown))
	assert.Equal(t, 800, cfg.GetProcessorConfig("chunker")["max_size"])
	assert.Equal(t, 0, cfg.GetProcessorConfig("chunker")["overlap"])
}
