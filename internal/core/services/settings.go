package services

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "data_dir"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedBatchSize   = "embedding.batch_size"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyChunkMaxSize     = "chunking.max_size"
	keyChunkOverlap     = "chunking.overlap"
	keyChatTopK         = "chat.top_k"
	keyChatHistoryTurns = "chat.history_turns"
	keyChatRewrite      = "chat.rewrite_query"
	keyChatTemperature  = "chat.temperature"
	keyChatMaxTokens    = "chat.max_tokens"
	keyVectorBackend    = "vector_store.backend"
	keyVectorDSN        = "vector_store.dsn"
	keyCollectionPrefix = "vector_store.collection_prefix"
	keyCoursesPrefix    = "courses."
	keyPipelinePrefix   = "pipeline."
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// Empty API keys fall back to the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir: s.getString(keyDataDir, s.defaultDataDir()),
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Chunking: domain.ChunkingSettings{
			MaxSize: s.getInt(keyChunkMaxSize, defaults.Chunking.MaxSize),
			Overlap: s.getIntAllowZero(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Chat: domain.ChatSettings{
			TopK:         s.getInt(keyChatTopK, defaults.Chat.TopK),
			HistoryTurns: s.getInt(keyChatHistoryTurns, defaults.Chat.HistoryTurns),
			RewriteQuery: s.getBool(keyChatRewrite, defaults.Chat.RewriteQuery),
			Temperature:  s.getFloat(keyChatTemperature, defaults.Chat.Temperature),
			MaxTokens:    s.configStore.GetInt(keyChatMaxTokens),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:          s.getBackend(defaults.VectorStore.Backend),
			DSN:              s.configStore.GetString(keyVectorDSN),
			CollectionPrefix: s.getString(keyCollectionPrefix, defaults.VectorStore.CollectionPrefix),
		},
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = envAPIKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = envAPIKey(settings.LLM.Provider)
	}

	return settings, nil
}

// Save persists application settings.
// API keys that match the environment are stored empty so secrets from .env stay out of the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []setting{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedAPIKey, storedAPIKey(settings.Embedding.Provider, settings.Embedding.APIKey)},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMAPIKey, storedAPIKey(settings.LLM.Provider, settings.LLM.APIKey)},
		{keyChunkMaxSize, settings.Chunking.MaxSize},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyChatTopK, settings.Chat.TopK},
		{keyChatHistoryTurns, settings.Chat.HistoryTurns},
		{keyChatRewrite, settings.Chat.RewriteQuery},
		{keyChatTemperature, settings.Chat.Temperature},
		{keyChatMaxTokens, settings.Chat.MaxTokens},
		{keyVectorBackend, settings.VectorStore.Backend.String()},
		{keyVectorDSN, settings.VectorStore.DSN},
		{keyCollectionPrefix, settings.VectorStore.CollectionPrefix},
	}
	if settings.DataDir != "" {
		values = append(values, setting{keyDataDir, settings.DataDir})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

type setting struct {
	key   string
	value any
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" && envAPIKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, baseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" && envAPIKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, baseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorStore configures the vector store backend.
func (s *SettingsService) SetVectorStore(backend domain.VectorBackend, dsn string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid vector store backend: %s", backend)
	}
	if backend.RequiresDSN() && dsn == "" {
		return fmt.Errorf("backend %s requires a DSN", backend)
	}

	if err := s.configStore.Set(keyVectorBackend, backend.String()); err != nil {
		return fmt.Errorf("save %s: %w", keyVectorBackend, err)
	}
	if err := s.configStore.Set(keyVectorDSN, dsn); err != nil {
		return fmt.Errorf("save %s: %w", keyVectorDSN, err)
	}
	return nil
}

// Validate checks that the settings can serve ingest, embed and chat.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Chunking.MaxSize <= 0 {
		return fmt.Errorf("%w: chunking.max_size must be positive", domain.ErrInvalidInput)
	}
	if settings.Chunking.Overlap < 0 || settings.Chunking.Overlap >= settings.Chunking.MaxSize {
		return fmt.Errorf("%w: chunking.overlap must be between 0 and max_size", domain.ErrInvalidInput)
	}
	if settings.Chat.TopK <= 0 {
		return fmt.Errorf("%w: chat.top_k must be positive", domain.ErrInvalidInput)
	}
	if !settings.VectorStore.Backend.IsValid() {
		return fmt.Errorf("invalid vector store backend: %s", settings.VectorStore.Backend)
	}
	if settings.VectorStore.Backend.RequiresDSN() && settings.VectorStore.DSN == "" {
		return fmt.Errorf("vector store %s requires vector_store.dsn", settings.VectorStore.Backend)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider is not configured", domain.ErrEmbeddingUnavailable)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider is not configured", domain.ErrLLMUnavailable)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// AddCourse registers a course. An empty collection derives one from the prefix.
func (s *SettingsService) AddCourse(courseID, collection string) (*domain.Course, error) {
	id := domain.NormaliseCourseID(courseID)
	if id == "" || strings.ContainsAny(id, ". ") {
		return nil, fmt.Errorf("%w: invalid course id %q", domain.ErrInvalidInput, courseID)
	}
	if collection == "" {
		collection = domain.CollectionFor(s.getString(keyCollectionPrefix, domain.DefaultCollectionPrefix), id)
	}
	if err := s.configStore.Set(courseKey(id), collection); err != nil {
		return nil, fmt.Errorf("save course %s: %w", id, err)
	}
	return &domain.Course{ID: id, Collection: collection}, nil
}

// Courses lists registered courses ordered by id.
func (s *SettingsService) Courses() ([]domain.Course, error) {
	var courses []domain.Course
	for _, key := range s.configStore.Keys(keyCoursesPrefix) {
		id, field, ok := strings.Cut(strings.TrimPrefix(key, keyCoursesPrefix), ".")
		if !ok || field != "collection" {
			continue
		}
		courses = append(courses, domain.Course{ID: id, Collection: s.configStore.GetString(key)})
	}
	return courses, nil
}

// ResolveCourse returns the course for an id. Unregistered ids resolve
// to the derived collection name.
func (s *SettingsService) ResolveCourse(courseID string) (*domain.Course, error) {
	id := domain.NormaliseCourseID(courseID)
	if id == "" {
		return nil, fmt.Errorf("%w: course id is required", domain.ErrInvalidInput)
	}
	if collection := s.configStore.GetString(courseKey(id)); collection != "" {
		return &domain.Course{ID: id, Collection: collection}, nil
	}
	prefix := s.getString(keyCollectionPrefix, domain.DefaultCollectionPrefix)
	return &domain.Course{ID: id, Collection: domain.CollectionFor(prefix, id)}, nil
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	// Per document type processor lists, e.g. pipeline.Markdown = ["headings", "chunker"]
	for _, t := range domain.AllDocumentTypes() {
		if processors := s.configStore.GetStringSlice(keyPipelinePrefix + t.String()); len(processors) > 0 {
			cfg.Pipelines[t] = processors
		}
	}

	// The chunker follows the chunking settings.
	chunker := cfg.ProcessorConfigs["chunker"]
	chunker["max_size"] = s.getInt(keyChunkMaxSize, domain.DefaultChunkMaxSize)
	chunker["overlap"] = s.getIntAllowZero(keyChunkOverlap, domain.DefaultChunkOverlap)

	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) defaultDataDir() string {
	if path := s.configStore.Path(); path != "" {
		return filepath.Join(filepath.Dir(path), "data")
	}
	return "data"
}

func courseKey(id string) string {
	return keyCoursesPrefix + id + ".collection"
}

func envAPIKey(provider domain.AIProvider) string {
	if name := provider.EnvAPIKey(); name != "" {
		return os.Getenv(name)
	}
	return ""
}

func storedAPIKey(provider domain.AIProvider, key string) string {
	if key == envAPIKey(provider) {
		return ""
	}
	return key
}

func modelOrDefault(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

func baseURLFor(provider domain.AIProvider, baseURL string) string {
	if baseURL != "" {
		return baseURL
	}
	if provider.IsLocal() {
		return defaultOllamaURL
	}
	// Cloud providers don't need a custom base URL
	return ""
}
