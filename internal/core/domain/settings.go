package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EnvAPIKey returns the environment variable conventionally holding the provider's key.
func (p AIProvider) EnvAPIKey() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// VectorBackend identifies the vector store implementation.
type VectorBackend string

// Available vector store backends.
const (
	// VectorBackendSQLite keeps collections in a local SQLite file.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendPostgres uses PostgreSQL with the pgvector extension.
	VectorBackendPostgres VectorBackend = "postgres"

	// VectorBackendMemory keeps collections in process memory.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendPostgres, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// RequiresDSN returns true if the backend needs a connection string.
func (b VectorBackend) RequiresDSN() bool {
	return b == VectorBackendPostgres
}

// Description returns a human-readable description.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendSQLite:
		return "SQLite (local file)"
	case VectorBackendPostgres:
		return "PostgreSQL with pgvector"
	case VectorBackendMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// AllVectorBackends returns the selectable backends.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{VectorBackendSQLite, VectorBackendPostgres, VectorBackendMemory}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize is the number of texts sent per embedding request.
	BatchSize int

	// RequestsPerSecond throttles batch requests. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings bounds the sentence chunker.
type ChunkingSettings struct {
	// MaxSize is the maximum chunk length in characters.
	MaxSize int

	// Overlap is the character budget for sentences carried into the next chunk.
	Overlap int
}

// ChatSettings configures a chat session.
type ChatSettings struct {
	// TopK is the number of contexts retrieved per question.
	TopK int

	// HistoryTurns is how many recent turns feed the rewriter and cache keys.
	HistoryTurns int

	// RewriteQuery feeds the rewritten query to search. When false no rewrite is computed.
	RewriteQuery bool

	// Temperature is passed to the answering model.
	Temperature float64

	// MaxTokens caps the answer length. Zero uses the provider default.
	MaxTokens int
}

// VectorStoreSettings selects and configures the vector store.
type VectorStoreSettings struct {
	// Backend is the store implementation.
	Backend VectorBackend

	// DSN is the connection string for server backends.
	DSN string

	// CollectionPrefix derives collection names for courses without an explicit one.
	CollectionPrefix string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir holds record files and the local vector database.
	DataDir string

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Chunking holds chunker bounds.
	Chunking ChunkingSettings

	// Chat holds chat session settings.
	Chat ChatSettings

	// VectorStore holds vector store settings.
	VectorStore VectorStoreSettings
}

// Default setting values.
const (
	DefaultChunkMaxSize      = 2000
	DefaultChunkOverlap      = 200
	DefaultTopK              = 5
	DefaultHistoryTurns      = 4
	DefaultEmbedBatchSize    = 32
	DefaultAnswerTemperature = 0.2
)

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured until the user sets them.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			BatchSize: DefaultEmbedBatchSize,
		},
		LLM: LLMSettings{},
		Chunking: ChunkingSettings{
			MaxSize: DefaultChunkMaxSize,
			Overlap: DefaultChunkOverlap,
		},
		Chat: ChatSettings{
			TopK:         DefaultTopK,
			HistoryTurns: DefaultHistoryTurns,
			RewriteQuery: true,
			Temperature:  DefaultAnswerTemperature,
		},
		VectorStore: VectorStoreSettings{
			Backend:          VectorBackendSQLite,
			CollectionPrefix: DefaultCollectionPrefix,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipelines per document type.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Pipelines maps a document type to its ordered processor names.
	Pipelines map[DocumentType][]string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// ProcessorsFor returns the processor names for a document type.
// Unknown types fall back to the plain text pipeline.
func (c *PipelineConfig) ProcessorsFor(t DocumentType) []string {
	if names, ok := c.Pipelines[t]; ok && len(names) > 0 {
		return names
	}
	return c.Pipelines[DocumentTypeText]
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipelines.
// Extracted prose is cleaned then sentence-chunked; markdown is split on
// headings and only oversized sections are re-chunked.
func DefaultPipelineConfig() PipelineConfig {
	prose := []string{"cleaner", "chunker"}
	return PipelineConfig{
		Pipelines: map[DocumentType][]string{
			DocumentTypePDF:        prose,
			DocumentTypeGoogleSite: prose,
			DocumentTypeWebPage:    prose,
			DocumentTypeText:       prose,
			DocumentTypeMarkdown:   {"headings", "chunker"},
		},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"max_size": DefaultChunkMaxSize,
				"overlap":  DefaultChunkOverlap,
			},
		},
	}
}
