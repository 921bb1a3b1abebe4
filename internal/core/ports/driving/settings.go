package driving

import "github.com/custodia-labs/coursemate-cli/internal/core/domain"

// SettingsService manages application settings and the course registry.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// SetVectorStore configures the vector store backend.
	SetVectorStore(backend domain.VectorBackend, dsn string) error

	// Validate checks that the settings can serve ingest, embed and chat.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// GetPipelineConfig returns the post-processor pipelines per document type.
	GetPipelineConfig() domain.PipelineConfig

	// AddCourse registers a course. An empty collection derives one from the prefix.
	AddCourse(courseID, collection string) (*domain.Course, error)

	// Courses lists registered courses ordered by id.
	Courses() ([]domain.Course, error)

	// ResolveCourse returns the course for an id. Unregistered ids resolve
	// to the derived collection name.
	ResolveCourse(courseID string) (*domain.Course, error)

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
