// Package ai provides factory functions for the external collaborators:
// AI service adapters and vector stores.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/coursemate-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/coursemate-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/coursemate-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/coursemate-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/coursemate-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the external collaborators built from settings.
// A collaborator that could not be built is nil and explained in Warnings;
// the services report it as unavailable only when it is actually needed.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorStore      driven.VectorStore
	Warnings         []string // Non-fatal issues, one per missing collaborator.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorStore != nil {
		r.VectorStore.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise builds the embedding service, LLM service and vector store.
// It does not ping the AI providers; that is left to the settings commands.
func Initialise(ctx context.Context, settings *domain.AppSettings) *InitResult {
	result := &InitResult{}

	if !settings.Embedding.IsConfigured() {
		result.Warnings = append(result.Warnings,
			"embedding provider not configured. Run 'coursemate settings embedding' to set one")
	} else if svc, err := CreateEmbeddingService(&settings.Embedding); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding: %v", err))
	} else {
		result.EmbeddingService = svc
	}

	if !settings.LLM.IsConfigured() {
		result.Warnings = append(result.Warnings,
			"LLM provider not configured. Run 'coursemate settings llm' to set one")
	} else if svc, err := CreateLLMService(&settings.LLM); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("llm: %v", err))
	} else {
		result.LLMService = svc
	}

	store, err := CreateVectorStore(ctx, &settings.VectorStore, settings.DataDir)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("vector store: %v", err))
	} else {
		result.VectorStore = store
	}

	return result
}

// CreateVectorStore opens the configured vector store backend.
// The sqlite backend lives in dataDir.
func CreateVectorStore(ctx context.Context, settings *domain.VectorStoreSettings, dataDir string) (driven.VectorStore, error) {
	switch settings.Backend {
	case domain.VectorBackendSQLite, "":
		return sqlite.NewStore(dataDir)
	case domain.VectorBackendPostgres:
		return postgres.NewStore(ctx, settings.DSN)
	case domain.VectorBackendMemory:
		return memory.NewVectorStore(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported vector store backend: %s",
			domain.ErrVectorStoreUnavailable, settings.Backend)
	}
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for use in the settings commands to validate credentials on configuration.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// This is intended for use in the settings commands to validate credentials on configuration.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
