// Command coursemate ingests course material and answers questions about it.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/eval"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/coursemate-cli/internal/connectors"
	"github.com/custodia-labs/coursemate-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/coursemate-cli/internal/connectors/github"
	"github.com/custodia-labs/coursemate-cli/internal/connectors/web"
	"github.com/custodia-labs/coursemate-cli/internal/core/services"
	"github.com/custodia-labs/coursemate-cli/internal/logger"
	"github.com/custodia-labs/coursemate-cli/internal/normalisers"
	"github.com/custodia-labs/coursemate-cli/internal/normalisers/html"
	"github.com/custodia-labs/coursemate-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/coursemate-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/coursemate-cli/internal/normalisers/plaintext"
	"github.com/custodia-labs/coursemate-cli/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Flags are parsed later by cobra; startup warnings need the level now.
	for _, arg := range os.Args[1:] {
		if arg == "--verbose" || arg == "-v" {
			logger.SetVerbose(true)
		}
	}

	// API keys may live in a .env file next to the course material.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load .env: %v", err)
	}

	configDir, err := file.DefaultDir()
	if err != nil {
		logger.Error("failed to resolve config directory: %v", err)
		return 1
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		logger.Error("failed to open config: %v", err)
		return 1
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("failed to read settings, using defaults: %v", err)
		defaults := settingsService.GetDefaults()
		defaults.DataDir = filepath.Join(configDir, "data")
		settings = &defaults
	}

	backends := ai.Initialise(ctx, settings)
	defer backends.Close()
	for _, w := range backends.Warnings {
		logger.Info("%s", w)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		logger.Error("failed to load prompts: %v", err)
		return 1
	}

	registry := normalisers.NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		pdf.New(),
	)
	mimeTypes := registry.SupportedMIMETypes()
	resolver := connectors.NewRouter(
		filesystem.New(mimeTypes...),
		web.New(web.Config{}),
		github.New(github.NewClient(ctx, os.Getenv("GITHUB_TOKEN")), mimeTypes...),
	)
	pipelines := postprocessors.NewFactory(nil, settingsService.GetPipelineConfig())
	records := jsonfile.NewRecordStore(settings.DataDir)

	chatService := services.NewChatService(
		settingsService,
		backends.EmbeddingService,
		backends.VectorStore,
		backends.LLMService,
		prompts,
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Chat:     chatService,
		Ingest:   services.NewIngestService(resolver, registry, pipelines, records),
		Embed:    services.NewEmbedService(settingsService, backends.EmbeddingService, records),
		Index:    services.NewIndexService(settingsService, backends.VectorStore, records),
		Eval:     services.NewEvalService(chatService, eval.NewOpener()),
		Settings: settingsService,
	})

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
