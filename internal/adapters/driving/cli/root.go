// Package cli provides the coursemate command-line interface.
// It implements a driving adapter over the core services.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services injected by the composition root.
var (
	chatService     driving.ChatService
	ingestService   driving.IngestService
	embedService    driving.EmbedService
	indexService    driving.IndexService
	evalService     driving.EvalService
	settingsService driving.SettingsService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "coursemate",
	Short: "Course material assistant",
	Long: `CourseMate answers questions about a course from its own material.

Ingest lecture notes, PDFs, web pages and GitHub repositories, embed them
into a vector store, then ask questions from the command line, a terminal
chat, or any MCP client.

Typical first run:
  coursemate settings embedding
  coursemate settings llm
  coursemate ingest --course F21CA ./notes https://example.org/course
  coursemate embed --course F21CA
  coursemate index --course F21CA
  coursemate chat --course F21CA`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
}

// Services aggregates the driving ports the commands use.
// A nil service makes its commands fail with a "not configured" error.
type Services struct {
	Chat     driving.ChatService
	Ingest   driving.IngestService
	Embed    driving.EmbedService
	Index    driving.IndexService
	Eval     driving.EvalService
	Settings driving.SettingsService
}

// SetServices injects the core services.
func SetServices(s Services) {
	chatService = s.Chat
	ingestService = s.Ingest
	embedService = s.Embed
	indexService = s.Index
	evalService = s.Eval
	settingsService = s.Settings
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
