package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate-cli/internal/connectors"
	"github.com/custodia-labs/coursemate-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

var (
	ingestCourse   string
	ingestWatch    bool
	ingestDebounce time.Duration
)

// sourceWatcher is the part of filesystem.Watcher the ingest command uses.
type sourceWatcher interface {
	Add(source string) error
	Run(ctx context.Context, onChange filesystem.ChangeFunc) error
	Close() error
}

// newWatcher builds the watcher for --watch. Tests replace it.
var newWatcher = func(debounce time.Duration) (sourceWatcher, error) {
	return filesystem.NewWatcher(debounce)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <source>...",
	Short: "Ingest course material into records",
	Long: `Fetch, normalise, clean and chunk course material into the course's
record file.

Sources may be:
  ./notes or lecture.pdf         local files and directories
  https://example.org/page       single web pages
  github:owner/repo[/path][@ref] files from a GitHub repository

With --watch, local sources are watched and ingestion re-runs after
changes settle.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	addCourseFlag(ingestCmd, &ingestCourse)
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest when local sources change")
	ingestCmd.Flags().DurationVar(&ingestDebounce, "debounce", filesystem.DefaultDebounce,
		"quiet period before a watched change triggers ingestion")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	courseID, err := requireCourse(ingestCourse)
	if err != nil {
		return err
	}

	req := domain.IngestRequest{CourseID: courseID, Sources: args}
	if err := ingestOnce(cmd, req); err != nil {
		return err
	}

	if !ingestWatch {
		return nil
	}
	return watchAndIngest(cmd, req)
}

func ingestOnce(cmd *cobra.Command, req domain.IngestRequest) error {
	report, err := ingestService.Ingest(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printIngestReport(cmd, report)
	return nil
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	for _, f := range report.Failures {
		cmd.Printf("  skipped %s\n", f.Error())
	}
	if report.Records == 0 {
		cmd.Printf("No records produced for %s; nothing written.\n", report.CourseID)
		return
	}
	cmd.Printf("Ingested %d documents into %d records for %s (%s)\n",
		report.Documents, report.Records, report.CourseID, report.Duration.Round(time.Millisecond))
	cmd.Printf("Wrote %s\n", report.Path)
}

// watchAndIngest re-runs the whole ingestion whenever a local source changes.
// Record ids are course-global, so a partial re-ingest would renumber them.
func watchAndIngest(cmd *cobra.Command, req domain.IngestRequest) error {
	var local []string
	for _, s := range req.Sources {
		if connectors.IsLocal(s) {
			local = append(local, filesystem.LocalPath(s))
		}
	}
	if len(local) == 0 {
		return fmt.Errorf("%w: --watch needs at least one local source", domain.ErrInvalidInput)
	}

	w, err := newWatcher(ingestDebounce)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck // best-effort cleanup

	for _, path := range local {
		if err := w.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	cmd.Printf("Watching %d source(s). Press Ctrl+C to stop.\n", len(local))
	return w.Run(cmd.Context(), func(ctx context.Context, paths []string) {
		logger.Debug("changed: %v", paths)
		cmd.Printf("\n%d change(s) detected, re-ingesting...\n", len(paths))
		if err := ingestOnce(cmd, req); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	})
}
