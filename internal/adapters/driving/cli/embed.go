package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var embedCourse string

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed a course's ingested records",
	Long: `Embed every ingested record of a course with the configured embedding
provider and write the course's embeddings file.

Run 'coursemate ingest' first.`,
	Args: cobra.NoArgs,
	RunE: runEmbed,
}

func init() {
	addCourseFlag(embedCmd, &embedCourse)
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	if embedService == nil {
		return errors.New("embed service not configured")
	}
	courseID, err := requireCourse(embedCourse)
	if err != nil {
		return err
	}

	cmd.Printf("Embedding records for %s...\n", courseID)
	report, err := embedService.Embed(cmd.Context(), courseID)
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}

	cmd.Printf("Embedded %d records with %s (%d dimensions, %s)\n",
		report.Embedded, report.Model, report.Dimensions, report.Duration.Round(time.Millisecond))
	if report.Skipped > 0 {
		cmd.Printf("Skipped %d records with empty text\n", report.Skipped)
	}
	cmd.Printf("Wrote %s\n", report.Path)
	return nil
}
