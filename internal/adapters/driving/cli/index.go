package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	indexCourse   string
	indexRecreate bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load embedded records into the vector store",
	Long: `Insert a course's embedded records into its vector-store collection.

By default the collection is dropped and rebuilt. Use --recreate=false to
append to an existing collection.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	addCourseFlag(indexCmd, &indexCourse)
	indexCmd.Flags().BoolVar(&indexRecreate, "recreate", true, "drop the collection before inserting")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	courseID, err := requireCourse(indexCourse)
	if err != nil {
		return err
	}

	report, err := indexService.Index(cmd.Context(), courseID, indexRecreate)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Indexed %d records into %s (%d dimensions, %s)\n",
		report.Inserted, report.Collection, report.Dimensions, report.Duration.Round(time.Millisecond))
	if report.Skipped > 0 {
		cmd.Printf("Skipped %d records without an embedding or course id\n", report.Skipped)
	}
	return nil
}
