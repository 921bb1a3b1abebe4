package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

var (
	evalCourse    string
	evalCases     string
	evalSheet     string
	evalWorksheet string
	evalOverwrite bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Answer an evaluation set and record the responses",
	Long: `Ask every question of an evaluation set against a course and write
the answers back.

Each case gets a fresh conversation. When a case has a follow-up question it
is asked in the same conversation, so the rewriter sees the first turn.

Sources:
  --cases file.yaml   a YAML list of {question, follow_up} cases
  --sheet ID          a Google Sheet with Question, Follow-up, Response and
                      Follow-up Response columns (uses application default
                      credentials)

Cases that already have a response are skipped unless --overwrite is given.`,
	Args: cobra.NoArgs,
	RunE: runEval,
}

func init() {
	addCourseFlag(evalCmd, &evalCourse)
	evalCmd.Flags().StringVar(&evalCases, "cases", "", "YAML cases file")
	evalCmd.Flags().StringVar(&evalSheet, "sheet", "", "Google Sheet id")
	evalCmd.Flags().StringVar(&evalWorksheet, "worksheet", "", "sheet tab name (default first tab)")
	evalCmd.Flags().BoolVar(&evalOverwrite, "overwrite", false, "re-ask cases that already have responses")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, _ []string) error {
	if evalService == nil {
		return errors.New("eval service not configured")
	}
	courseID, err := requireCourse(evalCourse)
	if err != nil {
		return err
	}

	var source string
	switch {
	case evalCases != "" && evalSheet != "":
		return fmt.Errorf("%w: use either --cases or --sheet, not both", domain.ErrInvalidInput)
	case evalCases != "":
		source = evalCases
	case evalSheet != "":
		source = evalSheet
	default:
		return fmt.Errorf("%w: one of --cases or --sheet is required", domain.ErrInvalidInput)
	}

	report, err := evalService.Run(cmd.Context(), domain.EvalRequest{
		CourseID:  courseID,
		Source:    source,
		Worksheet: evalWorksheet,
		Overwrite: evalOverwrite,
	})
	if err != nil {
		return fmt.Errorf("eval failed: %w", err)
	}

	cmd.Printf("Evaluated %s: %d cases, %d answered, %d skipped, %d failed\n",
		report.CourseID, report.Total, report.Answered, report.Skipped, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d case(s) failed", report.Failed)
	}
	return nil
}
