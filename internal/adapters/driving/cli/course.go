package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

var courseAddCollection string

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Manage registered courses",
	Long: `Register courses and the vector-store collection each one uses.

Unregistered courses use a collection derived from the configured prefix,
e.g. HWU_MACS_F21CA.`,
}

var courseAddCmd = &cobra.Command{
	Use:   "add <course-id>",
	Short: "Register a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runCourseAdd,
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered courses",
	Args:  cobra.NoArgs,
	RunE:  runCourseList,
}

func init() {
	courseAddCmd.Flags().StringVar(&courseAddCollection, "collection", "",
		"vector-store collection (default derived from the course id)")
	courseCmd.AddCommand(courseAddCmd)
	courseCmd.AddCommand(courseListCmd)
	rootCmd.AddCommand(courseCmd)
}

// addCourseFlag registers the --course flag shared by the pipeline and chat commands.
func addCourseFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "course", "c", "", "course id, e.g. F21CA (required)")
}

// requireCourse normalises a --course value and rejects an empty one.
func requireCourse(course string) (string, error) {
	id := domain.NormaliseCourseID(course)
	if id == "" {
		return "", fmt.Errorf("%w: --course is required", domain.ErrInvalidInput)
	}
	return id, nil
}

func runCourseAdd(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	course, err := settingsService.AddCourse(args[0], courseAddCollection)
	if err != nil {
		return fmt.Errorf("failed to add course: %w", err)
	}

	cmd.Printf("Registered %s -> %s\n", course.ID, course.Collection)
	return nil
}

func runCourseList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	courses, err := settingsService.Courses()
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	if len(courses) == 0 {
		cmd.Println("No courses registered.")
		cmd.Println("Run 'coursemate course add <course-id>' to register one.")
		return nil
	}

	cmd.Println("Courses:")
	for _, c := range courses {
		cmd.Printf("  %-10s %s\n", c.ID, c.Collection)
	}
	return nil
}
