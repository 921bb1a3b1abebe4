package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

var (
	searchCourse string
	searchTopK   int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Retrieve course material without asking the model",
	Long: `Embed the query and print the nearest chunks from the course's
collection. No rewrite and no answer are produced.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	addCourseFlag(searchCmd, &searchCourse)
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of chunks (0 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	courseID, err := requireCourse(searchCourse)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	contexts, err := chatService.Search(cmd.Context(), courseID, query, searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(contexts, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printContexts(cmd, contexts)
	return nil
}

// printContexts lists retrieved chunks with their scores.
func printContexts(cmd *cobra.Command, contexts []domain.RetrievedContext) {
	if len(contexts) == 0 {
		cmd.Println("No course material found.")
		return
	}

	cmd.Println("Sources:")
	for i, c := range contexts {
		label := c.ChunkID
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, label, c.Score)
		cmd.Printf("      %s\n", preview(c.Text, 200))
	}
}

// preview collapses whitespace and truncates to n runes.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return text
}
