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
	askCourse      string
	askStream      bool
	askShowContext bool
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question about a course",
	Long: `Answer a single question from the course's indexed material.

The question is rewritten into a search query, the nearest chunks are
retrieved, and the model answers only from them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	addCourseFlag(askCmd, &askCourse)
	askCmd.Flags().BoolVarP(&askStream, "stream", "s", false, "print the answer as it is generated")
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the retrieved chunks")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON form of an answer.
type askOutput struct {
	Answer      string                    `json:"answer"`
	SearchQuery string                    `json:"search_query"`
	Contexts    []domain.RetrievedContext `json:"contexts"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	courseID, err := requireCourse(askCourse)
	if err != nil {
		return err
	}

	session, err := chatService.NewSession(courseID)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	question := strings.Join(args, " ")
	var answer *domain.Answer
	if askStream && !askJSON {
		answer, err = session.PostStream(cmd.Context(), question, func(delta string) {
			cmd.Print(delta)
		})
		if err == nil {
			cmd.Println()
		}
	} else {
		answer, err = session.Post(cmd.Context(), question)
	}
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(askOutput{
			Answer:      answer.Text,
			SearchQuery: answer.SearchQuery,
			Contexts:    answer.Contexts,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !askStream {
		cmd.Println(answer.Text)
	}
	if askShowContext {
		cmd.Println()
		cmd.Printf("Search query: %s\n", answer.SearchQuery)
		printContexts(cmd, answer.Contexts)
	}
	return nil
}
