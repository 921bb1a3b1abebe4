package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursemate-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driving"
)

var (
	chatCourse string
	chatPlain  bool
)

// runTUIApp runs the chat TUI. Tests replace it.
var runTUIApp = func(app *tui.App) error {
	return app.Run()
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat about a course",
	Long: `Start a conversation scoped to one course.

Follow-up questions are rewritten using the conversation so far, and
repeated questions are answered from the session cache.

TUI controls:
  Enter   - Send
  Esc     - Cancel the answer in progress
  PgUp/Dn - Scroll the transcript
  Ctrl+O  - Show or hide sources
  Ctrl+R  - New conversation
  Ctrl+C  - Quit

With --plain, a line-based prompt reads questions from stdin. Type /reset
to start over and /exit to quit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	addCourseFlag(chatCmd, &chatCourse)
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use a line-based prompt instead of the TUI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	courseID, err := requireCourse(chatCourse)
	if err != nil {
		return err
	}

	if chatPlain {
		session, err := chatService.NewSession(courseID)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		return chatREPL(cmd, session, cmd.InOrStdin())
	}

	app, err := tui.NewApp(tui.NewPorts(chatService), courseID)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runTUIApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// chatREPL reads one question per line and streams each answer.
// Answer errors are printed and the loop continues.
func chatREPL(cmd *cobra.Command, session driving.ChatSession, in io.Reader) error {
	reader := bufio.NewReader(in)
	cmd.Printf("Chatting about %s. Type /reset to start over, /exit to quit.\n", session.CourseID())

	for {
		cmd.Print("\n> ")
		line, readErr := reader.ReadString('\n')
		text := strings.TrimSpace(line)

		switch text {
		case "":
		case "/exit", "/quit":
			return nil
		case "/reset":
			session.Reset()
			cmd.Println("Conversation cleared.")
		default:
			_, err := session.PostStream(cmd.Context(), text, func(delta string) {
				cmd.Print(delta)
			})
			cmd.Println()
			if err != nil {
				cmd.PrintErrf("Error: %v\n", err)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				cmd.Println()
				return nil
			}
			return fmt.Errorf("reading input: %w", readErr)
		}
		if cmd.Context().Err() != nil {
			return nil
		}
	}
}
