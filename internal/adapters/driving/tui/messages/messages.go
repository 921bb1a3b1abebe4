// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// MessageSubmitted is sent when the student submits a question.
type MessageSubmitted struct {
	Text string
}

// AnswerDelta carries one streamed fragment of the answer in progress.
type AnswerDelta struct {
	Text string
}

// AnswerReceived carries the completed answer back to the model.
// Answer is nil when Err is set.
type AnswerReceived struct {
	Answer *domain.Answer
	Err    error
}

// SessionReset signals the conversation and its cache were cleared.
type SessionReset struct{}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
