package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// promptExt is the file extension of a prompt template on disk.
const promptExt = ".txt"

// PromptStore serves the query-rewrite and answer prompts. Each prompt is a
// text file under the prompt directory that users may edit; the built-in
// template is used when the file is missing, unreadable, or has a different
// number of %s placeholders than the built-in one.
//
// The directory is seeded on the first Load, not in the constructor.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu     sync.RWMutex
	loaded map[string]string
}

// defaultPrompts seed the prompt directory and stand in for missing or
// malformed files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptQueryRewrite: `You are a query rewriter. The user may ask follow-up questions. Rewrite the latest user query into a fully self-contained question that can be understood without conversation history.

Conversation so far:
%s

User query: %s
Rewritten query:`,

	driven.PromptAnswerSystem: `You are a helpful and approachable course assistant for HWU students. Your goal is to answer questions using ONLY the provided CONTEXT. This CONTEXT is in Markdown format. First, identify the key FACTS from the CONTEXT that directly address the user's query. Then, use those FACTS to construct your final answer. If the CONTEXT does not contain enough information to answer, respond with: 'I don't know based on the available course information.'
Do not generate advice, instructions, or help unrelated to the retrieved context. Do not assist with assignments, essays, reports, quizzes, or courseworks. Keep answers concise and factual.

Course: %s
Original query: %s
CONTEXT:
%s`,
}

// NewPromptStore creates a prompt store rooted at promptDir.
// An empty promptDir means ~/.coursemate/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}
	return &PromptStore{dir: promptDir, loaded: make(map[string]string)}, nil
}

// Load returns the named prompt template.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, known := defaultPrompts[name]

	s.seedOnce.Do(func() { s.seedErr = s.seed() })
	if s.seedErr != nil {
		logger.Debug("prompt directory unavailable: %v", s.seedErr)
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.seedErr)
	}

	s.mu.RLock()
	prompt, ok := s.loaded[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		prompt = builtin
	case known && strings.Count(prompt, "%s") != strings.Count(builtin, "%s"):
		logger.Warn("prompt %s has %d placeholders, want %d; using built-in prompt",
			s.path(name), strings.Count(prompt, "%s"), strings.Count(builtin, "%s"))
		prompt = builtin
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.loaded[name]; ok {
		return cached, nil
	}
	s.loaded[name] = prompt
	return prompt, nil
}

// Reload forgets loaded prompts so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.loaded = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+promptExt)
}

// seed creates the prompt directory and writes any missing default files.
// Existing files are never overwritten.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	for name, content := range defaultPrompts {
		if err := writeIfMissing(s.path(name), content); err != nil {
			return fmt.Errorf("create default prompt %q: %w", name, err)
		}
	}
	return writeIfMissing(filepath.Join(s.dir, "README.md"), promptReadme)
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0600)
}

const promptReadme = `# coursemate prompts

This directory contains the prompts coursemate sends to the language model.

## Files

- ` + "`query_rewrite.txt`" + ` - Turns a follow-up question into a standalone search query
- ` + "`answer_system.txt`" + ` - System prompt that grounds answers in retrieved course context

## Customisation

Edit any file to change model behaviour. Changes take effect on the next
command or chat session.

## Format Placeholders

Both prompts use Go fmt ` + "`%s`" + ` placeholders, filled in this order:

- query_rewrite: conversation so far, user query
- answer_system: course id, original query, retrieved context

Keep the same number of placeholders in the same order. A file with a
different number is ignored and the built-in prompt is used instead.
`
