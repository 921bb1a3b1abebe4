package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptQueryRewrite turns a follow-up into a standalone search query.
	// The template expects %s (conversation history) then %s (user query).
	PromptQueryRewrite = "query_rewrite"

	// PromptAnswerSystem is the system prompt for grounded answers.
	// The template expects %s (course), %s (original query) then %s (context).
	PromptAnswerSystem = "answer_system"
)
