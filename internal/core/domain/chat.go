package domain

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// RetrievedContext is one chunk returned by a vector search.
type RetrievedContext struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// Score is the similarity score reported by the vector store.
	Score float64 `json:"score"`

	// ChunkID identifies the chunk when the store knows it.
	ChunkID string `json:"chunk_id,omitempty"`
}

// Answer is the result of one chat turn.
type Answer struct {
	// Text is the assistant's reply.
	Text string

	// SearchQuery is the query actually embedded for retrieval.
	// It equals the user query when rewriting is disabled.
	SearchQuery string

	// Contexts are the retrieved chunks shown to the model.
	Contexts []RetrievedContext

	// RewriteCached reports whether the rewrite came from the session cache.
	RewriteCached bool

	// SearchCached reports whether the contexts came from the session cache.
	SearchCached bool
}
