package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown connector, normaliser or document type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrCourseNotFound indicates the course id has no known collection.
	ErrCourseNotFound = errors.New("course not found")

	// ErrNoRecords indicates a record file exists but holds nothing usable.
	ErrNoRecords = errors.New("no records")

	// ErrEmptyQuery indicates a chat or search call with blank input.
	ErrEmptyQuery = errors.New("empty query")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Chat, rewrite and evaluation are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Embedding, indexing and retrieval are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates no vector store backend could be opened.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates an embedding does not match the collection dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRateLimited indicates a remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
