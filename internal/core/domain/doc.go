// Package domain defines the core business entities for coursemate.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Extracted text of one course source (file, page, URL)
//   - Chunk: A bounded span of a document produced by the post-processors
//   - Record: A chunk plus merged metadata, the unit that is embedded and indexed
//   - Course: A course identifier and its vector-store collection
//   - ChatMessage / Answer: The conversational surface of a chat session
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
