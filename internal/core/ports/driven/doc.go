// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Connector / ConnectorResolver: Fetch raw course material
//   - Normaliser / NormaliserRegistry: Turn raw bytes into documents
//   - PostProcessor / PostProcessorPipeline: Clean, chunk and split documents
//   - RecordStore: Persist ingested and embedded record files
//   - ConfigStore / PromptStore: Application configuration and prompts
//
// # Optional Interfaces
//
// These can be nil - the commands that need them report the service as unavailable:
//
//   - EmbeddingService: Generates vector embeddings for records and queries.
//   - VectorStore: Stores embedded records and answers similarity searches.
//   - LLMService: Rewrites queries and answers questions.
//   - EvalStore: Reads and writes evaluation cases.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
