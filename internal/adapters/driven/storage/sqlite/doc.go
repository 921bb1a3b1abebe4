// Package sqlite provides a local vector store backed by a single SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each course collection is a row in
// the collections table; its records carry the chunk text, metadata as JSON and
// the embedding as a little-endian float32 blob.
//
// # Ranking
//
// Search loads a collection's vectors and ranks them by cosine similarity in
// process. Course collections are small enough for a brute-force scan.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.coursemate/data/vectors.db
package sqlite
