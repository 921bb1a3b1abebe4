// Package migrations holds the schema of the local vector store: the
// collections table and the records table with their embedding blobs.
package migrations

import "embed"

// FS holds the numbered scripts. The store applies the pending *.up.sql
// files in name order; the *.down.sql files are kept for manual rollback.
//
//go:embed *.sql
var FS embed.FS
