package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/storage/rank"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// DBFile is the database file name inside the data directory.
const DBFile = "vectors.db"

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite vector store in the specified data directory.
// If dataDir is empty, defaults to ~/.coursemate/data/vectors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".coursemate", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)

	// Foreign keys are a per-connection pragma so they go in the DSN.
	db, err := sql.Open("sqlite",
		dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_vectors.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dimensions returns a collection's vector size, or domain.ErrNotFound.
func (s *Store) dimensions(ctx context.Context, q rowQuerier, name string) (int, error) {
	var dims int
	err := q.QueryRowContext(ctx, "SELECT dimensions FROM collections WHERE name = ?", name).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("reading collection %s: %w", name, err)
	}
	return dims, nil
}

// EnsureCollection creates the collection, dropping it first when recreate is set.
func (s *Store) EnsureCollection(ctx context.Context, name string, dimensions int, recreate bool) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if recreate {
		if err := dropCollection(ctx, tx, name); err != nil {
			return err
		}
	} else {
		existing, err := s.dimensions(ctx, tx, name)
		switch {
		case err == nil && existing != dimensions:
			return fmt.Errorf("%w: collection %s has %d dimensions, got %d",
				domain.ErrDimensionMismatch, name, existing, dimensions)
		case err == nil:
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO collections (name, dimensions) VALUES (?, ?)", name, dimensions); err != nil {
		return fmt.Errorf("creating collection %s: %w", name, err)
	}
	return tx.Commit()
}

// Insert adds records to an existing collection in one transaction.
func (s *Store) Insert(ctx context.Context, name string, records []domain.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dims, err := s.dimensions(ctx, tx, name)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, collection, chunk_id, text, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if len(r.Embedding) != dims {
			return fmt.Errorf("%w: record %s has %d dimensions, collection %s has %d",
				domain.ErrDimensionMismatch, r.ChunkID(), len(r.Embedding), name, dims)
		}
		metadataJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), name, r.ChunkID(), r.Text,
			string(metadataJSON), float32SliceToBytes(r.Embedding)); err != nil {
			return fmt.Errorf("inserting record: %w", err)
		}
	}

	return tx.Commit()
}

// Search ranks the collection by cosine similarity.
func (s *Store) Search(ctx context.Context, name string, query []float32, topK int) ([]domain.RetrievedContext, error) {
	dims, err := s.dimensions(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if len(query) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %s has %d",
			domain.ErrDimensionMismatch, len(query), name, dims)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT chunk_id, text, embedding FROM records WHERE collection = ? ORDER BY rowid", name)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var candidates []rank.Candidate
	for rows.Next() {
		var c rank.Candidate
		var blob []byte
		if err := rows.Scan(&c.ChunkID, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		c.Embedding = bytesToFloat32Slice(blob)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return rank.TopK(query, candidates, topK), nil
}

// DropCollection removes a collection and its records.
func (s *Store) DropCollection(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := dropCollection(ctx, tx, name); err != nil {
		return err
	}
	return tx.Commit()
}

// Collections lists collection names with their record counts.
func (s *Store) Collections(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, COUNT(r.id)
		FROM collections c LEFT JOIN records r ON r.collection = c.name
		GROUP BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

func dropCollection(ctx context.Context, tx *sql.Tx, name string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", name); err != nil {
		return fmt.Errorf("deleting records of %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting collection %s: %w", name, err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
