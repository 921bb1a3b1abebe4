package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(chunkID, text string, vec ...float32) domain.Record {
	return domain.Record{
		Text: text,
		Metadata: domain.Metadata{
			domain.KeyCourseID:     "F21CA",
			domain.KeyChunkID:      chunkID,
			domain.KeyHeadingPath:  "Intro>Details",
			domain.KeyDocumentType: "Markdown",
		},
		Embedding: vec,
	}
}

// ==================== Store Creation Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DBFile), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	for _, table := range []string{"collections", "records"} {
		var n int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s should exist", table)
	}
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.EnsureCollection(ctx, "HWU_MACS_F21CA", 2, false))
	require.NoError(t, store.Insert(ctx, "HWU_MACS_F21CA", []domain.Record{testRecord("F21CA_0", "exam", 1, 0)}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Search(ctx, "HWU_MACS_F21CA", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "exam", got[0].Text)

	var migrations int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&migrations))
	assert.Equal(t, 1, migrations)
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

// ==================== Vector Store Tests ====================

func TestStore_InsertAndSearch(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.EnsureCollection(ctx, "HWU_MACS_F21CA", 3, false))

	err := store.Insert(ctx, "HWU_MACS_F21CA", []domain.Record{
		testRecord("F21CA_0", "The exam is in May.", 1, 0, 0),
		testRecord("F21CA_1", "Labs run on Tuesday.", 0, 1, 0),
		testRecord("F21CA_2", "Resits are in August.", 0.8, 0.2, 0),
	})
	require.NoError(t, err)

	got, err := store.Search(ctx, "HWU_MACS_F21CA", []float32{1, 0, 0}, 2)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "The exam is in May.", got[0].Text)
	assert.Equal(t, "F21CA_0", got[0].ChunkID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.Equal(t, "Resits are in August.", got[1].Text)
}

func TestStore_InsertStoresMetadata(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.EnsureCollection(ctx, "c", 2, false))
	require.NoError(t, store.Insert(ctx, "c", []domain.Record{testRecord("F21CA_7", "x", 0.5, 0.25)}))

	var metadata string
	var blob []byte
	err := store.db.QueryRow("SELECT metadata, embedding FROM records WHERE chunk_id = ?", "F21CA_7").
		Scan(&metadata, &blob)

	require.NoError(t, err)
	assert.JSONEq(t, `{"course_id":"F21CA","chunk_id":"F21CA_7","heading_path":"Intro>Details","document_type":"Markdown"}`, metadata)
	assert.Equal(t, []float32{0.5, 0.25}, bytesToFloat32Slice(blob))
}

func TestStore_EnsureCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		store := setupTestStore(t)
		require.NoError(t, store.EnsureCollection(ctx, "c", 2, false))
		require.NoError(t, store.Insert(ctx, "c", []domain.Record{testRecord("a", "a", 1, 0)}))

		require.NoError(t, store.EnsureCollection(ctx, "c", 2, false))

		counts, err := store.Collections(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"c": 1}, counts)
	})

	t.Run("recreate clears records and changes dimension", func(t *testing.T) {
		store := setupTestStore(t)
		require.NoError(t, store.EnsureCollection(ctx, "c", 2, false))
		require.NoError(t, store.Insert(ctx, "c", []domain.Record{testRecord("a", "a", 1, 0)}))

		require.NoError(t, store.EnsureCollection(ctx, "c", 3, true))

		counts, err := store.Collections(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"c": 0}, counts)
		require.NoError(t, store.Insert(ctx, "c", []domain.Record{testRecord("b", "b", 1, 0, 0)}))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		store := setupTestStore(t)
		require.NoError(t, store.EnsureCollection(ctx, "c", 2, false))

		err := store.EnsureCollection(ctx, "c", 4, false)

		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("invalid dimensions", func(t *testing.T) {
		store := setupTestStore(t)

		err := store.EnsureCollection(ctx, "c", 0, false)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.EnsureCollection(ctx, "c", 2, false))

	t.Run("search missing collection", func(t *testing.T) {
		_, err := store.Search(ctx, "missing", []float32{1, 0}, 3)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("insert into missing collection", func(t *testing.T) {
		err := store.Insert(ctx, "missing", []domain.Record{testRecord("a", "a", 1, 0)})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("insert wrong dimension rolls back", func(t *testing.T) {
		err := store.Insert(ctx, "c", []domain.Record{
			testRecord("a", "a", 1, 0),
			testRecord("b", "b", 1, 0, 0),
		})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		counts, err := store.Collections(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, counts["c"])
	})

	t.Run("query wrong dimension", func(t *testing.T) {
		_, err := store.Search(ctx, "c", []float32{1, 0, 0}, 3)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})
}

func TestStore_DropCollection(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.EnsureCollection(ctx, "a", 2, false))
	require.NoError(t, store.EnsureCollection(ctx, "b", 2, false))
	require.NoError(t, store.Insert(ctx, "a", []domain.Record{testRecord("x", "x", 1, 0)}))
	require.NoError(t, store.Insert(ctx, "b", []domain.Record{testRecord("y", "y", 1, 0)}))

	require.NoError(t, store.DropCollection(ctx, "a"))
	require.NoError(t, store.DropCollection(ctx, "never-existed"))

	counts, err := store.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"b": 1}, counts)

	var orphans int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM records WHERE collection = 'a'").Scan(&orphans))
	assert.Zero(t, orphans)
}

// ==================== Helper Function Tests ====================

func TestFloat32Conversion(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"nil", nil},
		{"single", []float32{1.5}},
		{"mixed", []float32{-0.25, 0, 3.75, 1e-7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.input, bytesToFloat32Slice(float32SliceToBytes(tt.input)))
		})
	}
}
