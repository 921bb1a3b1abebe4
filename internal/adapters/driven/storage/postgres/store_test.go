package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// dsnEnv names a database the integration tests may write to.
const dsnEnv = "COURSEMATE_TEST_POSTGRES_DSN"

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}
	store, err := NewStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore_EmptyDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
}

func TestNewStore_Unreachable(t *testing.T) {
	_, err := NewStore(context.Background(), "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
}

func TestDriver_RegistersOnce(t *testing.T) {
	first, err := driver()
	require.NoError(t, err)
	second, err := driver()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	collection := "TEST_" + uuid.NewString()
	t.Cleanup(func() { _ = store.DropCollection(ctx, collection) })

	require.NoError(t, store.EnsureCollection(ctx, collection, 2, true))
	require.NoError(t, store.Insert(ctx, collection, []domain.Record{
		{Text: "exam in May", Metadata: domain.Metadata{domain.KeyChunkID: "F21CA_0"}, Embedding: []float32{1, 0}},
		{Text: "labs on Tuesday", Metadata: domain.Metadata{domain.KeyChunkID: "F21CA_1"}, Embedding: []float32{0, 1}},
	}))

	got, err := store.Search(ctx, collection, []float32{1, 0.1}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "exam in May", got[0].Text)
	assert.Equal(t, "F21CA_0", got[0].ChunkID)
	assert.Greater(t, got[0].Score, 0.9)

	err = store.EnsureCollection(ctx, collection, 3, false)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	require.NoError(t, store.DropCollection(ctx, collection))
	_, err = store.Search(ctx, collection, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
