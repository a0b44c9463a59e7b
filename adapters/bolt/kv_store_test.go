package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := NewKVStore(path)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "clustering:centroids", []byte(`{"k":2}`)))
	value, ok, err := store.Get(ctx, "clustering:centroids")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"k":2}`, string(value))

	require.NoError(t, store.Set(ctx, "clustering:centroids", nil))
	value, _, err = store.Get(ctx, "clustering:centroids")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.Close())
}

func TestKVStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := NewKVStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "clustering:new_patients", []byte(`[]`)))
	require.NoError(t, store.Close())

	reopened, err := NewKVStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, "clustering:new_patients")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(value))
}

func TestKVStore_CancelledContext(t *testing.T) {
	store, err := NewKVStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Set(ctx, "k", []byte("v")), context.Canceled)
}
