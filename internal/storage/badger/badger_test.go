package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInMemoryRoundTrip verifies values written can be read back.
func TestInMemoryRoundTrip(t *testing.T) {
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	_, ok, err := store.Get(ctx, "todos")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "todos", `[]`))
	value, ok, err := store.Get(ctx, "todos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)
}

// TestPersistentReopen verifies data survives a close/open cycle.
func TestPersistentReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "statuses", `[{"id":"status-todo"}]`))
	require.NoError(t, store.Close())

	reopened, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, "statuses")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"status-todo"}]`, value)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Set(ctx, "k", "v"), context.Canceled)
}
