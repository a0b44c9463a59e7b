package rng

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Streams(t *testing.T) {
	ctx := context.Background()
	src := NewSource()

	a, err := src.SeededStream(ctx, "kmeans", 42)
	require.NoError(t, err)
	b, err := src.SeededStream(ctx, "kmeans", 42)
	require.NoError(t, err)
	c, err := src.SeededStream(ctx, "silhouette", 42)
	require.NoError(t, err)

	x, y, z := a.Int63(), b.Int63(), c.Int63()
	assert.Equal(t, x, y)
	assert.NotEqual(t, x, z)
}

func TestSource_UnnamedStreamUsesSeed(t *testing.T) {
	ctx := context.Background()
	a, err := NewSource().SeededStream(ctx, "", 7)
	require.NoError(t, err)
	b, err := NewSource().SeededStream(ctx, "", 8)
	require.NoError(t, err)
	assert.NotEqual(t, a.Int63(), b.Int63())
}

func TestSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource().SeededStream(ctx, "kmeans", 42)
	assert.ErrorIs(t, err, context.Canceled)
}
