package sanctions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	cache := NewMemoryCache(time.Minute)
	cache.now = func() time.Time { return now }

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	stored := []Match{{Score: score(0.4)}}
	require.NoError(t, cache.Set(ctx, "k", stored))
	stored[0].Score = score(0.9)

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, *got[0].Score, 1e-9)

	now = now.Add(time.Minute)
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Zero(t, cache.Sweep())
}
