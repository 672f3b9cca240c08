//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const redisImage = "redis:7-alpine"

// Redis starts a Redis server for tb and returns its redis:// URL.
func Redis(tb testing.TB) string {
	tb.Helper()
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, redisImage)
	testcontainers.CleanupContainer(tb, ctr)
	require.NoError(tb, err, "start redis")

	url, err := ctr.ConnectionString(ctx)
	require.NoError(tb, err, "redis connection string")
	return url
}
