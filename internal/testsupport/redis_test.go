package testsupport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClientUsesUniquePrefix(t *testing.T) {
	client, prefix := NewRedisClient(t, RedisConfigFromEnv(t))
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, prefix+":key", "value", 0).Err())

	val, err := client.Get(ctx, prefix+":key").Result()
	require.NoError(t, err)
	assert.Equal(t, "value", val)
}
