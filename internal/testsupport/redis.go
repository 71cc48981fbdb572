package testsupport

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"

	"totoforecast/internal/adapters/config"
	redisadapter "totoforecast/internal/adapters/redis"
)

// NewRedisClient connects to the integration Redis and returns a key prefix
// unique to the test. Keys under that prefix are removed on cleanup.
func NewRedisClient(t *testing.T, cfg config.RedisConfig) (*redis.Client, string) {
	t.Helper()

	client, err := redisadapter.NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	prefix := UniqueName("test:" + t.Name())
	rdb := client.Client()

	t.Cleanup(func() {
		ctx := context.Background()
		iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			_ = rdb.Del(ctx, iter.Val()).Err()
		}
		_ = client.Close()
	})

	return rdb, prefix
}
