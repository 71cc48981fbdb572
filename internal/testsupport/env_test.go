package testsupport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadIntegrationConfigs(t *testing.T) {
	t.Setenv("CLICKHOUSE_HOST", "click")
	t.Setenv("CLICKHOUSE_DB", "racing")
	t.Setenv("CLICKHOUSE_PORT", "8123")

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadIntegrationConfigs(t)

	assert.Equal(t, "click", cfg.ClickHouse.Host)
	assert.Equal(t, 8123, cfg.ClickHouse.Port)
	assert.Equal(t, "default", cfg.ClickHouse.User)
	assert.True(t, cfg.ClickHouse.Enabled)

	assert.Equal(t, "redis:6380", cfg.Redis.Addr())
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestIntValueFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TOTO_TEST_PORT", "abc")
	assert.Equal(t, 42, intValue("TOTO_TEST_PORT", 42))
}
