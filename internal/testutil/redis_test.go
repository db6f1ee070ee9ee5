package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisCandidates(t *testing.T) {
	t.Setenv("REDIS_ADDR", " ci-redis:6379 ")
	assert.Equal(t, []string{"ci-redis:6379"}, redisCandidates())

	t.Setenv("REDIS_ADDR", "")
	assert.Equal(t, []string{"localhost:6379", "redis:6379", "localhost:56379"}, redisCandidates())
}

func TestTestRedisDB(t *testing.T) {
	t.Setenv("TEST_REDIS_DB", "")
	assert.Equal(t, 1, testRedisDB())

	t.Setenv("TEST_REDIS_DB", "4")
	assert.Equal(t, 4, testRedisDB())

	t.Setenv("TEST_REDIS_DB", "-2")
	assert.Equal(t, 1, testRedisDB())
}

func TestRequireRedis(t *testing.T) {
	t.Setenv("TEST_REQUIRE_REDIS", "")
	t.Setenv("TEST_REQUIRE_INFRA", "")
	assert.False(t, requireRedis())

	t.Setenv("TEST_REQUIRE_INFRA", "yes")
	assert.True(t, requireRedis())
}
