package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmitUplenchwar2687/oscseq/internal/config"
	"github.com/SmitUplenchwar2687/oscseq/internal/storage"
)

func TestNormalizeRedisHostPort(t *testing.T) {
	host, port, err := normalizeRedisHostPort("localhost:6380", 6379)
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)
	assert.Equal(t, 6380, port)

	host, port, err = normalizeRedisHostPort("redis.internal", 6379)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal", host)
	assert.Equal(t, 6379, port)
}

func TestNormalizeRedisHostPort_Invalid(t *testing.T) {
	_, _, err := normalizeRedisHostPort("", 6379)
	assert.Error(t, err)
	_, _, err = normalizeRedisHostPort("localhost", 0)
	assert.Error(t, err)
	_, _, err = normalizeRedisHostPort("localhost:abc", 6379)
	assert.Error(t, err)
}

func TestStorageOptions_FlagsBeatConfig(t *testing.T) {
	so := defaultStorageOptions()
	cmd := &cobra.Command{Use: "x"}
	so.addFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--save-dir", "/from/flag", "--redis-ttl", "1h"}))

	cfg := config.Default().Storage
	cfg.Backend = storage.BackendRedis
	cfg.File.Dir = "/from/config"
	cfg.File.Compress = true
	cfg.Redis.Host = "cache.internal:6390"
	cfg.Redis.TTL = time.Minute

	so.applyConfigIfUnset(cmd, &cfg)
	require.NoError(t, so.normalize())
	got := so.toConfig()

	assert.Equal(t, storage.BackendRedis, got.Backend)
	assert.Equal(t, "/from/flag", got.File.Dir)
	assert.True(t, got.File.Compress)
	assert.Equal(t, "cache.internal", got.Redis.Host)
	assert.Equal(t, 6390, got.Redis.Port)
	assert.Equal(t, time.Hour, got.Redis.TTL)
}

func TestStorageOptions_OpenRejectsUnknownBackend(t *testing.T) {
	so := defaultStorageOptions()
	cmd := &cobra.Command{Use: "x"}
	so.addFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--storage", "tape"}))

	cfg := config.Default().Storage
	_, err := so.open(cmd, &cfg)
	assert.Error(t, err)
}
