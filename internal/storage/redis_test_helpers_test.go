package storage

import (
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	testcontainers "github.com/testcontainers/testcontainers-go"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
)

// newRedisStoreForTest starts a throwaway redis and returns a store whose
// keys live under a prefix unique to t, stamped by clk.
func newRedisStoreForTest(t *testing.T, clk clock.Clock) (*RedisStore, func()) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := rediscontainer.Run(ctx, "redis:7.2-alpine")
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	terminate := func() { _ = container.Terminate(context.Background()) }

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		terminate()
		t.Fatalf("redis endpoint: %v", err)
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		terminate()
		t.Fatalf("redis endpoint %q: %v", endpoint, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		terminate()
		t.Fatalf("redis port %q: %v", portStr, err)
	}

	store, err := NewRedisStore(&RedisConfig{
		Host:        host,
		Port:        port,
		DialTimeout: 5 * time.Second,
		TTL:         time.Minute,
		KeyPrefix:   "oscseq-test:" + strings.ReplaceAll(t.Name(), "/", ":") + ":",
		Clock:       clk,
	})
	if err != nil {
		terminate()
		t.Fatalf("NewRedisStore: %v", err)
	}

	return store, func() {
		_ = store.Close()
		terminate()
	}
}
