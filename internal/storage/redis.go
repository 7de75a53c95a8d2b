package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
)

const (
	defaultRedisPoolSize    = 10
	defaultRedisMaxRetries  = 3
	defaultRedisDialTimeout = 5 * time.Second

	defaultRedisKeyPrefix = "oscseq:session:"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	Password     string        `json:"password" yaml:"password"`
	DB           int           `json:"db" yaml:"db"`
	Cluster      bool          `json:"cluster" yaml:"cluster"`
	ClusterNodes []string      `json:"cluster_nodes" yaml:"cluster_nodes"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	MaxRetries   int           `json:"max_retries" yaml:"max_retries"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	TTL          time.Duration `json:"ttl" yaml:"ttl"` // 0 keeps sessions forever
	KeyPrefix    string        `json:"key_prefix" yaml:"key_prefix"`
	Clock        clock.Clock   `json:"-" yaml:"-"`
}

// RedisStore keeps each session as one string value holding the
// persisted JSON document.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	clock  clock.Clock

	closeOnce sync.Once
	closeErr  error
}

// NewRedisStore connects and pings the server before returning.
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	conf, err := normalizeRedisConfig(cfg)
	if err != nil {
		return nil, err
	}

	client := newRedisClient(conf)
	s := &RedisStore{
		client: client,
		prefix: conf.KeyPrefix,
		ttl:    conf.TTL,
		clock:  clock.OrReal(conf.Clock),
	}

	if err := s.pingWithRetry(context.Background(), conf.MaxRetries); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return s, nil
}

// Save stores the snapshot under prefix+name and returns that key.
// SETNX keeps an existing session from being overwritten.
func (s *RedisStore) Save(ctx context.Context, sess *session.Session) (string, error) {
	data, err := sess.MarshalJSON()
	if err != nil {
		return "", err
	}

	base := s.prefix + SnapshotName(s.clock.Now())
	for i := 0; i < 100; i++ {
		key := base
		if i > 0 {
			key += "-" + strconv.Itoa(i)
		}
		ok, err := s.client.SetNX(ctx, key, data, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("saving session to redis: %w", err)
		}
		if ok {
			return key, nil
		}
	}
	return "", fmt.Errorf("saving session to redis: no free key for %s", base)
}

// Load accepts either the full key or the name without the key prefix.
func (s *RedisStore) Load(ctx context.Context, ref string) (*session.Session, error) {
	key := ref
	if !strings.HasPrefix(key, s.prefix) {
		key = s.prefix + ref
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session from redis: %w", err)
	}

	sess := session.New()
	if err := sess.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", key, err)
	}
	return sess, nil
}

// Close releases Redis resources. It is idempotent.
func (s *RedisStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

func (s *RedisStore) pingWithRetry(ctx context.Context, maxRetries int) error {
	attempts := maxRetries + 1
	backoff := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = s.client.Ping(ctx).Err(); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}

func normalizeRedisConfig(cfg *RedisConfig) (*RedisConfig, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	conf := *cfg
	if conf.PoolSize <= 0 {
		conf.PoolSize = defaultRedisPoolSize
	}
	if conf.MaxRetries <= 0 {
		conf.MaxRetries = defaultRedisMaxRetries
	}
	if conf.DialTimeout <= 0 {
		conf.DialTimeout = defaultRedisDialTimeout
	}
	if conf.KeyPrefix == "" {
		conf.KeyPrefix = defaultRedisKeyPrefix
	}
	if conf.TTL < 0 {
		return nil, fmt.Errorf("ttl must not be negative, got %s", conf.TTL)
	}

	if conf.Cluster {
		if len(conf.ClusterNodes) == 0 {
			return nil, fmt.Errorf("cluster_nodes is required when cluster=true")
		}
	} else {
		if conf.Host == "" {
			return nil, fmt.Errorf("host is required when cluster=false")
		}
		if conf.Port <= 0 {
			return nil, fmt.Errorf("port must be positive when cluster=false, got %d", conf.Port)
		}
	}
	return &conf, nil
}

func newRedisClient(cfg *RedisConfig) redis.UniversalClient {
	if cfg.Cluster {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:       cfg.ClusterNodes,
			Password:    cfg.Password,
			PoolSize:    cfg.PoolSize,
			MaxRetries:  cfg.MaxRetries,
			DialTimeout: cfg.DialTimeout,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: cfg.DialTimeout,
	})
}
