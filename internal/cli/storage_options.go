package cli

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/oscseq/internal/config"
	"github.com/SmitUplenchwar2687/oscseq/internal/storage"
)

type storageOptions struct {
	backend           string
	saveDir           string
	compress          bool
	redisHost         string
	redisPort         int
	redisPassword     string
	redisDB           int
	redisCluster      bool
	redisClusterNodes []string
	redisPoolSize     int
	redisMaxRetries   int
	redisDialTimeout  time.Duration
	redisTTL          time.Duration
	redisKeyPrefix    string
}

func defaultStorageOptions() storageOptions {
	def := config.Default().Storage
	return storageOptions{
		backend:          def.Backend,
		saveDir:          def.File.Dir,
		redisHost:        def.Redis.Host,
		redisPort:        def.Redis.Port,
		redisPoolSize:    def.Redis.PoolSize,
		redisMaxRetries:  def.Redis.MaxRetries,
		redisDialTimeout: def.Redis.DialTimeout,
	}
}

func (o *storageOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.backend, "storage", o.backend, "storage backend (file, redis, memory)")
	cmd.Flags().StringVar(&o.saveDir, "save-dir", o.saveDir, "directory for session files (file backend)")
	cmd.Flags().BoolVar(&o.compress, "compress", false, "zstd-compress saved session files (file backend)")
	cmd.Flags().StringVar(&o.redisHost, "redis-host", o.redisHost, "redis host (or host:port)")
	cmd.Flags().IntVar(&o.redisPort, "redis-port", o.redisPort, "redis port")
	cmd.Flags().StringVar(&o.redisPassword, "redis-password", "", "redis password")
	cmd.Flags().IntVar(&o.redisDB, "redis-db", 0, "redis database index")
	cmd.Flags().BoolVar(&o.redisCluster, "redis-cluster", false, "enable redis cluster mode")
	cmd.Flags().StringSliceVar(&o.redisClusterNodes, "redis-cluster-nodes", nil, "redis cluster nodes host:port list")
	cmd.Flags().IntVar(&o.redisPoolSize, "redis-pool-size", o.redisPoolSize, "redis connection pool size")
	cmd.Flags().IntVar(&o.redisMaxRetries, "redis-max-retries", o.redisMaxRetries, "redis max retries")
	cmd.Flags().DurationVar(&o.redisDialTimeout, "redis-dial-timeout", o.redisDialTimeout, "redis dial timeout")
	cmd.Flags().DurationVar(&o.redisTTL, "redis-ttl", 0, "expire saved sessions after this long (0 = never)")
	cmd.Flags().StringVar(&o.redisKeyPrefix, "redis-key-prefix", "", "redis key prefix for sessions")
}

func (o *storageOptions) applyConfigIfUnset(cmd *cobra.Command, cfg *config.StorageConfig) {
	if cfg == nil {
		return
	}

	if !cmd.Flags().Changed("storage") {
		o.backend = cfg.Backend
	}
	if !cmd.Flags().Changed("save-dir") {
		o.saveDir = cfg.File.Dir
	}
	if !cmd.Flags().Changed("compress") {
		o.compress = cfg.File.Compress
	}
	if !cmd.Flags().Changed("redis-host") {
		o.redisHost = cfg.Redis.Host
	}
	if !cmd.Flags().Changed("redis-port") {
		o.redisPort = cfg.Redis.Port
	}
	if !cmd.Flags().Changed("redis-password") {
		o.redisPassword = cfg.Redis.Password
	}
	if !cmd.Flags().Changed("redis-db") {
		o.redisDB = cfg.Redis.DB
	}
	if !cmd.Flags().Changed("redis-cluster") {
		o.redisCluster = cfg.Redis.Cluster
	}
	if !cmd.Flags().Changed("redis-cluster-nodes") {
		o.redisClusterNodes = cfg.Redis.ClusterNodes
	}
	if !cmd.Flags().Changed("redis-pool-size") {
		o.redisPoolSize = cfg.Redis.PoolSize
	}
	if !cmd.Flags().Changed("redis-max-retries") {
		o.redisMaxRetries = cfg.Redis.MaxRetries
	}
	if !cmd.Flags().Changed("redis-dial-timeout") {
		o.redisDialTimeout = cfg.Redis.DialTimeout
	}
	if !cmd.Flags().Changed("redis-ttl") {
		o.redisTTL = cfg.Redis.TTL
	}
	if !cmd.Flags().Changed("redis-key-prefix") {
		o.redisKeyPrefix = cfg.Redis.KeyPrefix
	}
}

func (o *storageOptions) normalize() error {
	if o.backend != storage.BackendRedis || o.redisCluster {
		return nil
	}

	host, port, err := normalizeRedisHostPort(o.redisHost, o.redisPort)
	if err != nil {
		return err
	}
	o.redisHost = host
	o.redisPort = port
	return nil
}

func (o *storageOptions) toConfig() config.StorageConfig {
	return config.StorageConfig{
		Backend: o.backend,
		File: config.FileStorageConfig{
			Dir:      o.saveDir,
			Compress: o.compress,
		},
		Redis: config.RedisStorageConfig{
			Host:         o.redisHost,
			Port:         o.redisPort,
			Password:     o.redisPassword,
			DB:           o.redisDB,
			Cluster:      o.redisCluster,
			ClusterNodes: append([]string(nil), o.redisClusterNodes...),
			PoolSize:     o.redisPoolSize,
			MaxRetries:   o.redisMaxRetries,
			DialTimeout:  o.redisDialTimeout,
			TTL:          o.redisTTL,
			KeyPrefix:    o.redisKeyPrefix,
		},
	}
}

// open resolves flags against cfg and opens the selected store.
func (o *storageOptions) open(cmd *cobra.Command, cfg *config.StorageConfig) (storage.Store, error) {
	o.applyConfigIfUnset(cmd, cfg)
	if err := o.normalize(); err != nil {
		return nil, err
	}
	sc := o.toConfig()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return storage.Open(sc.StoreConfig())
}

func normalizeRedisHostPort(host string, port int) (string, int, error) {
	if strings.Contains(host, ":") {
		h, p, err := net.SplitHostPort(host)
		if err != nil {
			return "", 0, fmt.Errorf("invalid --redis-host value %q: %w", host, err)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("invalid redis port in --redis-host %q: %w", host, err)
		}
		host = h
		port = n
	}

	if host == "" {
		return "", 0, fmt.Errorf("redis host cannot be empty")
	}
	if port <= 0 {
		return "", 0, fmt.Errorf("redis port must be positive, got %d", port)
	}

	return host, port, nil
}
