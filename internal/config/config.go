package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/SmitUplenchwar2687/oscseq/internal/logging"
	"github.com/SmitUplenchwar2687/oscseq/internal/osc"
	"github.com/SmitUplenchwar2687/oscseq/internal/storage"
)

// Config is the top-level configuration for oscseq.
type Config struct {
	Record  RecordConfig  `json:"record" yaml:"record" envPrefix:"RECORD_"`
	Replay  ReplayConfig  `json:"replay" yaml:"replay" envPrefix:"REPLAY_"`
	Storage StorageConfig `json:"storage" yaml:"storage" envPrefix:"STORAGE_"`
	Log     LogConfig     `json:"log" yaml:"log" envPrefix:"LOG_"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" envPrefix:"METRICS_"`
}

// RecordConfig holds capture settings.
type RecordConfig struct {
	Host          string        `json:"host" yaml:"host" env:"HOST"`
	Port          int           `json:"port" yaml:"port" env:"PORT"`
	Channels      []string      `json:"channels" yaml:"channels" env:"CHANNELS" envSeparator:","`
	FinishChannel string        `json:"finish_channel" yaml:"finish_channel" env:"FINISH_CHANNEL"`
	Duration      time.Duration `json:"duration" yaml:"duration" env:"DURATION"`
}

// ReplayConfig holds playback settings.
type ReplayConfig struct {
	Host     string        `json:"host" yaml:"host" env:"HOST"`
	Port     int           `json:"port" yaml:"port" env:"PORT"`
	Quantum  time.Duration `json:"quantum" yaml:"quantum" env:"QUANTUM"`
	Speed    float64       `json:"speed" yaml:"speed" env:"SPEED"`
	JoinArgs bool          `json:"join_args" yaml:"join_args" env:"JOIN_ARGS"`
}

// StorageConfig selects where sessions are saved.
type StorageConfig struct {
	Backend string             `json:"backend" yaml:"backend" env:"BACKEND"`
	File    FileStorageConfig  `json:"file" yaml:"file" envPrefix:"FILE_"`
	Redis   RedisStorageConfig `json:"redis" yaml:"redis" envPrefix:"REDIS_"`
}

// FileStorageConfig holds file backend settings.
type FileStorageConfig struct {
	Dir      string `json:"dir" yaml:"dir" env:"DIR"`
	Compress bool   `json:"compress" yaml:"compress" env:"COMPRESS"`
}

// RedisStorageConfig holds Redis backend settings.
type RedisStorageConfig struct {
	Host         string        `json:"host" yaml:"host" env:"HOST"`
	Port         int           `json:"port" yaml:"port" env:"PORT"`
	Password     string        `json:"password" yaml:"password" env:"PASSWORD"`
	DB           int           `json:"db" yaml:"db" env:"DB"`
	Cluster      bool          `json:"cluster" yaml:"cluster" env:"CLUSTER"`
	ClusterNodes []string      `json:"cluster_nodes" yaml:"cluster_nodes" env:"CLUSTER_NODES" envSeparator:","`
	PoolSize     int           `json:"pool_size" yaml:"pool_size" env:"POOL_SIZE"`
	MaxRetries   int           `json:"max_retries" yaml:"max_retries" env:"MAX_RETRIES"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout" env:"DIAL_TIMEOUT"`
	TTL          time.Duration `json:"ttl" yaml:"ttl" env:"TTL"`
	KeyPrefix    string        `json:"key_prefix" yaml:"key_prefix" env:"KEY_PREFIX"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" env:"LEVEL"`
	Format string `json:"format" yaml:"format" env:"FORMAT"`
}

// MetricsConfig holds the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `json:"addr" yaml:"addr" env:"ADDR"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Record: RecordConfig{
			Host:     "127.0.0.1",
			Port:     5005,
			Channels: []string{"/foo", "/bar"},
			Duration: 60 * time.Second,
		},
		Replay: ReplayConfig{
			Host:    "127.0.0.1",
			Port:    5005,
			Quantum: 10 * time.Millisecond,
			Speed:   1,
		},
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			File: FileStorageConfig{
				Dir: "./data",
			},
			Redis: RedisStorageConfig{
				Host:        "localhost",
				Port:        6379,
				PoolSize:    10,
				MaxRetries:  3,
				DialTimeout: 5 * time.Second,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// Validate checks that the config is valid.
func (c Config) Validate() error {
	if err := c.Record.Validate(); err != nil {
		return err
	}
	if err := c.Replay.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q, must be one of: text, json", c.Log.Format)
	}
	return nil
}

// Validate checks the capture settings.
func (c RecordConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("record.port must be in 0-65535, got %d", c.Port)
	}
	channels, err := osc.NormalizeAddresses(c.Channels)
	if err != nil {
		return fmt.Errorf("record.channels: %w", err)
	}
	if len(channels) == 0 {
		return fmt.Errorf("record.channels must name at least one channel")
	}
	if c.FinishChannel == "" {
		if c.Duration <= 0 {
			return fmt.Errorf("record.duration must be positive when no finish channel is set, got %s", c.Duration)
		}
		return nil
	}
	finish := osc.NormalizeAddress(c.FinishChannel)
	if err := osc.ValidateAddress(finish); err != nil {
		return fmt.Errorf("record.finish_channel: %w", err)
	}
	if slices.Contains(channels, finish) {
		return fmt.Errorf("record.finish_channel %s is also a recorded channel", finish)
	}
	return nil
}

// Validate checks the playback settings.
func (c ReplayConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("replay.host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("replay.port must be in 1-65535, got %d", c.Port)
	}
	if c.Quantum <= 0 {
		return fmt.Errorf("replay.quantum must be positive, got %s", c.Quantum)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("replay.speed must be positive, got %g", c.Speed)
	}
	return nil
}

// Validate checks the storage backend settings.
func (c StorageConfig) Validate() error {
	switch c.Backend {
	case storage.BackendFile, storage.BackendMemory:
	case storage.BackendRedis:
		if c.Redis.Cluster {
			if len(c.Redis.ClusterNodes) == 0 {
				return fmt.Errorf("storage.redis.cluster_nodes is required when cluster=true")
			}
		} else {
			if c.Redis.Host == "" {
				return fmt.Errorf("storage.redis.host is required")
			}
			if c.Redis.Port <= 0 {
				return fmt.Errorf("storage.redis.port must be positive, got %d", c.Redis.Port)
			}
		}
		if c.Redis.TTL < 0 {
			return fmt.Errorf("storage.redis.ttl must not be negative, got %s", c.Redis.TTL)
		}
	default:
		return fmt.Errorf("unknown storage backend %q, must be one of: file, redis, memory", c.Backend)
	}
	return nil
}

// StoreConfig converts the settings into a storage.Config.
func (c StorageConfig) StoreConfig() storage.Config {
	return storage.Config{
		Backend: c.Backend,
		File: storage.FileConfig{
			Dir:      c.File.Dir,
			Compress: c.File.Compress,
		},
		Redis: storage.RedisConfig{
			Host:         c.Redis.Host,
			Port:         c.Redis.Port,
			Password:     c.Redis.Password,
			DB:           c.Redis.DB,
			Cluster:      c.Redis.Cluster,
			ClusterNodes: c.Redis.ClusterNodes,
			PoolSize:     c.Redis.PoolSize,
			MaxRetries:   c.Redis.MaxRetries,
			DialTimeout:  c.Redis.DialTimeout,
			TTL:          c.Redis.TTL,
			KeyPrefix:    c.Redis.KeyPrefix,
		},
	}
}
