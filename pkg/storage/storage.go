package storage

import (
	internalstorage "github.com/SmitUplenchwar2687/oscseq/internal/storage"
	"github.com/SmitUplenchwar2687/oscseq/pkg/clock"
)

const (
	BackendFile   = internalstorage.BackendFile
	BackendRedis  = internalstorage.BackendRedis
	BackendMemory = internalstorage.BackendMemory
)

// ErrNotFound is returned by Load when nothing is stored under a reference.
var ErrNotFound = internalstorage.ErrNotFound

// Store saves and loads session snapshots.
type Store = internalstorage.Store

// Config selects and configures a backend.
type Config = internalstorage.Config

// FileConfig configures the file backend.
type FileConfig = internalstorage.FileConfig

// RedisConfig configures the Redis backend.
type RedisConfig = internalstorage.RedisConfig

type (
	FileStore   = internalstorage.FileStore
	RedisStore  = internalstorage.RedisStore
	MemoryStore = internalstorage.MemoryStore
)

// Open constructs the configured backend.
func Open(cfg Config) (Store, error) {
	return internalstorage.Open(cfg)
}

// NewFileStore creates a file store, creating its directory if needed.
func NewFileStore(cfg FileConfig) (*FileStore, error) {
	return internalstorage.NewFileStore(cfg)
}

// NewRedisStore connects to Redis and returns a store.
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	return internalstorage.NewRedisStore(cfg)
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(c clock.Clock) *MemoryStore {
	return internalstorage.NewMemoryStore(c)
}
