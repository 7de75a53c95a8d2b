// Package storage persists finalized sessions. Each capture run is
// written once as a single flat snapshot; nothing is appended later.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ErrNotFound is returned by Load when the reference names no stored session.
var ErrNotFound = errors.New("storage: session not found")

// Store saves and loads session snapshots.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save writes a snapshot of s under a new time-stamped name and
	// returns the reference Load accepts.
	Save(ctx context.Context, s *session.Session) (string, error)

	// Load reads the session stored under ref.
	Load(ctx context.Context, ref string) (*session.Session, error)

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	File    FileConfig
	Redis   RedisConfig
	Clock   clock.Clock
}

// Open constructs the configured backend.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		fc := cfg.File
		if fc.Clock == nil {
			fc.Clock = cfg.Clock
		}
		return NewFileStore(fc)
	case BackendRedis:
		rc := cfg.Redis
		if rc.Clock == nil {
			rc.Clock = cfg.Clock
		}
		return NewRedisStore(&rc)
	case BackendMemory:
		return NewMemoryStore(cfg.Clock), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q, must be one of: file, redis, memory", cfg.Backend)
	}
}

// SnapshotName is the base name of a session captured at t.
func SnapshotName(t time.Time) string {
	return "recorded_" + t.Format("osc-20060102-150405")
}

func notFound(ref string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, ref)
}
