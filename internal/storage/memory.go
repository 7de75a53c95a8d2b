package storage

import (
	"context"
	"strconv"
	"sync"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
)

// MemoryStore keeps serialized snapshots in a map. It stores bytes, not
// the live session, so later mutation of a saved session is not visible.
//
// Thread-safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
	order []string
	clock clock.Clock
}

// NewMemoryStore creates an empty in-memory store using the given clock for names.
func NewMemoryStore(c clock.Clock) *MemoryStore {
	return &MemoryStore{
		items: make(map[string][]byte),
		clock: clock.OrReal(c),
	}
}

func (s *MemoryStore) Save(_ context.Context, sess *session.Session) (string, error) {
	data, err := sess.MarshalJSON()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := SnapshotName(s.clock.Now())
	ref := base
	for i := 1; s.items[ref] != nil; i++ {
		ref = base + "-" + strconv.Itoa(i)
	}
	s.items[ref] = data
	s.order = append(s.order, ref)
	return ref, nil
}

func (s *MemoryStore) Load(_ context.Context, ref string) (*session.Session, error) {
	s.mu.RLock()
	data, ok := s.items[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(ref)
	}

	sess := session.New()
	if err := sess.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return sess, nil
}

// Refs returns the saved references in save order.
func (s *MemoryStore) Refs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) Close() error {
	return nil
}
