package session

import (
	"sync"
)

// Session holds the events captured on every channel of one capture run.
// Channels keep the order they were registered in; each channel keeps
// its events in arrival order.
//
// Thread-safe for concurrent use. Each Append holds the lock for a
// single event, so Snapshot never observes a torn channel slice.
type Session struct {
	mu     sync.RWMutex
	order  []string
	events map[string][]Event
}

// New creates an empty session with the given channels registered in order.
func New(channels ...string) *Session {
	s := &Session{
		events: make(map[string][]Event, len(channels)),
	}
	for _, ch := range channels {
		s.registerLocked(ch)
	}
	return s
}

// Register adds an empty channel if it is not already present.
func (s *Session) Register(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerLocked(channel)
}

func (s *Session) registerLocked(channel string) {
	if _, ok := s.events[channel]; ok {
		return
	}
	s.order = append(s.order, channel)
	s.events[channel] = []Event{}
}

// Append stores e at the end of its channel, registering the channel
// first if needed.
func (s *Session) Append(e Event) {
	e.Args = cloneArgs(e.Args)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerLocked(e.Channel)
	s.events[e.Channel] = append(s.events[e.Channel], e)
}

// Channels returns the registered channels in registration order.
func (s *Session) Channels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Events returns a copy of the events stored for channel.
func (s *Session) Events(channel string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEvents(s.events[channel])
}

// Len returns the total number of stored events.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, evs := range s.events {
		n += len(evs)
	}
	return n
}

// Snapshot returns a deep copy taken under a single read lock.
func (s *Session) Snapshot() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &Session{
		order:  make([]string, len(s.order)),
		events: make(map[string][]Event, len(s.events)),
	}
	copy(out.order, s.order)
	for ch, evs := range s.events {
		out.events[ch] = copyEvents(evs)
	}
	return out
}

func copyEvents(evs []Event) []Event {
	out := make([]Event, len(evs))
	for i, e := range evs {
		e.Args = cloneArgs(e.Args)
		out[i] = e
	}
	return out
}
