package replay

import (
	"time"

	"github.com/SmitUplenchwar2687/oscseq/internal/osc"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
)

// Filter selects which timeline events are replayed.
type Filter struct {
	Channels []string  // Only include these channels (empty = all)
	After    time.Time // Only include events captured after this time (zero = no limit)
	Before   time.Time // Only include events captured before this time (zero = no limit)
}

// Match returns true if the event passes the filter.
func (f *Filter) Match(e session.Event) bool {
	if len(f.Channels) > 0 && !containsChannel(f.Channels, e.Channel) {
		return false
	}
	if !f.After.IsZero() && !e.CapturedAt.After(f.After) {
		return false
	}
	if !f.Before.IsZero() && !e.CapturedAt.Before(f.Before) {
		return false
	}
	return true
}

// Apply returns the events of timeline that match, in order.
func (f *Filter) Apply(timeline []session.Event) []session.Event {
	if f.empty() {
		return timeline
	}
	var out []session.Event
	for _, e := range timeline {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (f *Filter) empty() bool {
	return len(f.Channels) == 0 && f.After.IsZero() && f.Before.IsZero()
}

// Channels are compared in normalized form, so "foo" matches "/foo".
func containsChannel(channels []string, ch string) bool {
	for _, c := range channels {
		if osc.NormalizeAddress(c) == ch {
			return true
		}
	}
	return false
}
