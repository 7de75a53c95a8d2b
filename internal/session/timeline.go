package session

import (
	"sort"
	"time"
)

// Timeline merges every channel of s into one chronological sequence.
//
// Events are flattened channel by channel in registration order, each
// channel in arrival order, then stable-sorted by capture time. Events
// sharing a timestamp therefore keep channel registration order, and
// within a channel, arrival order.
func Timeline(s *Session) []Event {
	snap := s.Snapshot()

	out := make([]Event, 0, snap.Len())
	for _, ch := range snap.order {
		out = append(out, snap.events[ch]...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CapturedAt.Before(out[j].CapturedAt)
	})
	return out
}

// Span returns the time between the first and last event of a timeline.
func Span(timeline []Event) time.Duration {
	if len(timeline) == 0 {
		return 0
	}
	return timeline[len(timeline)-1].CapturedAt.Sub(timeline[0].CapturedAt)
}
