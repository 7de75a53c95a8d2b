package session

import (
	"io"
	"time"

	internalsession "github.com/SmitUplenchwar2687/oscseq/internal/session"
)

// TimeFormat is the timestamp layout used in session files.
const TimeFormat = internalsession.TimeFormat

// Event is a single captured message.
type Event = internalsession.Event

// Session holds captured events per channel in registration order.
type Session = internalsession.Session

// New creates an empty session with the given channels registered.
func New(channels ...string) *Session {
	return internalsession.New(channels...)
}

// ReadJSON decodes a session file.
func ReadJSON(r io.Reader) (*Session, error) {
	return internalsession.ReadJSON(r)
}

// Timeline merges all channels of s into chronological order.
func Timeline(s *Session) []Event {
	return internalsession.Timeline(s)
}

// Span returns the time between the first and last event of a timeline.
func Span(timeline []Event) time.Duration {
	return internalsession.Span(timeline)
}
