package session

import (
	"fmt"
	"time"
)

// TimeFormat is the textual capture timestamp stored in session files:
// local wall time with microsecond precision.
const TimeFormat = "2006-01-02 15:04:05.000000"

// Event is a single captured message. Events are values; the session
// copies Args on the way in and out so a stored event never changes.
type Event struct {
	CapturedAt time.Time
	Channel    string
	Args       []string
}

// Offset returns how far e was captured after t0.
func (e Event) Offset(t0 time.Time) time.Duration {
	return e.CapturedAt.Sub(t0)
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s %q", e.CapturedAt.Format(TimeFormat), e.Channel, e.Args)
}

// FormatTime renders t in the session timestamp format.
func FormatTime(t time.Time) string {
	return t.In(time.Local).Format(TimeFormat)
}

// ParseTime parses a session timestamp as local time.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeFormat, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func cloneArgs(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, len(args))
	copy(out, args)
	return out
}
