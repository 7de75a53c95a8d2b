package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func channelsAndArgs(evs []Event) [][2]string {
	out := make([][2]string, len(evs))
	for i, e := range evs {
		arg := ""
		if len(e.Args) > 0 {
			arg = e.Args[0]
		}
		out[i] = [2]string{e.Channel, arg}
	}
	return out
}

func TestTimeline_MergesChronologically(t *testing.T) {
	s := New("/foo", "/bar")
	s.Append(Event{CapturedAt: at(0), Channel: "/foo", Args: []string{"1"}})
	s.Append(Event{CapturedAt: at(20), Channel: "/foo", Args: []string{"3"}})
	s.Append(Event{CapturedAt: at(10), Channel: "/bar", Args: []string{"2"}})

	got := Timeline(s)
	assert.Equal(t, [][2]string{{"/foo", "1"}, {"/bar", "2"}, {"/foo", "3"}}, channelsAndArgs(got))
	assert.Equal(t, 20*time.Millisecond, Span(got))
}

func TestTimeline_TiesFollowRegistrationOrder(t *testing.T) {
	s := New("/b", "/a", "/c")
	s.Append(Event{CapturedAt: at(5), Channel: "/c", Args: []string{"c1"}})
	s.Append(Event{CapturedAt: at(5), Channel: "/a", Args: []string{"a1"}})
	s.Append(Event{CapturedAt: at(5), Channel: "/b", Args: []string{"b1"}})
	s.Append(Event{CapturedAt: at(5), Channel: "/b", Args: []string{"b2"}})
	s.Append(Event{CapturedAt: at(1), Channel: "/c", Args: []string{"c0"}})

	got := Timeline(s)
	assert.Equal(t, [][2]string{
		{"/c", "c0"},
		{"/b", "b1"},
		{"/b", "b2"},
		{"/a", "a1"},
		{"/c", "c1"},
	}, channelsAndArgs(got))
}

func TestTimeline_TieOrderSurvivesPersistence(t *testing.T) {
	s := New("/b", "/a")
	s.Append(Event{CapturedAt: at(5), Channel: "/a", Args: []string{"a"}})
	s.Append(Event{CapturedAt: at(5), Channel: "/b", Args: []string{"b"}})

	data, err := s.MarshalJSON()
	require.NoError(t, err)
	loaded := New()
	require.NoError(t, loaded.UnmarshalJSON(data))

	for i := 0; i < 10; i++ {
		assert.Equal(t, [][2]string{{"/b", "b"}, {"/a", "a"}}, channelsAndArgs(Timeline(loaded)))
	}
}

func TestTimeline_Empty(t *testing.T) {
	got := Timeline(New("/foo"))
	assert.Empty(t, got)
	assert.Zero(t, Span(got))
}
