package listener

import (
	"net"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
	"github.com/SmitUplenchwar2687/oscseq/internal/osc"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
)

func bindLoopback(t *testing.T, channels []string, finish string, opts ...Option) (*Listener, *osc.Transport) {
	t.Helper()
	l, err := Bind(Config{Host: "127.0.0.1", Port: 0, Channels: channels, FinishChannel: finish}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Stop() })

	tr, err := osc.Dial("127.0.0.1", l.Addr().(*net.UDPAddr).Port)
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return l, tr
}

func waitForLen(t *testing.T, s *session.Session, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return s.Len() >= n }, 2*time.Second, time.Millisecond)
}

func firstArgs(evs []session.Event) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Args[0]
	}
	return out
}

func TestListener_RecordsPerChannelInArrivalOrder(t *testing.T) {
	l, tr := bindLoopback(t, []string{"/foo", "bar"}, "")

	require.NoError(t, tr.Send("/foo", []string{"1"}))
	waitForLen(t, l.Session(), 1)
	require.NoError(t, tr.Send("/bar", []string{"2"}))
	waitForLen(t, l.Session(), 2)
	require.NoError(t, tr.Send("/foo", []string{"3"}))
	waitForLen(t, l.Session(), 3)

	require.NoError(t, l.Stop())

	s := l.Session().Snapshot()
	assert.Equal(t, []string{"/foo", "/bar"}, s.Channels())
	assert.Equal(t, []string{"1", "3"}, firstArgs(s.Events("/foo")))
	assert.Equal(t, []string{"2"}, firstArgs(s.Events("/bar")))
}

func TestListener_TimestampsComeFromClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	vc := clock.NewVirtualClock(start)
	l, tr := bindLoopback(t, []string{"/foo"}, "", WithClock(vc))

	require.NoError(t, tr.Send("/foo", []string{"a"}))
	waitForLen(t, l.Session(), 1)
	vc.Advance(1500 * time.Millisecond)
	require.NoError(t, tr.Send("/foo", []string{"b"}))
	waitForLen(t, l.Session(), 2)
	require.NoError(t, l.Stop())

	evs := l.Session().Events("/foo")
	require.Len(t, evs, 2)
	assert.True(t, evs[0].CapturedAt.Equal(start))
	assert.Equal(t, 1500*time.Millisecond, evs[1].Offset(evs[0].CapturedAt))
}

func TestListener_PerChannelTimestampsNonDecreasing(t *testing.T) {
	l, tr := bindLoopback(t, []string{"/foo"}, "")

	for i := 0; i < 50; i++ {
		require.NoError(t, tr.Send("/foo", []string{strconv.Itoa(i)}))
	}
	waitForLen(t, l.Session(), 50)
	require.NoError(t, l.Stop())

	evs := l.Session().Events("/foo")
	for i := 1; i < len(evs); i++ {
		assert.False(t, evs[i].CapturedAt.Before(evs[i-1].CapturedAt), "event %d went backwards", i)
	}
}

func TestListener_SurvivesMalformedAndUnboundTraffic(t *testing.T) {
	l, tr := bindLoopback(t, []string{"/foo"}, "")

	raw, err := net.Dial("udp", l.Addr().String())
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Write([]byte("definitely not a packet"))
	require.NoError(t, err)

	require.NoError(t, tr.Send("/other", []string{"x"}))
	require.NoError(t, tr.Send("/foo", []string{"ok"}))
	waitForLen(t, l.Session(), 1)
	require.NoError(t, l.Stop())

	s := l.Session()
	assert.Equal(t, []string{"/foo"}, s.Channels())
	assert.Equal(t, []string{"ok"}, firstArgs(s.Events("/foo")))
}

func TestListener_FinishChannelEndsSession(t *testing.T) {
	l, tr := bindLoopback(t, []string{"/foo"}, "finish")

	require.NoError(t, tr.Send("/foo", []string{"1"}))
	waitForLen(t, l.Session(), 1)
	require.NoError(t, tr.Send("/finish", nil))
	require.NoError(t, tr.Send("/finish", nil))

	select {
	case <-l.Finished():
	case <-time.After(2 * time.Second):
		t.Fatal("finish signal not observed")
	}
	require.NoError(t, l.Wait())

	_ = tr.Send("/foo", []string{"late"})

	s := l.Session()
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"/foo"}, s.Channels(), "finish channel must not be recorded")
}

func TestListener_FinishIsIdempotent(t *testing.T) {
	l, _ := bindLoopback(t, []string{"/foo"}, "/finish")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.finish()
		}()
	}
	wg.Wait()

	<-l.Finished()
	require.NoError(t, l.Wait())
}

func TestListener_StopIsIdempotent(t *testing.T) {
	l, _ := bindLoopback(t, []string{"/foo"}, "")

	require.NoError(t, l.Stop())
	require.NoError(t, l.Stop())
	select {
	case <-l.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}
	select {
	case <-l.Finished():
		t.Fatal("Finished must only close on the finish channel")
	default:
	}
}

func TestBind_AddressInUse(t *testing.T) {
	first, _ := bindLoopback(t, []string{"/foo"}, "")
	port := first.Addr().(*net.UDPAddr).Port

	_, err := Bind(Config{Host: "127.0.0.1", Port: port, Channels: []string{"/foo"}})
	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), bindErr.Addr)
	assert.Contains(t, err.Error(), "already in use")
	if bindErr.Holder != "" {
		assert.Contains(t, bindErr.Holder, strconv.Itoa(os.Getpid()))
	}
}

func TestBind_InvalidConfig(t *testing.T) {
	tests := map[string]Config{
		"no channels":     {Host: "127.0.0.1"},
		"pattern channel": {Host: "127.0.0.1", Channels: []string{"/foo/*"}},
		"finish overlaps": {Host: "127.0.0.1", Channels: []string{"/foo"}, FinishChannel: "foo"},
		"invalid finish":  {Host: "127.0.0.1", Channels: []string{"/foo"}, FinishChannel: "/a b"},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			l, err := Bind(cfg)
			assert.Error(t, err)
			assert.Nil(t, l)
		})
	}
	_, err := Bind(Config{Host: "127.0.0.1"})
	assert.ErrorIs(t, err, ErrNoChannels)
}
