package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
)

var epoch = time.Date(2024, 3, 9, 18, 30, 5, 0, time.Local)

type storeFactory struct {
	name string
	new  func(t *testing.T, clk clock.Clock) (Store, func())
}

func storeFactories() []storeFactory {
	return []storeFactory{
		{
			name: "memory",
			new: func(t *testing.T, clk clock.Clock) (Store, func()) {
				return NewMemoryStore(clk), func() {}
			},
		},
		{
			name: "file",
			new: func(t *testing.T, clk clock.Clock) (Store, func()) {
				s, err := NewFileStore(FileConfig{Dir: t.TempDir(), Clock: clk})
				require.NoError(t, err)
				return s, func() {}
			},
		},
		{
			name: "file-zstd",
			new: func(t *testing.T, clk clock.Clock) (Store, func()) {
				s, err := NewFileStore(FileConfig{Dir: t.TempDir(), Compress: true, Clock: clk})
				require.NoError(t, err)
				return s, func() {}
			},
		},
		{
			name: "redis",
			new: func(t *testing.T, clk clock.Clock) (Store, func()) {
				return newRedisStoreForTest(t, clk)
			},
		},
	}
}

func sampleSession() *session.Session {
	s := session.New("/foo", "/bar")
	s.Append(session.Event{CapturedAt: epoch, Channel: "/foo", Args: []string{"1"}})
	s.Append(session.Event{CapturedAt: epoch.Add(100 * time.Millisecond), Channel: "/bar", Args: []string{"2", "x"}})
	s.Append(session.Event{CapturedAt: epoch.Add(250 * time.Millisecond), Channel: "/foo", Args: []string{"3"}})
	return s
}

func TestStoreContract(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			t.Run("save then load", func(t *testing.T) {
				s, cleanup := f.new(t, clock.NewVirtualClock(epoch))
				defer cleanup()

				want := sampleSession()
				ref, err := s.Save(context.Background(), want)
				require.NoError(t, err)
				assert.Contains(t, ref, "recorded_osc-20240309-183005")

				got, err := s.Load(context.Background(), ref)
				require.NoError(t, err)
				assert.Equal(t, want.Channels(), got.Channels())

				wantTL, gotTL := session.Timeline(want), session.Timeline(got)
				require.Len(t, gotTL, len(wantTL))
				for i := range wantTL {
					assert.Equal(t, wantTL[i].Channel, gotTL[i].Channel)
					assert.Equal(t, wantTL[i].Args, gotTL[i].Args)
					assert.True(t, wantTL[i].CapturedAt.Equal(gotTL[i].CapturedAt))
				}
			})

			t.Run("saves never overwrite", func(t *testing.T) {
				s, cleanup := f.new(t, clock.NewVirtualClock(epoch))
				defer cleanup()

				first, err := s.Save(context.Background(), sampleSession())
				require.NoError(t, err)
				second, err := s.Save(context.Background(), session.New("/other"))
				require.NoError(t, err)
				assert.NotEqual(t, first, second)

				loaded, err := s.Load(context.Background(), first)
				require.NoError(t, err)
				assert.Equal(t, 3, loaded.Len())
			})

			t.Run("snapshot is detached", func(t *testing.T) {
				s, cleanup := f.new(t, clock.NewVirtualClock(epoch))
				defer cleanup()

				sess := sampleSession()
				ref, err := s.Save(context.Background(), sess)
				require.NoError(t, err)
				sess.Append(session.Event{CapturedAt: epoch.Add(time.Second), Channel: "/foo"})

				loaded, err := s.Load(context.Background(), ref)
				require.NoError(t, err)
				assert.Equal(t, 3, loaded.Len())
			})

			t.Run("missing reference", func(t *testing.T) {
				s, cleanup := f.new(t, clock.NewVirtualClock(epoch))
				defer cleanup()

				_, err := s.Load(context.Background(), "recorded_osc-19990101-000000.json")
				assert.ErrorIs(t, err, ErrNotFound)
			})
		})
	}
}
