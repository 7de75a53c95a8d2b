package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestVirtualClock_AdvanceAndSet(t *testing.T) {
	vc := NewVirtualClock(epoch)
	vc.Advance(1 * time.Hour)
	vc.Advance(30 * time.Minute)
	assert.True(t, vc.Now().Equal(epoch.Add(90*time.Minute)))
	assert.Equal(t, 90*time.Minute, vc.Since(epoch))

	target := epoch.Add(24 * time.Hour)
	vc.Set(target)
	assert.True(t, vc.Now().Equal(target))
}

func TestVirtualClock_RejectsGoingBackwards(t *testing.T) {
	vc := NewVirtualClock(epoch)
	assert.Panics(t, func() { vc.Advance(-1 * time.Second) })
	assert.Panics(t, func() { vc.Set(epoch.Add(-1 * time.Hour)) })
}

func TestVirtualClock_After_FiresOnlyAtDeadline(t *testing.T) {
	vc := NewVirtualClock(epoch)
	ch1 := vc.After(1 * time.Second)
	ch2 := vc.After(5 * time.Second)
	ch3 := vc.After(10 * time.Second)
	require.Equal(t, 3, vc.Pending())

	vc.Advance(5 * time.Second)

	select {
	case got := <-ch1:
		assert.True(t, got.Equal(epoch.Add(5*time.Second)))
	default:
		t.Fatal("ch1 should have fired")
	}
	select {
	case <-ch2:
	default:
		t.Fatal("ch2 should have fired")
	}
	select {
	case <-ch3:
		t.Fatal("ch3 should not have fired")
	default:
	}
	assert.Equal(t, 1, vc.Pending())

	vc.Set(epoch.Add(time.Hour))
	select {
	case <-ch3:
	default:
		t.Fatal("ch3 should have fired after Set")
	}
}

func TestVirtualClock_After_ZeroDurationFiresImmediately(t *testing.T) {
	vc := NewVirtualClock(epoch)
	select {
	case <-vc.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
	assert.Zero(t, vc.Pending())
}

func TestVirtualClock_WaitForWaiters(t *testing.T) {
	vc := NewVirtualClock(epoch)
	fired := make(chan struct{})

	go func() {
		<-vc.After(10 * time.Millisecond)
		close(fired)
	}()

	vc.WaitForWaiters(1)
	vc.Advance(10 * time.Millisecond)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("waiter was not released by Advance")
	}
}

func TestVirtualClock_ConcurrentAccess(t *testing.T) {
	vc := NewVirtualClock(epoch)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = vc.Now()
			_ = vc.Since(epoch)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			vc.Advance(1 * time.Millisecond)
		}
	}()
	wg.Wait()

	assert.True(t, vc.Now().Equal(epoch.Add(100*time.Millisecond)))
}

func TestOrReal(t *testing.T) {
	assert.IsType(t, &RealClock{}, OrReal(nil))

	vc := NewVirtualClock(epoch)
	assert.Same(t, vc, OrReal(vc))
}
