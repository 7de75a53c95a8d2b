// Package clock re-exports the time source used for capture timestamps
// and replay scheduling, so embedders can drive both from a virtual clock.
package clock

import (
	"time"

	internalclock "github.com/SmitUplenchwar2687/oscseq/internal/clock"
)

type (
	Clock        = internalclock.Clock
	RealClock    = internalclock.RealClock
	VirtualClock = internalclock.VirtualClock
)

func NewRealClock() *RealClock {
	return internalclock.NewRealClock()
}

// NewVirtualClock starts a virtual clock at start. Pass it to a recorder
// or replay scheduler and call Advance to move capture and playback time.
func NewVirtualClock(start time.Time) *VirtualClock {
	return internalclock.NewVirtualClock(start)
}

// OrReal returns c, or a wall clock when c is nil.
func OrReal(c Clock) Clock {
	return internalclock.OrReal(c)
}
