// Package generate builds synthetic sessions for exercising replay
// without a live capture.
package generate

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/SmitUplenchwar2687/oscseq/internal/osc"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
)

const (
	// PatternSteady spaces events evenly.
	PatternSteady = "steady"
	// PatternBurst clusters events into bursts with quiet gaps.
	PatternBurst = "burst"
	// PatternRamp makes events denser towards the end.
	PatternRamp = "ramp"
)

// DefaultChannels is used when Options.Channels is empty.
var DefaultChannels = []string{"/foo", "/bar"}

// Options controls how a synthetic session is generated.
type Options struct {
	Count    int
	Channels []string
	Duration time.Duration
	Pattern  string
	Start    time.Time
	Seed     int64
	MaxArgs  int // each event gets 0..MaxArgs integer arguments
}

// DefaultOptions returns defaults aligned with the CLI.
func DefaultOptions() Options {
	return Options{
		Count:    100,
		Channels: DefaultChannels,
		Duration: 10 * time.Second,
		Pattern:  PatternSteady,
		MaxArgs:  2,
	}
}

// GenerateSession creates a session whose events follow opts.Pattern.
// Channels are registered in the given order and every event lands on
// a randomly chosen channel.
func GenerateSession(opts Options) (*session.Session, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", opts.Count)
	}
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %s", opts.Duration)
	}
	if opts.MaxArgs < 0 {
		return nil, fmt.Errorf("max args must not be negative, got %d", opts.MaxArgs)
	}

	if len(opts.Channels) == 0 {
		opts.Channels = DefaultChannels
	}
	channels, err := osc.NormalizeAddresses(opts.Channels)
	if err != nil {
		return nil, err
	}
	if opts.Pattern == "" {
		opts.Pattern = PatternSteady
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now().Truncate(time.Second)
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	var offsets []time.Duration
	switch opts.Pattern {
	case PatternBurst:
		offsets = burstOffsets(rng, opts.Count, opts.Duration)
	case PatternRamp:
		offsets = rampOffsets(opts.Count, opts.Duration)
	default: // steady and unknown patterns default to steady behavior.
		offsets = steadyOffsets(opts.Count, opts.Duration)
	}
	// Appending in time order keeps every channel non-decreasing.
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	s := session.New(channels...)
	for _, off := range offsets {
		s.Append(session.Event{
			CapturedAt: opts.Start.Add(off),
			Channel:    channels[rng.Intn(len(channels))],
			Args:       randomArgs(rng, opts.MaxArgs),
		})
	}
	return s, nil
}

func randomArgs(rng *rand.Rand, maxArgs int) []string {
	n := rng.Intn(maxArgs + 1)
	args := make([]string, n)
	for i := range args {
		args[i] = strconv.Itoa(rng.Intn(128))
	}
	return args
}

func steadyOffsets(count int, dur time.Duration) []time.Duration {
	interval := dur / time.Duration(count)
	out := make([]time.Duration, count)
	for i := range out {
		out[i] = time.Duration(i) * interval
	}
	return out
}

func burstOffsets(rng *rand.Rand, count int, dur time.Duration) []time.Duration {
	out := make([]time.Duration, 0, count)
	numBursts := 4
	burstSize := count / numBursts
	burstGap := dur / time.Duration(numBursts)
	spread := burstGap / 10
	if spread <= 0 {
		spread = 1
	}

	for b := 0; b < numBursts; b++ {
		burstStart := time.Duration(b) * burstGap
		for i := 0; i < burstSize; i++ {
			out = append(out, burstStart+time.Duration(rng.Int63n(int64(spread))))
		}
	}

	for len(out) < count {
		out = append(out, time.Duration(rng.Int63n(int64(dur))))
	}
	return out
}

func rampOffsets(count int, dur time.Duration) []time.Duration {
	out := make([]time.Duration, count)
	for i := range out {
		frac := float64(i) / float64(count)
		out[i] = time.Duration(frac * frac * float64(dur))
	}
	return out
}
