// Package replay plays a recorded session back over the network,
// re-emitting every event at its original offset from the first one.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
	"github.com/SmitUplenchwar2687/oscseq/internal/logging"
	"github.com/SmitUplenchwar2687/oscseq/internal/metrics"
	"github.com/SmitUplenchwar2687/oscseq/internal/osc"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
)

// DefaultQuantum is the polling interval between due-event checks.
const DefaultQuantum = 10 * time.Millisecond

// Sender emits one event. *osc.Transport implements it.
type Sender interface {
	Send(channel string, args []string) error
}

// Options tune a Scheduler. The zero value replays every event at the
// recorded cadence with DefaultQuantum.
type Options struct {
	Quantum time.Duration
	Speed   float64 // 1.0 = recorded cadence, 2.0 = twice as fast; <= 0 means 1.0
	Filter  Filter
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Result describes one sent event.
type Result struct {
	Index     int           `json:"index"`
	Event     session.Event `json:"event"`
	Scheduled time.Duration `json:"scheduled"` // target offset from replay start
	Actual    time.Duration `json:"actual"`    // offset at which it was sent
}

// Lag is how late the event went out. It is never negative.
func (r Result) Lag() time.Duration {
	return r.Actual - r.Scheduled
}

// Report summarizes a replay run.
type Report struct {
	Total    int           `json:"total"`    // events in the session
	Filtered int           `json:"filtered"` // events selected for replay
	Sent     int           `json:"sent"`
	Elapsed  time.Duration `json:"elapsed"` // wall time from first check to last send
	Span     time.Duration `json:"span"`    // recorded time between first and last selected event
	MaxLag   time.Duration `json:"max_lag"`
}

// EventError aborts a replay when an event cannot be encoded for the wire.
type EventError struct {
	Index int
	Event session.Event
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("replay aborted at event %d (%s): %v", e.Index, e.Event, e.Err)
}

func (e *EventError) Unwrap() error { return e.Err }

// Scheduler drives a single-threaded polling send loop. Each Run builds
// its own timeline and cursor, so a Scheduler can be reused.
type Scheduler struct {
	sender  Sender
	clock   clock.Clock
	quantum time.Duration
	speed   float64
	filter  Filter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Scheduler that sends through s and reads time from clk.
func New(s Sender, clk clock.Clock, opts Options) *Scheduler {
	if opts.Quantum <= 0 {
		opts.Quantum = DefaultQuantum
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	return &Scheduler{
		sender:  s,
		clock:   clock.OrReal(clk),
		quantum: opts.Quantum,
		speed:   opts.Speed,
		filter:  opts.Filter,
		logger:  logging.OrDefault(opts.Logger),
		metrics: opts.Metrics,
	}
}

// Run replays sess and calls cb after every successful send. An event
// is sent once its scheduled offset has elapsed, never before. Events
// already due are sent back to back without sleeping. ctx is checked
// before every send and during every wait.
//
// A payload that cannot be encoded aborts the run with *EventError.
// Any other send failure is returned unchanged. The returned report
// is valid in both cases.
func (s *Scheduler) Run(ctx context.Context, sess *session.Session, cb func(Result)) (*Report, error) {
	logger := logging.FromContext(ctx, s.logger)

	timeline := session.Timeline(sess)
	selected := s.filter.Apply(timeline)
	report := &Report{
		Total:    len(timeline),
		Filtered: len(selected),
		Span:     session.Span(selected),
	}
	if len(selected) == 0 {
		logger.Info("nothing to replay", "total", report.Total)
		return report, nil
	}

	t0 := selected[0].CapturedAt
	schedule := make([]time.Duration, len(selected))
	for i, e := range selected {
		schedule[i] = time.Duration(float64(e.Offset(t0)) / s.speed)
	}

	start := s.clock.Now()
	for cursor := 0; cursor < len(selected); {
		if err := ctx.Err(); err != nil {
			report.Elapsed = s.clock.Since(start)
			return report, err
		}

		elapsed := s.clock.Since(start)
		if elapsed < schedule[cursor] {
			select {
			case <-ctx.Done():
				report.Elapsed = s.clock.Since(start)
				return report, ctx.Err()
			case <-s.clock.After(s.quantum):
			}
			continue
		}

		e := selected[cursor]
		if err := s.sender.Send(e.Channel, e.Args); err != nil {
			report.Elapsed = s.clock.Since(start)
			var encErr *osc.EncodeError
			if errors.As(err, &encErr) {
				return report, &EventError{Index: cursor, Event: e, Err: err}
			}
			return report, err
		}

		res := Result{Index: cursor, Event: e, Scheduled: schedule[cursor], Actual: elapsed}
		report.Sent++
		if lag := res.Lag(); lag > report.MaxLag {
			report.MaxLag = lag
		}
		s.metrics.EventSent(e.Channel, res.Lag())
		logger.Debug("sent", "index", cursor, "channel", e.Channel, "args", e.Args, "offset", res.Scheduled, "lag", res.Lag())
		if cb != nil {
			cb(res)
		}
		cursor++
	}

	report.Elapsed = s.clock.Since(start)
	logger.Info("replay done", "sent", report.Sent, "elapsed", report.Elapsed, "max_lag", report.MaxLag)
	return report, nil
}
