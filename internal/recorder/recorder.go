// Package recorder runs one capture session: it binds the listener,
// waits for the session to end, and persists the finalized snapshot.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
	"github.com/SmitUplenchwar2687/oscseq/internal/listener"
	"github.com/SmitUplenchwar2687/oscseq/internal/logging"
	"github.com/SmitUplenchwar2687/oscseq/internal/metrics"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
	"github.com/SmitUplenchwar2687/oscseq/internal/storage"
)

// ProgressSteps is the number of progress updates a duration-bound
// capture reports.
const ProgressSteps = 100

// Mode is how a capture session ends.
type Mode string

const (
	// ModeDuration stops after a fixed span of time.
	ModeDuration Mode = "duration"
	// ModeTrigger stops on the first message on the finish channel.
	ModeTrigger Mode = "trigger"
)

// ErrNoDuration is returned when neither a finish channel nor a positive
// duration is configured.
var ErrNoDuration = errors.New("recorder: duration must be positive when no finish channel is set")

// Config describes one capture run. Duration is used only when
// FinishChannel is empty.
type Config struct {
	Host          string
	Port          int
	Channels      []string
	FinishChannel string
	Duration      time.Duration
}

// Mode reports which termination mode c selects.
func (c Config) Mode() Mode {
	if c.FinishChannel != "" {
		return ModeTrigger
	}
	return ModeDuration
}

// Result is a finalized capture.
type Result struct {
	Session *session.Session
	Ref     string // storage reference the snapshot was saved under
	Mode    Mode
	Elapsed time.Duration
}

// ProgressFunc receives duration-bound progress as step out of total.
type ProgressFunc func(step, total int)

// Option configures a Recorder.
type Option func(*Recorder)

func WithClock(c clock.Clock) Option {
	return func(r *Recorder) { r.clock = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// WithProgress sets the duration-bound progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Recorder) { r.progress = fn }
}

// WithOnListen sets a callback invoked with the bound address once the
// listener is receiving.
func WithOnListen(fn func(net.Addr)) Option {
	return func(r *Recorder) { r.onListen = fn }
}

// Recorder captures sessions into a Store.
type Recorder struct {
	store    storage.Store
	clock    clock.Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
	progress ProgressFunc
	onListen func(net.Addr)
}

// New creates a Recorder that saves finalized sessions to store.
func New(store storage.Store, opts ...Option) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	r.clock = clock.OrReal(r.clock)
	r.logger = logging.OrDefault(r.logger)
	return r
}

// Capture runs one session to completion and saves it exactly once.
// A BindError from the listener is returned as is. Cancelling ctx stops
// the listener and returns ctx.Err() without saving anything.
func (r *Recorder) Capture(ctx context.Context, cfg Config) (*Result, error) {
	mode := cfg.Mode()
	if mode == ModeDuration && cfg.Duration <= 0 {
		return nil, ErrNoDuration
	}
	logger := logging.FromContext(ctx, r.logger)

	l, err := listener.Bind(listener.Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		Channels:      cfg.Channels,
		FinishChannel: cfg.FinishChannel,
	},
		listener.WithClock(r.clock),
		listener.WithLogger(logger),
		listener.WithMetrics(r.metrics),
	)
	if err != nil {
		return nil, err
	}

	start := r.clock.Now()
	logger.Info("capture started", "addr", l.Addr().String(), "mode", string(mode), "duration", cfg.Duration, "finish_channel", cfg.FinishChannel)
	if r.onListen != nil {
		r.onListen(l.Addr())
	}

	switch mode {
	case ModeTrigger:
		err = r.awaitFinish(ctx, l)
	default:
		err = r.awaitDuration(ctx, l, start, cfg.Duration)
	}
	if err != nil {
		_ = l.Stop()
		return nil, err
	}

	// The receive loop has exited, so nothing else writes the session.
	snap := l.Session().Snapshot()
	ref, err := r.store.Save(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	r.metrics.SessionSaved()

	res := &Result{
		Session: snap,
		Ref:     ref,
		Mode:    mode,
		Elapsed: r.clock.Since(start),
	}
	logger.Info("session saved", "ref", ref, "events", snap.Len(), "channels", len(snap.Channels()), "elapsed", res.Elapsed)
	return res, nil
}

// awaitDuration sleeps in ProgressSteps increments, then stops the listener.
// Each step waits until its target offset from start, so timer slack does
// not accumulate across steps.
func (r *Recorder) awaitDuration(ctx context.Context, l *listener.Listener, start time.Time, d time.Duration) error {
	for step := 1; step <= ProgressSteps; step++ {
		target := time.Duration(int64(d) * int64(step) / ProgressSteps)
		wait := target - r.clock.Since(start)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.Done():
			if err := l.Wait(); err != nil {
				return err
			}
			return errors.New("recorder: listener stopped unexpectedly")
		case <-r.clock.After(wait):
		}
		if r.progress != nil {
			r.progress(step, ProgressSteps)
		}
	}
	return l.Stop()
}

// awaitFinish blocks until the finish channel fires and the receive loop exits.
func (r *Recorder) awaitFinish(ctx context.Context, l *listener.Listener) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.Finished():
		return l.Wait()
	case <-l.Done():
		select {
		case <-l.Finished():
			return l.Wait()
		default:
		}
		if err := l.Wait(); err != nil {
			return err
		}
		return errors.New("recorder: listener stopped before the finish signal")
	}
}
