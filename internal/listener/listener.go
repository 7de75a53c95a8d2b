// Package listener binds a UDP port, dispatches inbound messages by
// channel address, and appends every message on a recorded channel to
// an in-memory session.
package listener

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
	"github.com/SmitUplenchwar2687/oscseq/internal/logging"
	"github.com/SmitUplenchwar2687/oscseq/internal/metrics"
	"github.com/SmitUplenchwar2687/oscseq/internal/osc"
	"github.com/SmitUplenchwar2687/oscseq/internal/session"
)

const maxDatagram = 65535

// Config selects the bind address and channel table.
type Config struct {
	Host          string
	Port          int
	Channels      []string
	FinishChannel string // optional; a message here ends the session
}

type handlerKind int

const (
	handleRecord handlerKind = iota
	handleTerminate
)

// Option configures a Listener.
type Option func(*Listener)

// WithClock sets the clock used to timestamp captured events.
func WithClock(c clock.Clock) Option {
	return func(l *Listener) { l.clock = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) { l.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Listener) { l.metrics = m }
}

// Listener owns the socket and the receive loop. The loop processes one
// datagram at a time, so events on a channel are stored in arrival order.
type Listener struct {
	conn     net.PacketConn
	clock    clock.Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
	handlers map[string]handlerKind
	session  *session.Session
	finishCh string

	stopping   atomic.Bool
	stopOnce   sync.Once
	finishOnce sync.Once
	finished   chan struct{}
	done       chan struct{}
	err        error
}

// Bind opens the socket and starts the receive loop in the background.
// An address already in use is reported as a *BindError.
func Bind(cfg Config, opts ...Option) (*Listener, error) {
	channels, err := osc.NormalizeAddresses(cfg.Channels)
	if err != nil {
		return nil, fmt.Errorf("listener: %w", err)
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}

	handlers := make(map[string]handlerKind, len(channels)+1)
	for _, ch := range channels {
		handlers[ch] = handleRecord
	}

	var finish string
	if cfg.FinishChannel != "" {
		finish = osc.NormalizeAddress(cfg.FinishChannel)
		if err := osc.ValidateAddress(finish); err != nil {
			return nil, fmt.Errorf("listener: finish channel: %w", err)
		}
		if _, dup := handlers[finish]; dup {
			return nil, fmt.Errorf("listener: finish channel %s is also a recorded channel", finish)
		}
		handlers[finish] = handleTerminate
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, &BindError{Addr: addr, Holder: portHolder(cfg.Port), Err: err}
		}
		return nil, &osc.TransportError{Op: "listen", Addr: addr, Err: err}
	}

	l := &Listener{
		conn:     conn,
		handlers: handlers,
		session:  session.New(channels...),
		finishCh: finish,
		finished: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.clock = clock.OrReal(l.clock)
	l.logger = logging.OrDefault(l.logger)

	l.logger.Debug("listener bound", "addr", conn.LocalAddr().String(), "channels", channels, "finish_channel", finish)
	go l.serve()
	return l, nil
}

// Addr returns the bound local address.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Session returns the live session store. Treat it as read-only, and
// read it only after Wait or Stop has returned.
func (l *Listener) Session() *session.Session {
	return l.session
}

// Finished is closed the first time a message arrives on the finish channel.
func (l *Listener) Finished() <-chan struct{} {
	return l.finished
}

// Done is closed once the receive loop has exited and the socket is closed.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Stop asks the receive loop to exit after the datagram it is currently
// dispatching, then waits for it. Safe to call more than once.
func (l *Listener) Stop() error {
	l.requestStop()
	return l.Wait()
}

// Wait blocks until the receive loop exits and returns the socket error
// that ended it, if any.
func (l *Listener) Wait() error {
	<-l.done
	return l.err
}

func (l *Listener) requestStop() {
	l.stopOnce.Do(func() {
		l.stopping.Store(true)
		// A deadline in the past wakes a blocked ReadFrom.
		_ = l.conn.SetReadDeadline(time.Now())
	})
}

func (l *Listener) serve() {
	defer close(l.done)
	defer l.conn.Close()

	buf := make([]byte, maxDatagram)
	for !l.stopping.Load() {
		n, from, err := l.conn.ReadFrom(buf)
		if l.stopping.Load() {
			return
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			l.err = &osc.TransportError{Op: "receive", Addr: l.conn.LocalAddr().String(), Err: err}
			l.logger.Error("receive loop stopped", "err", err)
			return
		}
		l.handleDatagram(buf[:n], from)
	}
}

func (l *Listener) handleDatagram(data []byte, from net.Addr) {
	msgs, err := osc.Decode(data)
	if err != nil {
		l.metrics.PacketMalformed()
		l.logger.Warn("dropping malformed datagram", "from", from.String(), "bytes", len(data), "err", err)
		return
	}
	for _, m := range msgs {
		if l.stopping.Load() {
			return
		}
		l.dispatch(m)
	}
}

func (l *Listener) dispatch(m osc.Message) {
	kind, ok := l.handlers[m.Address]
	if !ok {
		l.metrics.MessageIgnored()
		l.logger.Debug("ignoring message on unbound channel", "channel", m.Address)
		return
	}

	switch kind {
	case handleRecord:
		l.session.Append(session.Event{
			CapturedAt: l.clock.Now(),
			Channel:    m.Address,
			Args:       m.Args,
		})
		l.metrics.EventCaptured(m.Address)
		l.logger.Debug("captured", "channel", m.Address, "args", m.Args)
	case handleTerminate:
		l.finish()
	}
}

// finish records nothing. Only the first call has any effect.
func (l *Listener) finish() {
	l.finishOnce.Do(func() {
		l.logger.Info("finish signal received", "channel", l.finishCh)
		l.requestStop()
		close(l.finished)
	})
}
