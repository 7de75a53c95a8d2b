// Package metrics exposes capture and replay counters to Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oscseq"

// Metrics holds the collectors shared by the listener, recorder and
// replay scheduler.
type Metrics struct {
	captured      *prometheus.CounterVec
	malformed     prometheus.Counter
	ignored       prometheus.Counter
	sent          *prometheus.CounterVec
	sendLag       prometheus.Histogram
	sessionsSaved prometheus.Counter
}

// New creates the collectors and registers them with reg when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		captured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "events_total",
			Help:      "Events recorded into the session, by channel.",
		}, []string{"channel"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "malformed_packets_total",
			Help:      "Inbound datagrams that failed to parse.",
		}),
		ignored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "ignored_messages_total",
			Help:      "Inbound messages addressed to an unbound channel.",
		}),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "replay",
			Name:      "events_sent_total",
			Help:      "Events re-emitted during replay, by channel.",
		}, []string{"channel"}),
		sendLag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "replay",
			Name:      "send_lag_seconds",
			Help:      "How late each replayed event was sent relative to its scheduled offset.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .02, .05, .1, .25, 1},
		}),
		sessionsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "sessions_saved_total",
			Help:      "Capture sessions finalized and persisted.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.captured, m.malformed, m.ignored, m.sent, m.sendLag, m.sessionsSaved)
	}
	return m
}

func (m *Metrics) EventCaptured(channel string) {
	if m == nil {
		return
	}
	m.captured.WithLabelValues(channel).Inc()
}

func (m *Metrics) PacketMalformed() {
	if m == nil {
		return
	}
	m.malformed.Inc()
}

func (m *Metrics) MessageIgnored() {
	if m == nil {
		return
	}
	m.ignored.Inc()
}

// EventSent records one replayed event and how late it went out.
func (m *Metrics) EventSent(channel string, lag time.Duration) {
	if m == nil {
		return
	}
	m.sent.WithLabelValues(channel).Inc()
	m.sendLag.Observe(lag.Seconds())
}

func (m *Metrics) SessionSaved() {
	if m == nil {
		return
	}
	m.sessionsSaved.Inc()
}

// Serve exposes g on /metrics, plus a /health probe, over ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", handleHealth)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
