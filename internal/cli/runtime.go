package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/oscseq/internal/config"
	"github.com/SmitUplenchwar2687/oscseq/internal/logging"
	"github.com/SmitUplenchwar2687/oscseq/internal/metrics"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	logLevel    string
	logFormat   string
	verbose     bool
	metricsAddr string
}

func (g *globalOptions) addFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "path to a JSON or YAML config file")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", logging.FormatText, "log format (text, json)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "V", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&g.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")
}

// runtime is the per-command environment built from config and flags.
type runtime struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	stopMetrics context.CancelFunc
	metricsDone chan struct{}
}

// setup loads the config (defaults < file < env < flags), builds the
// logger and starts the metrics endpoint when one is configured.
func (g *globalOptions) setup(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr = g.metricsAddr
	}

	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: g.verbose,
	})
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger}
	if cfg.Metrics.Addr != "" {
		if err := rt.serveMetrics(cmd.Context(), cfg.Metrics.Addr); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (rt *runtime) serveMetrics(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	reg := prometheus.NewRegistry()
	rt.metrics = metrics.New(reg)

	ctx, cancel := context.WithCancel(ctx)
	rt.stopMetrics = cancel
	rt.metricsDone = make(chan struct{})
	go func() {
		defer close(rt.metricsDone)
		if err := metrics.Serve(ctx, ln, reg); err != nil && !errors.Is(err, context.Canceled) {
			rt.logger.Error("metrics server stopped", "err", err)
		}
	}()
	rt.logger.Info("serving metrics", "addr", ln.Addr().String())
	return nil
}

// Close stops the metrics endpoint, if any.
func (rt *runtime) Close() {
	if rt.stopMetrics != nil {
		rt.stopMetrics()
		<-rt.metricsDone
	}
}
