package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/oscseq/internal/config"
	"github.com/SmitUplenchwar2687/oscseq/internal/listener"
	"github.com/SmitUplenchwar2687/oscseq/internal/logging"
	"github.com/SmitUplenchwar2687/oscseq/internal/recorder"
)

func newRecordCmd(g *globalOptions) *cobra.Command {
	def := config.Default().Record
	var (
		host       string
		port       int
		channels   []string
		finish     string
		duration   time.Duration
		noProgress bool
	)
	so := defaultStorageOptions()

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record OSC messages into a session file",
		Long: `Listens for OSC messages on the given channels and records each one
with its arrival time.

The session ends on the first message to --finish-address, or after
--duration when no finish address is set. The finished session is saved
once, under a time-stamped name such as recorded_osc-20240309-183005.json.`,
		Example: `  oscseq record --addresses /foo /bar --duration 30s
  oscseq record --ip 0.0.0.0 --port 9000 --addresses /fader1,/fader2 --finish-address /finish
  oscseq record --storage redis --redis-host localhost:6379 --finish-address /finish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			rc := rt.cfg.Record
			if cmd.Flags().Changed("ip") {
				rc.Host = host
			}
			if cmd.Flags().Changed("port") {
				rc.Port = port
			}
			if cmd.Flags().Changed("addresses") {
				rc.Channels = channels
			}
			if cmd.Flags().Changed("finish-address") {
				rc.FinishChannel = finish
			}
			if cmd.Flags().Changed("duration") {
				rc.Duration = duration
			}
			if err := rc.Validate(); err != nil {
				return err
			}

			store, err := so.open(cmd, &rt.cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = logging.WithRunID(ctx, logging.NewRunID())

			opts := []recorder.Option{
				recorder.WithLogger(rt.logger),
				recorder.WithMetrics(rt.metrics),
			}
			if !noProgress {
				opts = append(opts, recorder.WithProgress(progressBar(cmd.ErrOrStderr())))
			}

			res, err := recorder.New(store, opts...).Capture(ctx, recorder.Config{
				Host:          rc.Host,
				Port:          rc.Port,
				Channels:      rc.Channels,
				FinishChannel: rc.FinishChannel,
				Duration:      rc.Duration,
			})
			if err != nil {
				var bindErr *listener.BindError
				if errors.As(err, &bindErr) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Socket may be already used. Check other processes.")
				}
				if errors.Is(err, ctx.Err()) {
					return fmt.Errorf("recording aborted, nothing saved: %w", err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recorded %d events on %d channels (%s mode, %s)\n",
				res.Session.Len(), len(res.Session.Channels()), res.Mode, res.Elapsed.Round(time.Millisecond))
			fmt.Fprintf(out, "Saved to %s\n", res.Ref)
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "ip", def.Host, "the IP address to listen on")
	cmd.Flags().IntVar(&port, "port", def.Port, "the port to listen on")
	cmd.Flags().StringSliceVar(&channels, "addresses", def.Channels, "channels to record (space or comma separated)")
	cmd.Flags().StringVar(&finish, "finish-address", "", "channel that ends the recording, e.g. /finish")
	cmd.Flags().DurationVar(&duration, "duration", def.Duration, "recording length when no finish address is set")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not draw the progress bar")
	so.addFlags(cmd)

	return cmd
}

// progressBar draws duration-bound progress on w.
func progressBar(w io.Writer) recorder.ProgressFunc {
	bar := progressbar.NewOptions(recorder.ProgressSteps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("recording"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
	return func(step, total int) {
		if total != bar.GetMax() {
			bar.ChangeMax(total)
		}
		_ = bar.Set(step)
	}
}
