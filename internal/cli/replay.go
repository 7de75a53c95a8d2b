package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/oscseq/internal/clock"
	"github.com/SmitUplenchwar2687/oscseq/internal/config"
	"github.com/SmitUplenchwar2687/oscseq/internal/logging"
	"github.com/SmitUplenchwar2687/oscseq/internal/osc"
	"github.com/SmitUplenchwar2687/oscseq/internal/replay"
	"github.com/SmitUplenchwar2687/oscseq/internal/storage"
)

func newReplayCmd(g *globalOptions) *cobra.Command {
	def := config.Default().Replay
	var (
		host       string
		port       int
		quantum    time.Duration
		speed      float64
		joinArgs   bool
		channels   []string
		outputJSON bool
	)
	so := defaultStorageOptions()

	cmd := &cobra.Command{
		Use:     "replay <session>",
		Aliases: []string{"playback"},
		Short:   "Replay a recorded session over OSC",
		Long: `Sends every event of a recorded session to the target, in
chronological order across all channels, at its original offset from
the first event.

An event is never sent early. If a send runs late, events already due
are sent back to back. Events with identical timestamps go out in
channel registration order.

<session> is a file path for the file backend, or the key returned by
"record" for the redis backend.`,
		Example: `  oscseq replay data/recorded_osc-20240309-183005.json
  oscseq replay data/recorded_osc-20240309-183005.json --ip 192.168.1.20 --port 9000
  oscseq replay session.json --speed 2 --addresses /foo --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			rc := rt.cfg.Replay
			if cmd.Flags().Changed("ip") {
				rc.Host = host
			}
			if cmd.Flags().Changed("port") {
				rc.Port = port
			}
			if cmd.Flags().Changed("quantum") {
				rc.Quantum = quantum
			}
			if cmd.Flags().Changed("speed") {
				rc.Speed = speed
			}
			if cmd.Flags().Changed("join-args") {
				rc.JoinArgs = joinArgs
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

			// Load before dialing so a missing session fails before any send.
			sess, err := store.Load(ctx, args[0])
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("session %s not found", args[0])
				}
				return err
			}

			tr, err := osc.Dial(rc.Host, rc.Port, osc.WithJoinedArgs(rc.JoinArgs))
			if err != nil {
				return err
			}
			defer tr.Close()

			sched := replay.New(tr, clock.NewRealClock(), replay.Options{
				Quantum: rc.Quantum,
				Speed:   rc.Speed,
				Filter:  replay.Filter{Channels: channels},
				Logger:  rt.logger,
				Metrics: rt.metrics,
			})

			out := cmd.OutOrStdout()
			if !outputJSON {
				fmt.Fprintf(out, "Replaying %s to %s at %gx speed...\n", args[0], tr.Target(), rc.Speed)
			}

			var results []replay.Result
			report, err := sched.Run(ctx, sess, func(res replay.Result) {
				if outputJSON {
					results = append(results, res)
				}
			})
			if err != nil {
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"results": results,
					"report":  report,
				})
			}

			fmt.Fprintln(out, "Done!!")
			fmt.Fprintf(out, "  Events:   %d sent of %d (%d selected)\n", report.Sent, report.Total, report.Filtered)
			fmt.Fprintf(out, "  Span:     %s\n", report.Span)
			fmt.Fprintf(out, "  Elapsed:  %s\n", report.Elapsed.Round(time.Millisecond))
			fmt.Fprintf(out, "  Max lag:  %s\n", report.MaxLag)
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "ip", def.Host, "the IP address to send to")
	cmd.Flags().IntVar(&port, "port", def.Port, "the port to send to")
	cmd.Flags().DurationVar(&quantum, "quantum", def.Quantum, "polling interval between due-event checks")
	cmd.Flags().Float64Var(&speed, "speed", def.Speed, "playback speed (1 = recorded cadence, 2 = twice as fast)")
	cmd.Flags().BoolVar(&joinArgs, "join-args", false, "send all arguments joined by spaces as a single string")
	cmd.Flags().StringSliceVar(&channels, "addresses", nil, "only replay these channels (comma-separated)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "output results as JSON")
	so.addFlags(cmd)

	return cmd
}
