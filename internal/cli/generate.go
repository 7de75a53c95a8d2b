package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/oscseq/internal/config"
	"github.com/SmitUplenchwar2687/oscseq/internal/storage"
	"github.com/SmitUplenchwar2687/oscseq/pkg/generate"
)

func newGenerateCmd() *cobra.Command {
	def := generate.DefaultOptions()
	var (
		output   string
		count    int
		channels []string
		duration time.Duration
		pattern  string
		seed     int64
		maxArgs  int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate sample session files and config",
		Long: `Generates sample data for testing and experimentation.

Use "generate session" to create a synthetic session file for replay.
Use "generate config" to create an example config file.`,
	}

	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Generate a synthetic session file",
		Long: `Creates a session file with configurable timing.

Patterns:
  steady    Evenly spaced events
  burst     Concentrated bursts with quiet periods
  ramp      Gradually increasing event rate`,
		Example: `  oscseq generate session --output session.json --count 100 --addresses /foo,/bar
  oscseq generate session --output burst.json --count 200 --pattern burst --duration 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = storage.SnapshotName(time.Now()) + ".json"
			}

			sess, err := generate.GenerateSession(generate.Options{
				Count:    count,
				Channels: channels,
				Duration: duration,
				Pattern:  pattern,
				Seed:     seed,
				MaxArgs:  maxArgs,
			})
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating file: %w", err)
			}
			defer f.Close()

			if err := sess.WriteJSON(f); err != nil {
				return fmt.Errorf("writing session: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d events to %s\n", sess.Len(), output)
			fmt.Fprintf(out, "  Channels: %v\n", sess.Channels())
			fmt.Fprintf(out, "  Duration: %s\n", duration)
			fmt.Fprintf(out, "  Pattern:  %s\n", pattern)
			return nil
		},
	}

	sessionCmd.Flags().StringVar(&output, "output", "", "output file path (default: time-stamped name)")
	sessionCmd.Flags().IntVar(&count, "count", def.Count, "number of events to generate")
	sessionCmd.Flags().StringSliceVar(&channels, "addresses", def.Channels, "channels to spread events over")
	sessionCmd.Flags().DurationVar(&duration, "duration", def.Duration, "time span for generated events")
	sessionCmd.Flags().StringVar(&pattern, "pattern", def.Pattern, "timing pattern (steady, burst, ramp)")
	sessionCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	sessionCmd.Flags().IntVar(&maxArgs, "max-args", def.MaxArgs, "maximum arguments per event")

	var configOutput string
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Generate an example config file",
		Example: `  oscseq generate config --output oscseq.json
  oscseq generate config --output oscseq.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteExample(configOutput); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated example config at %s\n", configOutput)
			return nil
		},
	}

	configCmd.Flags().StringVar(&configOutput, "output", "oscseq.json", "output file path (.json, .yaml or .yml)")

	cmd.AddCommand(sessionCmd, configCmd)
	return cmd
}
