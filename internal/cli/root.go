package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root oscseq command.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "oscseq",
		Short: "Record and replay OSC control sessions",
		Long: `oscseq captures timestamped OSC messages arriving on registered
channels and replays them later at their original cadence.

Record a session until a finish message arrives or a duration elapses,
then play it back to any host and port.`,
		SilenceUsage: true,
	}
	g.addFlags(root)

	root.AddCommand(
		newRecordCmd(g),
		newReplayCmd(g),
		newInspectCmd(g),
		newGenerateCmd(),
	)

	return root
}
