// Package cli exposes the oscseq command tree for embedding in other
// binaries.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	internalcli "github.com/SmitUplenchwar2687/oscseq/internal/cli"
)

func NewRootCmd() *cobra.Command {
	return internalcli.NewRootCmd()
}

// Run executes one oscseq invocation with args, writing command output to
// stdout and diagnostics to stderr. Cancelling ctx aborts a running
// record or replay.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := internalcli.NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}
