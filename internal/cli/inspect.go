package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/oscseq/internal/session"
	"github.com/SmitUplenchwar2687/oscseq/internal/storage"
)

type channelSummary struct {
	Channel string `json:"channel"`
	Events  int    `json:"events"`
	First   string `json:"first,omitempty"`
	Last    string `json:"last,omitempty"`
}

type sessionSummary struct {
	Events   int              `json:"events"`
	Span     time.Duration    `json:"span"`
	Start    string           `json:"start,omitempty"`
	Channels []channelSummary `json:"channels"`
}

func summarize(s *session.Session) sessionSummary {
	tl := session.Timeline(s)
	sum := sessionSummary{
		Events: len(tl),
		Span:   session.Span(tl),
	}
	if len(tl) > 0 {
		sum.Start = session.FormatTime(tl[0].CapturedAt)
	}
	for _, ch := range s.Channels() {
		evs := s.Events(ch)
		cs := channelSummary{Channel: ch, Events: len(evs)}
		if len(evs) > 0 {
			cs.First = session.FormatTime(evs[0].CapturedAt)
			cs.Last = session.FormatTime(evs[len(evs)-1].CapturedAt)
		}
		sum.Channels = append(sum.Channels, cs)
	}
	return sum
}

func newInspectCmd(g *globalOptions) *cobra.Command {
	var outputJSON bool
	so := defaultStorageOptions()

	cmd := &cobra.Command{
		Use:   "inspect <session>",
		Short: "Show per-channel counts and the time span of a session",
		Example: `  oscseq inspect data/recorded_osc-20240309-183005.json
  oscseq inspect recorded_osc-20240309-183005 --storage redis --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			store, err := so.open(cmd, &rt.cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("session %s not found", args[0])
				}
				return err
			}
			sum := summarize(sess)

			out := cmd.OutOrStdout()
			if outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}

			fmt.Fprintf(out, "Session %s\n", args[0])
			fmt.Fprintf(out, "  Events: %d\n", sum.Events)
			fmt.Fprintf(out, "  Span:   %s\n", sum.Span)
			if sum.Start != "" {
				fmt.Fprintf(out, "  Start:  %s\n", sum.Start)
			}
			for _, cs := range sum.Channels {
				fmt.Fprintf(out, "  %-20s %6d\n", cs.Channel, cs.Events)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output the summary as JSON")
	so.addFlags(cmd)
	return cmd
}
