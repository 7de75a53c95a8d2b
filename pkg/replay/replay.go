package replay

import (
	internalreplay "github.com/SmitUplenchwar2687/oscseq/internal/replay"
	"github.com/SmitUplenchwar2687/oscseq/pkg/clock"
)

// DefaultQuantum is the polling interval between due-event checks.
const DefaultQuantum = internalreplay.DefaultQuantum

// Sender emits one event.
type Sender = internalreplay.Sender

// Scheduler replays sessions at their recorded cadence.
type Scheduler = internalreplay.Scheduler

// Options tune a Scheduler.
type Options = internalreplay.Options

// Filter selects which events are replayed.
type Filter = internalreplay.Filter

// Result describes one sent event.
type Result = internalreplay.Result

// Report summarizes a replay run.
type Report = internalreplay.Report

// EventError aborts a replay on an unencodable event.
type EventError = internalreplay.EventError

// New creates a Scheduler.
func New(s Sender, clk clock.Clock, opts Options) *Scheduler {
	return internalreplay.New(s, clk, opts)
}
