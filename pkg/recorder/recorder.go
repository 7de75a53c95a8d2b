package recorder

import (
	internalrecorder "github.com/SmitUplenchwar2687/oscseq/internal/recorder"
	"github.com/SmitUplenchwar2687/oscseq/pkg/storage"
)

// Config describes one capture run.
type Config = internalrecorder.Config

// Result is a finalized capture.
type Result = internalrecorder.Result

// Recorder captures sessions into a Store.
type Recorder = internalrecorder.Recorder

// Option configures a Recorder.
type Option = internalrecorder.Option

var (
	WithClock    = internalrecorder.WithClock
	WithLogger   = internalrecorder.WithLogger
	WithMetrics  = internalrecorder.WithMetrics
	WithProgress = internalrecorder.WithProgress
	WithOnListen = internalrecorder.WithOnListen
)

// New creates a Recorder that saves finalized sessions to store.
func New(store storage.Store, opts ...Option) *Recorder {
	return internalrecorder.New(store, opts...)
}
