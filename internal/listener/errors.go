package listener

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoChannels is returned by Bind when no channel would be recorded.
var ErrNoChannels = errors.New("listener: at least one channel is required")

// BindError reports that the listen address is already taken. Callers
// report it and give up; binding is never retried.
type BindError struct {
	Addr   string
	Holder string // processes holding the port, when they can be determined
	Err    error
}

func (e *BindError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "listener: %s is already in use", e.Addr)
	if e.Holder != "" {
		fmt.Fprintf(&b, " by %s", e.Holder)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *BindError) Unwrap() error { return e.Err }
