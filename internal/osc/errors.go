package osc

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed marks an inbound datagram that does not parse as a
	// protocol packet.
	ErrMalformed = errors.New("osc: malformed packet")

	// ErrInvalidAddress marks a channel address that cannot be bound or sent to.
	ErrInvalidAddress = errors.New("osc: invalid address")
)

// EncodeError reports that a channel and argument list cannot be
// represented in wire form. It is never retryable.
type EncodeError struct {
	Channel string
	Args    []string
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("osc: cannot encode %s %q: %v", e.Channel, e.Args, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// TransportError reports an I/O failure on the datagram socket.
type TransportError struct {
	Op   string
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("osc: %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
