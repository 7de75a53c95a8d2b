package osc

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	gosc "github.com/hypebeast/go-osc/osc"
)

// MaxDatagramSize is the largest payload a single IPv4 UDP datagram carries.
const MaxDatagramSize = 65507

// EmptyArg stands in for an empty argument list on the wire. Receivers
// following the minimum-one-argument convention drop bare addresses.
const EmptyArg = " "

// Message is one decoded protocol message with its arguments rendered as text.
type Message struct {
	Address string
	Args    []string
}

// WireArgs returns the argument list actually sent for args. With join
// set, all arguments travel as one space-separated string.
func WireArgs(args []string, join bool) []string {
	if len(args) == 0 {
		return []string{EmptyArg}
	}
	if join {
		return []string{strings.Join(args, " ")}
	}
	return args
}

// Encode renders channel and args as a single message datagram. Every
// argument is sent with the string type tag.
func Encode(channel string, args []string) ([]byte, error) {
	fail := func(err error) ([]byte, error) {
		return nil, &EncodeError{Channel: channel, Args: args, Err: err}
	}

	if err := ValidateAddress(channel); err != nil {
		return fail(err)
	}

	msg := gosc.NewMessage(channel)
	for i, a := range args {
		if strings.IndexByte(a, 0) >= 0 {
			return fail(fmt.Errorf("argument %d contains a NUL byte", i))
		}
		if !utf8.ValidString(a) {
			return fail(fmt.Errorf("argument %d is not valid UTF-8", i))
		}
		msg.Append(a)
	}

	data, err := msg.MarshalBinary()
	if err != nil {
		return fail(err)
	}
	if len(data) > MaxDatagramSize {
		return fail(fmt.Errorf("encoded size %d exceeds datagram limit %d", len(data), MaxDatagramSize))
	}
	return data, nil
}

// Decode parses a datagram into its messages. Bundles are flattened
// depth-first in the order they appear in the packet.
func Decode(data []byte) ([]Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty datagram", ErrMalformed)
	}
	pkt, err := gosc.ParsePacket(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if pkt == nil {
		return nil, fmt.Errorf("%w: no packet", ErrMalformed)
	}

	var out []Message
	flatten(pkt, &out)
	return out, nil
}

func flatten(pkt gosc.Packet, out *[]Message) {
	switch p := pkt.(type) {
	case *gosc.Message:
		*out = append(*out, Message{Address: p.Address, Args: FormatArgs(p.Arguments)})
	case *gosc.Bundle:
		for _, m := range p.Messages {
			flatten(m, out)
		}
		for _, b := range p.Bundles {
			flatten(b, out)
		}
	}
}

// FormatArgs renders typed message arguments as strings.
func FormatArgs(args []interface{}) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = FormatArg(a)
	}
	return out
}

// FormatArg renders one typed argument the way it is stored in a session.
func FormatArg(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return "nil"
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	default:
		return fmt.Sprint(x)
	}
}

// IsEncodeError reports whether err carries an EncodeError.
func IsEncodeError(err error) bool {
	var e *EncodeError
	return errors.As(err, &e)
}
