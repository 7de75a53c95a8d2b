package osc

import (
	"net"
	"strconv"
)

// Transport sends messages to a single destination. The socket is
// unconnected, so ICMP port-unreachable replies from a silent target do
// not surface as errors on later sends.
type Transport struct {
	conn     *net.UDPConn
	target   *net.UDPAddr
	joinArgs bool
}

// Option configures a Transport.
type Option func(*Transport)

// WithJoinedArgs sends all arguments of a message as one space-separated
// string argument.
func WithJoinedArgs(join bool) Option {
	return func(t *Transport) {
		t.joinArgs = join
	}
}

// Dial prepares a transport that sends to host:port.
func Dial(host string, port int, opts ...Option) (*Transport, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	target, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, &TransportError{Op: "resolve", Addr: addr, Err: err}
	}

	network := "udp6"
	if target.IP == nil || target.IP.To4() != nil {
		network = "udp4"
	}
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return nil, &TransportError{Op: "open", Addr: addr, Err: err}
	}

	t := &Transport{conn: conn, target: target}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Send encodes and sends one message. Encoding failures return an
// *EncodeError and nothing is written; socket failures return a
// *TransportError.
func (t *Transport) Send(channel string, args []string) error {
	data, err := Encode(channel, WireArgs(args, t.joinArgs))
	if err != nil {
		return err
	}
	if _, err := t.conn.WriteToUDP(data, t.target); err != nil {
		return &TransportError{Op: "send", Addr: t.target.String(), Err: err}
	}
	return nil
}

// Target returns the destination address.
func (t *Transport) Target() string {
	return t.target.String()
}

// Close releases the socket.
func (t *Transport) Close() error {
	return t.conn.Close()
}
