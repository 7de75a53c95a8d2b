// Package osc is the wire layer: channel address rules, message
// encode/decode on top of github.com/hypebeast/go-osc, and a UDP
// transport that sends one message per datagram.
package osc
