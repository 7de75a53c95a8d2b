package osc

import (
	"fmt"
	"strings"
)

// Separator starts every canonical channel address.
const Separator = "/"

// reservedChars are pattern or framing characters that may not appear
// in a concrete channel address.
const reservedChars = " #*,?[]{}\x00"

// NormalizeAddress trims surrounding space and prefixes the separator
// when it is missing, so "foo" and "/foo" name the same channel.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if !strings.HasPrefix(addr, Separator) {
		addr = Separator + addr
	}
	return addr
}

// ValidateAddress checks that addr is a concrete, canonical channel address.
func ValidateAddress(addr string) error {
	if !strings.HasPrefix(addr, Separator) {
		return fmt.Errorf("%w: %q must start with %q", ErrInvalidAddress, addr, Separator)
	}
	if addr == Separator {
		return fmt.Errorf("%w: %q has no path", ErrInvalidAddress, addr)
	}
	if i := strings.IndexAny(addr, reservedChars); i >= 0 {
		return fmt.Errorf("%w: %q contains reserved character %q", ErrInvalidAddress, addr, addr[i])
	}
	return nil
}

// NormalizeAddresses normalizes and validates every address, dropping
// duplicates while keeping first-seen order.
func NormalizeAddresses(addrs []string) ([]string, error) {
	out := make([]string, 0, len(addrs))
	seen := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		n := NormalizeAddress(a)
		if err := ValidateAddress(n); err != nil {
			return nil, err
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}
