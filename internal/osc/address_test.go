package osc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/foo", "/foo"},
		{"foo", "/foo"},
		{"  bar/baz ", "/bar/baz"},
		{"/finish", "/finish"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.in))
		})
	}
}

func TestValidateAddress(t *testing.T) {
	valid := []string{"/foo", "/a/b/c", "/synth_1/freq"}
	for _, a := range valid {
		assert.NoError(t, ValidateAddress(a), a)
	}

	invalid := []string{"", "foo", "/", "/foo bar", "/foo*", "/a/{b,c}", "/x#y", "/what?"}
	for _, a := range invalid {
		err := ValidateAddress(a)
		assert.ErrorIs(t, err, ErrInvalidAddress, a)
	}
}

func TestNormalizeAddresses_DedupesInOrder(t *testing.T) {
	got, err := NormalizeAddresses([]string{"bar", "/foo", "/bar", "foo", "baz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/bar", "/foo", "/baz"}, got)
}

func TestNormalizeAddresses_RejectsPattern(t *testing.T) {
	_, err := NormalizeAddresses([]string{"/foo", "/bar/*"})
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
