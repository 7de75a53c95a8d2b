package osc

import (
	"strings"
	"testing"
	"time"

	gosc "github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	data, err := Encode("/foo", []string{"1", "hello world", ""})
	require.NoError(t, err)

	msgs, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "/foo", msgs[0].Address)
	assert.Equal(t, []string{"1", "hello world", ""}, msgs[0].Args)
}

func TestEncode_RejectsUnencodable(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		args    []string
	}{
		{"nul byte", "/foo", []string{"a\x00b"}},
		{"invalid utf8", "/foo", []string{string([]byte{0xff, 0xfe})}},
		{"bad address", "foo", []string{"1"}},
		{"pattern address", "/foo/*", []string{"1"}},
		{"oversized", "/foo", []string{strings.Repeat("x", MaxDatagramSize)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.channel, tt.args)
			assert.Nil(t, data)

			var encErr *EncodeError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, tt.channel, encErr.Channel)
			assert.True(t, IsEncodeError(err))
		})
	}
}

func TestWireArgs(t *testing.T) {
	assert.Equal(t, []string{" "}, WireArgs(nil, false))
	assert.Equal(t, []string{" "}, WireArgs([]string{}, true))
	assert.Equal(t, []string{"1", "2"}, WireArgs([]string{"1", "2"}, false))
	assert.Equal(t, []string{"1 2"}, WireArgs([]string{"1", "2"}, true))
}

func TestDecode_Malformed(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("garbage"), {0x01, 0x02, 0x03}} {
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrMalformed)
	}
}

func TestDecode_TypedArgumentsAndBundles(t *testing.T) {
	inner := gosc.NewMessage("/bar")
	inner.Append(int32(2), float32(0.5), true)
	first := gosc.NewMessage("/foo")
	first.Append("x")

	bundle := gosc.NewBundle(time.Now())
	require.NoError(t, bundle.Append(first))
	require.NoError(t, bundle.Append(inner))
	data, err := bundle.MarshalBinary()
	require.NoError(t, err)

	msgs, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Address: "/foo", Args: []string{"x"}}, msgs[0])
	assert.Equal(t, Message{Address: "/bar", Args: []string{"2", "0.5", "true"}}, msgs[1])
}

func TestFormatArg(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{"abc", "abc"},
		{int32(-7), "-7"},
		{int64(1 << 40), "1099511627776"},
		{float32(1.25), "1.25"},
		{float64(3.5), "3.5"},
		{false, "false"},
		{nil, "nil"},
		{[]byte("hi"), "aGk="},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatArg(tt.in))
	}
}
