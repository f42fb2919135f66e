package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	e, err := Parse("http://bttracker.debian.org:6969/announce")
	require.NoError(t, err)
	assert.Equal(t, Stream, e.Scheme)
	assert.Equal(t, "bttracker.debian.org:6969", e.Host)
	assert.Equal(t, "/announce", e.Path)
	assert.Equal(t, 6969, e.Port())

	e, err = Parse("udp://open.demonii.com:1337")
	require.NoError(t, err)
	assert.Equal(t, Datagram, e.Scheme)
	assert.Equal(t, "open.demonii.com:1337", e.Host)
	assert.Equal(t, "/", e.Path)
}

func TestParseMissingSchemeSeparator(t *testing.T) {
	_, err := Parse("open.demonii.com:1337")
	require.Error(t, err)
}

func TestParseMissingPort(t *testing.T) {
	_, err := Parse("udp://open.demonii.com")
	require.Error(t, err)
}

func TestFromIPv4(t *testing.T) {
	e := FromIPv4([4]byte{127, 0, 0, 1}, 8080, Datagram)
	assert.Equal(t, "127.0.0.1:8080", e.Host)
	assert.Equal(t, 8080, e.Port())
}

func TestDecodeCompactIPv4List(t *testing.T) {
	data := []byte{127, 0, 0, 1, 0x1F, 0x90, 0, 0, 0, 0, 0, 0}
	got := DecodeCompactIPv4List(data, Datagram)
	require.Len(t, got, 2)
	assert.Equal(t, "127.0.0.1:8080", got[0].Host)
	assert.Equal(t, "0.0.0.0:0", got[1].Host)
}

func TestEndpointEquatable(t *testing.T) {
	a := Endpoint{Scheme: Stream, Host: "x:1", Path: "/"}
	b := Endpoint{Scheme: Stream, Host: "x:1", Path: "/"}
	set := map[Endpoint]struct{}{}
	set[a] = struct{}{}
	set[b] = struct{}{}
	assert.Len(t, set, 1)
}
