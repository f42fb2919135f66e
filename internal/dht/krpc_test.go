package dht

import (
	"testing"

	"github.com/brineport/torrent/bencode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeQueryRoundTrip(t *testing.T) {
	args := bencode.Dict([]bencode.DictEntry{
		{Key: []byte("id"), Val: bencode.String([]byte("01234567890123456789"))},
	})
	raw := encodeQuery([]byte{0, 1}, "ping", args)

	msg, err := decodeMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, byte('q'), msg.y)
	assert.Equal(t, "ping", msg.method)
	assert.Equal(t, []byte{0, 1}, msg.transactionID)
}

func TestEncodeDecodeResponseRoundTrip(t *testing.T) {
	reply := bencode.Dict([]bencode.DictEntry{
		{Key: []byte("id"), Val: bencode.String([]byte("01234567890123456789"))},
	})
	raw := encodeResponse([]byte{0, 2}, reply)

	msg, err := decodeMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, byte('r'), msg.y)
	id, ok := msg.reply.GetString("id")
	require.True(t, ok)
	assert.Equal(t, "01234567890123456789", string(id))
}

func TestEncodeDecodeErrorRoundTrip(t *testing.T) {
	raw := encodeError([]byte{0, 3}, ErrProtocol, "bad token")
	msg, err := decodeMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, byte('e'), msg.y)
	assert.Equal(t, int64(ErrProtocol), msg.errCode)
	assert.Equal(t, "bad token", msg.errMsg)
}

func TestDecodeNodesCompact(t *testing.T) {
	var rec [26]byte
	rec[0] = 0xAB
	rec[20] = 10
	rec[21] = 0
	rec[22] = 0
	rec[23] = 1
	rec[24] = 0x1A
	rec[25] = 0xE1
	nodes := decodeNodesCompact(rec[:])
	require.Len(t, nodes, 1)
	assert.Equal(t, byte(0xAB), nodes[0].ID[0])
	assert.Equal(t, "10.0.0.1:6881", nodes[0].Endpoint.Host)
}

func TestDecodeMessageRejectsTransactionMismatchLater(t *testing.T) {
	raw := encodeResponse([]byte{9, 9}, bencode.Dict(nil))
	msg, err := decodeMessage(raw)
	require.NoError(t, err)
	tracker := newTransactionTracker()
	assert.False(t, tracker.accept(msg.transactionID))
}
