package dht

import (
	"net"
	"testing"

	"github.com/brineport/torrent/bencode"
	"github.com/brineport/torrent/internal/endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode runs a one-shot KRPC responder on a loopback UDP socket:
// it decodes one query, hands it to respond, and sends back whatever
// bytes respond returns.
func fakeNode(t *testing.T, respond func(q *message) []byte) (endpoint.Endpoint, func()) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 2048)
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		q, err := decodeMessage(buf[:n])
		if err != nil {
			return
		}
		resp := respond(q)
		_, _ = conn.WriteToUDP(resp, addr)
	}()

	ep := endpoint.Endpoint{Scheme: endpoint.Datagram, Host: conn.LocalAddr().String(), Path: "/"}
	cleanup := func() {
		<-done
		conn.Close()
	}
	return ep, cleanup
}

func TestClientPing(t *testing.T) {
	ep, cleanup := fakeNode(t, func(q *message) []byte {
		reply := bencode.Dict([]bencode.DictEntry{
			{Key: []byte("id"), Val: bencode.String([]byte("01234567890123456789"))},
		})
		return encodeResponse(q.transactionID, reply)
	})
	defer cleanup()

	c := NewClient()
	require.NoError(t, c.Ping(ep))
}

func TestClientGetPeersWithValues(t *testing.T) {
	ep, cleanup := fakeNode(t, func(q *message) []byte {
		assert.Equal(t, "get_peers", q.method)
		reply := bencode.Dict([]bencode.DictEntry{
			{Key: []byte("id"), Val: bencode.String([]byte("01234567890123456789"))},
			{Key: []byte("values"), Val: bencode.List([]bencode.Value{
				bencode.String([]byte{127, 0, 0, 1, 0x1A, 0xE1}),
			})},
		})
		return encodeResponse(q.transactionID, reply)
	})
	defer cleanup()

	c := NewClient()
	var ih [20]byte
	reply, err := c.getPeers(ep, ih)
	require.NoError(t, err)
	require.Len(t, reply.values, 1)
	assert.Equal(t, "127.0.0.1:6881", reply.values[0].Host)
}

func TestClientQueryRejectsErrorReply(t *testing.T) {
	ep, cleanup := fakeNode(t, func(q *message) []byte {
		return encodeError(q.transactionID, ErrProtocol, "nope")
	})
	defer cleanup()

	c := NewClient()
	err := c.Ping(ep)
	assert.Error(t, err)
}
