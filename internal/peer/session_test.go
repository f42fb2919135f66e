package peer

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeConn is a sessionConn backed by an in-memory buffer pair, for
// driving Peer.Run without a real socket.
type pipeConn struct {
	in     *bytes.Reader
	closed bool
}

func (c *pipeConn) WriteAll(b []byte, timeout time.Duration) error { return nil }

func (c *pipeConn) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.in, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *pipeConn) Close() error {
	c.closed = true
	return nil
}

func frame(payload []byte) []byte {
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(payload)))
	return append(lenBuf, payload...)
}

func TestPeerRunForwardsEventsAndStopsOnEOF(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(frame(encodeMessage(Message{ID: Unchoke})))
	buf.Write(frame(encodeMessage(Message{ID: Have, Index: 3})))

	conn := &pipeConn{in: bytes.NewReader(buf.Bytes())}
	session := &Session{Kind: TransportStream, conn: conn}
	events := make(chan Event, 8)
	p := NewPeer(0, session, events)

	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()
	<-done

	var got []Event
	for len(events) > 0 {
		got = append(got, <-events)
	}
	require.Len(t, got, 3) // unchoke, have, then the EOF error event
	assert.Equal(t, Unchoke, got[0].Message.ID)
	assert.Equal(t, Have, got[1].Message.ID)
	assert.Equal(t, uint32(3), got[1].Message.Index)
	assert.Error(t, got[2].Err)
	assert.True(t, conn.closed)
}
