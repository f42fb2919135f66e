// Package transport implements the two wire-level transports the rest
// of this module builds on: a reliable byte stream (TCP) and a
// datagram socket (UDP), both with the fixed timeout and retry budgets
// spec.md prescribes. Grounded on rain's internal/btconn/conn.go
// net.Conn wrapping style and original_source/uttd/src/lib.rs's
// Url-driven dial sequence, made synchronous rather than async since
// this module follows rain's goroutine-per-peer model throughout.
package transport

import (
	"fmt"
	"io"
	"net"
	"time"
)

const (
	// DefaultPayloadTimeout bounds a single read/write call's wait for
	// ordinary request/response traffic (tracker HTTP, handshakes).
	DefaultPayloadTimeout = 15 * time.Second

	// PeerReadTimeout bounds a read on an established, long-lived peer
	// connection, where long idle stretches between keep-alives are
	// normal.
	PeerReadTimeout = 121 * time.Second
)

// Stream is a reliable, ordered byte-stream connection (TCP).
type Stream struct {
	conn net.Conn
}

// Dial opens a Stream to addr, failing if the connection isn't
// established within timeout.
func Dial(addr string, timeout time.Duration) (*Stream, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return &Stream{conn: c}, nil
}

// NewStream wraps an already-established net.Conn, the form an
// accepting listener hands off.
func NewStream(c net.Conn) *Stream {
	return &Stream{conn: c}
}

// Close closes the underlying connection.
func (s *Stream) Close() error {
	return s.conn.Close()
}

// RemoteAddr returns the peer's address.
func (s *Stream) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// WriteAll writes every byte of b, under timeout, returning an error
// if the full write does not complete in time.
func (s *Stream) WriteAll(b []byte, timeout time.Duration) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("transport: set write deadline: %w", err)
	}
	_, err := s.conn.Write(b)
	if err != nil {
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

// ReadExact reads exactly n bytes, under timeout.
func (s *Stream) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("transport: set read deadline: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		return nil, fmt.Errorf("transport: read exact %d: %w", n, err)
	}
	return buf, nil
}

// ReadToEnd reads until the peer closes the connection or timeout
// elapses, returning whatever was read so far on timeout only if at
// least one byte arrived; a timeout with zero bytes is an error.
func (s *Stream) ReadToEnd(timeout time.Duration) ([]byte, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("transport: set read deadline: %w", err)
	}
	data, err := io.ReadAll(s.conn)
	if err != nil && len(data) == 0 {
		return nil, fmt.Errorf("transport: read to end: %w", err)
	}
	return data, nil
}

// SetPeerDeadlines switches the connection onto the long-lived peer
// read/write timeout, for use once a handshake has completed.
func (s *Stream) SetPeerDeadlines() error {
	return s.conn.SetDeadline(time.Now().Add(PeerReadTimeout))
}
