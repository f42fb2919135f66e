package peer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/brineport/torrent/internal/transport"
)

const (
	protocolString = "BitTorrent protocol"
	handshakeLen   = 49 + len(protocolString)

	handshakeTimeout = 5 * time.Second
)

// reservedBits holds the reserved-byte feature bits this client sets
// on outgoing handshakes, per spec.md §4.I: byte-7
// bit-0 for DHT, byte-5 bit-4 for the extension protocol.
var (
	reservedBits = func() [8]byte {
		var b [8]byte
		b[7] |= 0x01
		b[5] |= 0x10
		return b
	}()
)

// TransportKind tags which race branch produced a session.
type TransportKind int

const (
	TransportStream TransportKind = iota
	TransportDatagram
)

// Session is an established, post-handshake peer connection.
type Session struct {
	Kind     TransportKind
	PeerID   [20]byte
	Reserved [8]byte
	conn     sessionConn
}

// sessionConn is the minimal synchronous byte-transport surface both
// the TCP and uTP branches of the handshake race provide, so the rest
// of this package doesn't need to know which one won.
type sessionConn interface {
	WriteAll(b []byte, timeout time.Duration) error
	ReadExact(n int, timeout time.Duration) ([]byte, error)
	Close() error
}

func buildHandshake(infoHash, peerID [20]byte) []byte {
	buf := make([]byte, 0, handshakeLen)
	buf = append(buf, byte(len(protocolString)))
	buf = append(buf, protocolString...)
	buf = append(buf, reservedBits[:]...)
	buf = append(buf, infoHash[:]...)
	buf = append(buf, peerID[:]...)
	return buf
}

func parseHandshake(data []byte) (peerID [20]byte, reserved [8]byte, err error) {
	if len(data) != handshakeLen {
		return peerID, reserved, fmt.Errorf("peer: handshake: bad length %d", len(data))
	}
	if data[0] != byte(len(protocolString)) {
		return peerID, reserved, fmt.Errorf("peer: handshake: bad protocol string length %d", data[0])
	}
	if !bytes.Equal(data[1:1+len(protocolString)], []byte(protocolString)) {
		return peerID, reserved, fmt.Errorf("peer: handshake: unexpected protocol string")
	}
	copy(reserved[:], data[1+len(protocolString):1+len(protocolString)+8])
	copy(peerID[:], data[len(data)-20:])
	return peerID, reserved, nil
}

// handshakeOverStream performs the TCP handshake branch of the race:
// connect, send the 68-byte handshake, read 68 bytes back, validate.
func handshakeOverStream(addr string, infoHash, peerID [20]byte) (*Session, error) {
	s, err := transport.Dial(addr, handshakeTimeout)
	if err != nil {
		return nil, err
	}
	req := buildHandshake(infoHash, peerID)
	if err := s.WriteAll(req, handshakeTimeout); err != nil {
		s.Close()
		return nil, err
	}
	resp, err := s.ReadExact(handshakeLen, handshakeTimeout)
	if err != nil {
		s.Close()
		return nil, err
	}
	remotePeerID, reserved, err := parseHandshake(resp)
	if err != nil {
		s.Close()
		return nil, err
	}
	return &Session{Kind: TransportStream, PeerID: remotePeerID, Reserved: reserved, conn: s}, nil
}

// Handshake runs the TCP and uTP handshake branches concurrently
// against addr and returns whichever succeeds first, cancelling the
// loser. A peer that fails both branches returns an error.
func Handshake(ctx context.Context, addr string, infoHash, peerID [20]byte) (*Session, error) {
	streamC := make(chan result, 1)
	datagramC := make(chan result, 1)

	go func() {
		s, err := handshakeOverStream(addr, infoHash, peerID)
		streamC <- result{s, err}
	}()
	go func() {
		s, err := handshakeOverUTP(addr, infoHash, peerID)
		datagramC <- result{s, err}
	}()

	var streamErr, datagramErr error
	for i := 0; i < 2; i++ {
		select {
		case r := <-streamC:
			if r.err == nil {
				go discardLoser(datagramC)
				return r.session, nil
			}
			streamErr = r.err
		case r := <-datagramC:
			if r.err == nil {
				go discardLoser(streamC)
				return r.session, nil
			}
			datagramErr = r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("peer: handshake failed on both transports: stream=%v datagram=%v", streamErr, datagramErr)
}

// result is the outcome of one branch of the handshake race.
type result struct {
	session *Session
	err     error
}

// discardLoser drains and closes the race branch that lost, so its
// goroutine doesn't leak if it eventually succeeds.
func discardLoser(c <-chan result) {
	r := <-c
	if r.err == nil && r.session != nil {
		r.session.conn.Close()
	}
}
