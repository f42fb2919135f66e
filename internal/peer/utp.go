package peer

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/brineport/torrent/internal/transport"
)

const (
	utpTypeSYN   = 4
	utpTypeState = 2
	utpVersion   = 1

	utpPacketLen = 20

	utpWindowSize = 0xF000
)

// utpConn adapts a transport.Datagram to the sessionConn interface
// used after a successful uTP handshake. Only the handshake itself
// (ST_SYN/ST_STATE) is modeled per spec.md §4.I; sustained uTP
// sequencing/retransmission is out of scope, so post-handshake reads
// and writes pass each call through as one datagram.
type utpConn struct {
	d *transport.Datagram
}

func (c *utpConn) WriteAll(b []byte, timeout time.Duration) error {
	return c.d.Send(b)
}

func (c *utpConn) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, n)
	read, err := c.d.RecvInto(buf)
	if err != nil {
		return nil, err
	}
	if read != n {
		return nil, fmt.Errorf("peer: utp read: got %d bytes, want %d", read, n)
	}
	return buf, nil
}

func (c *utpConn) Close() error {
	return c.d.Close()
}

func buildSTSYN(connectionID uint16, now time.Time) []byte {
	buf := make([]byte, utpPacketLen)
	buf[0] = (utpTypeSYN << 4) | utpVersion
	buf[1] = 0 // extension
	binary.BigEndian.PutUint16(buf[2:4], connectionID)
	binary.BigEndian.PutUint32(buf[4:8], uint32(now.UnixMicro()))
	binary.BigEndian.PutUint32(buf[8:12], 0) // timestamp-difference
	binary.BigEndian.PutUint32(buf[12:16], utpWindowSize)
	binary.BigEndian.PutUint16(buf[16:18], 1) // seq-number
	binary.BigEndian.PutUint16(buf[18:20], 0) // ack-number
	return buf
}

func parseSTSTATE(data []byte) error {
	if len(data) != utpPacketLen {
		return fmt.Errorf("peer: utp: bad ST_STATE length %d", len(data))
	}
	if data[0] != (utpTypeState<<4)|utpVersion {
		return fmt.Errorf("peer: utp: unexpected packet type byte 0x%02x", data[0])
	}
	return nil
}

// handshakeOverUTP performs the uTP branch of the handshake race: the
// ST_SYN/ST_STATE exchange, then the ordinary 68-byte BitTorrent
// handshake over the now-established association.
func handshakeOverUTP(addr string, infoHash, peerID [20]byte) (*Session, error) {
	d, err := transport.DialDatagram(addr)
	if err != nil {
		return nil, err
	}

	syn := buildSTSYN(1, time.Now())
	reply := make([]byte, utpPacketLen)
	n, err := d.Exchange(syn, reply)
	if err != nil {
		d.Close()
		return nil, err
	}
	if err := parseSTSTATE(reply[:n]); err != nil {
		d.Close()
		return nil, err
	}

	conn := &utpConn{d: d}
	req := buildHandshake(infoHash, peerID)
	if err := conn.WriteAll(req, handshakeTimeout); err != nil {
		conn.Close()
		return nil, err
	}
	resp, err := conn.ReadExact(handshakeLen, handshakeTimeout)
	if err != nil {
		conn.Close()
		return nil, err
	}
	remotePeerID, reserved, err := parseHandshake(resp)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Session{Kind: TransportDatagram, PeerID: remotePeerID, Reserved: reserved, conn: conn}, nil
}
