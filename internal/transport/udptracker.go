package transport

import (
	"encoding/binary"
	"fmt"
)

// protocolID is the fixed magic value UDP trackers use to recognize a
// connect request, per BEP 15.
const protocolID uint64 = 0x41727101980

// ConnectionID is the 8-byte handle a UDP tracker hands back from a
// connect exchange, quoted by every subsequent announce on that
// Datagram.
type ConnectionID [8]byte

// Connect performs the BEP 15 connect handshake over d, returning the
// connection-id the tracker assigned. transactionID should be a
// freshly generated, caller-chosen value.
func Connect(d *Datagram, transactionID uint32) (ConnectionID, error) {
	req := make([]byte, 16)
	binary.BigEndian.PutUint64(req[0:8], protocolID)
	binary.BigEndian.PutUint32(req[8:12], 0) // action: connect
	binary.BigEndian.PutUint32(req[12:16], transactionID)

	resp := make([]byte, 16)
	n, err := d.Exchange(req, resp)
	if err != nil {
		return ConnectionID{}, fmt.Errorf("transport: udp tracker connect: %w", err)
	}
	if n < 16 {
		return ConnectionID{}, fmt.Errorf("transport: udp tracker connect: short reply (%d bytes)", n)
	}
	gotAction := binary.BigEndian.Uint32(resp[0:4])
	gotTxn := binary.BigEndian.Uint32(resp[4:8])
	if gotAction != 0 {
		return ConnectionID{}, fmt.Errorf("transport: udp tracker connect: unexpected action %d", gotAction)
	}
	if gotTxn != transactionID {
		return ConnectionID{}, fmt.Errorf("transport: udp tracker connect: transaction-id mismatch")
	}
	var id ConnectionID
	copy(id[:], resp[8:16])
	return id, nil
}
