package tracker

import (
	"encoding/binary"
	"fmt"

	"github.com/brineport/torrent/internal/endpoint"
	"github.com/brineport/torrent/internal/transport"
)

// udpEventStarted is this system's convention for the announce
// "event" field: 2 rather than the protocol's usual 1, per spec.md
// §4.G.
const udpEventStarted uint32 = 2

// announceUDP performs a tracker announce over UDP: first the BEP 15
// connect handshake, then the 98-byte announce record, grounded on
// spec.md §4.G's exact byte layout.
func announceUDP(ep endpoint.Endpoint, params Torrent, transactionID uint32) (Peers, error) {
	d, err := transport.DialDatagram(ep.Host)
	if err != nil {
		return Peers{}, fmt.Errorf("tracker: udp announce dial: %w", err)
	}
	defer d.Close()

	connID, err := transport.Connect(d, transactionID)
	if err != nil {
		return Peers{}, err
	}

	req := make([]byte, 98)
	copy(req[0:8], connID[:])
	binary.BigEndian.PutUint32(req[8:12], 1) // action: announce
	binary.BigEndian.PutUint32(req[12:16], transactionID)
	copy(req[16:36], params.InfoHash[:])
	copy(req[36:56], params.PeerID[:])
	binary.BigEndian.PutUint64(req[56:64], uint64(params.BytesDownloaded))
	binary.BigEndian.PutUint64(req[64:72], uint64(params.BytesLeft))
	binary.BigEndian.PutUint64(req[72:80], uint64(params.BytesUploaded))
	binary.BigEndian.PutUint32(req[80:84], udpEventStarted)
	binary.BigEndian.PutUint32(req[84:88], 0) // ip: default
	binary.BigEndian.PutUint32(req[88:92], transactionID) // key
	binary.BigEndian.PutUint32(req[92:96], 0xFFFFFFFF)    // num_want: -1 (default)
	binary.BigEndian.PutUint16(req[96:98], uint16(params.Port))

	resp := make([]byte, 20+6*74) // room for a generous peer list in one datagram
	n, err := d.Exchange(req, resp)
	if err != nil {
		return Peers{}, fmt.Errorf("tracker: udp announce: %w", err)
	}
	if n < 20 {
		return Peers{}, fmt.Errorf("tracker: udp announce: short reply (%d bytes)", n)
	}

	action := binary.BigEndian.Uint32(resp[0:4])
	gotTxn := binary.BigEndian.Uint32(resp[4:8])
	if gotTxn != transactionID {
		return Peers{}, fmt.Errorf("tracker: udp announce: transaction-id mismatch")
	}
	if action != 1 {
		return Peers{}, fmt.Errorf("tracker: udp announce: unexpected action %d", action)
	}

	interval := binary.BigEndian.Uint32(resp[8:12])
	leechers := binary.BigEndian.Uint32(resp[12:16])
	seeders := binary.BigEndian.Uint32(resp[16:20])
	peers := endpoint.DecodeCompactIPv4List(resp[20:n], endpoint.Stream)

	return Peers{
		Interval: int64(interval),
		Seeders:  int64(seeders),
		Leechers: int64(leechers),
		Peers:    peers,
	}, nil
}
