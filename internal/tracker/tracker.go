package tracker

import (
	"fmt"

	"github.com/brineport/torrent/internal/endpoint"
)

// Torrent carries everything an announce request needs to describe
// this client's state for one torrent. Grounded verbatim on rain's
// internal/tracker.Torrent params struct (only the field names this
// module actually retrieved).
type Torrent struct {
	BytesUploaded   int64
	BytesDownloaded int64
	BytesLeft       int64
	InfoHash        [20]byte
	PeerID          [20]byte
	Port            int
}

// Announce dispatches to the HTTP or UDP announce implementation based
// on ep.Scheme, per spec.md §4.G. transactionID is only consulted for
// UDP announces.
func Announce(ep endpoint.Endpoint, params Torrent, transactionID uint32) (Peers, error) {
	switch ep.Scheme {
	case endpoint.Datagram:
		return announceUDP(ep, params, transactionID)
	case endpoint.Stream, endpoint.SecureStream:
		return announceHTTP(ep, params, "started")
	default:
		return Peers{}, fmt.Errorf("tracker: unsupported scheme %s", ep.Scheme)
	}
}
