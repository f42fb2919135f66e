// Package dht implements a mainline DHT (BEP 5) client: node-id
// derivation, a flat routing table, the KRPC message envelope, and an
// iterative get_peers lookup. Grounded on spec.md §4.H throughout,
// since no pack repo's DHT internals were retrieved in full — rakoshare
// only consumes nictuku/dht as an external dependency
// (control.go's dht.New/PeersRequest/AddNode calls), and
// original_source/d2h2/src/find_node.rs's NodeFinder/PrefferedNetwork
// sketch (unimplemented get_peers) supplies the bootstrap-node
// preference shape this package's Preferred type follows.
package dht

import (
	"time"

	"github.com/brineport/torrent/internal/endpoint"
)

// NodeID is the 20-byte identifier assigned to this client or learned
// about a remote node.
type NodeID [20]byte

// Node is one entry in the routing table: a peer's id, its endpoint,
// and when it was last heard from.
type Node struct {
	ID       NodeID
	Endpoint endpoint.Endpoint
	LastSeen time.Time
}

// Distance computes the XOR metric between two node-ids: element-wise
// XOR, compared byte-by-byte as a big-endian unsigned 160-bit integer.
func Distance(a, b NodeID) [20]byte {
	var d [20]byte
	for i := range d {
		d[i] = a[i] ^ b[i]
	}
	return d
}

// lessDistance reports whether distance x is strictly smaller than y under the
// big-endian byte-by-byte comparison spec.md §4.H defines.
func lessDistance(x, y [20]byte) bool {
	for i := range x {
		if x[i] != y[i] {
			return x[i] < y[i]
		}
	}
	return false
}
