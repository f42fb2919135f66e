package torrent

import "github.com/google/uuid"

// clientIDPrefix is the Azureus-style identifier this client announces
// itself under: a two-letter client code and a four-digit version,
// bracketed by hyphens, the same shape rain's own peer-id prefix uses.
const clientIDPrefix = "-BP0001-"

// NewPeerID builds a spec-shaped 20-byte peer-id: the client prefix
// followed by enough of a fresh UUID's bytes to fill out the remainder,
// grounded on the omnicloud/prxssh-rabbit manifests' use of
// github.com/google/uuid for exactly this kind of locally-generated
// identifier (rain's own equivalent, satori/go.uuid, is unmaintained).
func NewPeerID() [20]byte {
	var id [20]byte
	copy(id[:], clientIDPrefix)
	suffix := uuid.New()
	copy(id[len(clientIDPrefix):], suffix[:20-len(clientIDPrefix)])
	return id
}
