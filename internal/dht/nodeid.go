package dht

import (
	"encoding/binary"
	"time"

	"github.com/brineport/torrent/internal/sha1x"
	"github.com/brineport/torrent/internal/tinymt"
)

// GenerateNodeID derives a fresh node-id the way spec.md §4.H
// prescribes: take the current unix time-seconds t, derive
// r = tinymt_rand(t) * t as a 64-bit product (both operands widened
// before multiplying, not wrapped at 32 bits), and hash the 8
// big-endian bytes of r with SHA-1.
func GenerateNodeID(now time.Time) NodeID {
	t := uint32(now.Unix())
	r := uint64(tinymt.Rand(t)) * uint64(t)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], r)
	return NodeID(sha1x.Sum(buf[:]))
}
