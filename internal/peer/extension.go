package peer

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/brineport/torrent/bencode"
)

// supportsExtension reports whether reserved byte 5, bit 4 — the BEP 10
// extension protocol flag, per spec.md §4.I — is set.
func (s *Session) supportsExtension() bool {
	return s.Reserved[5]&0x10 != 0
}

// ReadExtensionHandshake reads the one framed extended-handshake
// message a peer sends immediately after the BitTorrent handshake
// when it advertises extension-protocol support, and returns the
// "m" sub-dictionary mapping extension name to local message-id.
// Negotiating individual extensions (ut_metadata, ut_pex, ...) is out
// of scope; only the advertised map is recorded.
func (s *Session) ReadExtensionHandshake(timeout time.Duration) (map[string]int64, error) {
	if !s.supportsExtension() {
		return nil, nil
	}
	lenBuf, err := s.conn.ReadExact(4, timeout)
	if err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf)
	if length == 0 {
		return nil, fmt.Errorf("peer: extension handshake: got keep-alive instead")
	}
	payload, err := s.conn.ReadExact(int(length), timeout)
	if err != nil {
		return nil, err
	}
	if payload[0] != byte(Extended) {
		return nil, fmt.Errorf("peer: extension handshake: unexpected message id %d", payload[0])
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("peer: extension handshake: empty payload")
	}

	var dict bencode.Value
	dict, _, err = bencode.Decode(payload[2:])
	if err != nil {
		return nil, fmt.Errorf("peer: extension handshake: %w", err)
	}
	mv, ok := dict.Get("m")
	if !ok || mv.Kind != bencode.KindDict {
		return map[string]int64{}, nil
	}
	out := make(map[string]int64, len(mv.Dict))
	for _, e := range mv.Dict {
		if e.Val.Kind == bencode.KindInt {
			out[string(e.Key)] = e.Val.Int
		}
	}
	return out, nil
}
