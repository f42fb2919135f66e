package bencode

// RawMessage holds the bencode-encoded bytes of a subvalue. Unmarshal
// into a RawMessage field decodes that subtree like any other value and
// stores its canonical re-encoding (Encode output, keys sorted). For
// canonical input, which well-formed metainfo is, those bytes equal the
// source bytes, so hashing them reproduces the source info-hash; input
// with unsorted dictionary keys comes back in sorted form.
type RawMessage []byte

// MarshalBencode returns m unchanged; it is already valid bencode.
func (m RawMessage) MarshalBencode() ([]byte, error) {
	return append([]byte(nil), m...), nil
}

// UnmarshalBencode stores a copy of the raw bytes of the value it was
// asked to decode.
func (m *RawMessage) UnmarshalBencode(data []byte) error {
	*m = append([]byte(nil), data...)
	return nil
}
