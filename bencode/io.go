package bencode

import "io"

// Decoder reads bencode values from a stream, mirroring the
// NewDecoder(r).Decode(&v) shape of github.com/zeebo/bencode that the
// metainfo loader is written against.
type Decoder struct {
	r io.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads the entirety of the underlying reader and unmarshals it
// into v. Metainfo files are small enough (single KRPC datagrams and
// torrent files alike) that streaming decode isn't worth the
// complexity; the decoder is still cursor-based once the bytes are in
// memory.
func (d *Decoder) Decode(v interface{}) error {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	return Unmarshal(data, v)
}

// Encoder is the write-side counterpart of Decoder.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(v interface{}) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}
