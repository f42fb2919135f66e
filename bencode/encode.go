package bencode

import (
	"bytes"
	"sort"
	"strconv"
)

// Encode serializes v in canonical bencode form: dictionary keys are
// emitted in ascending byte-lexicographic order regardless of the
// order entries were constructed or decoded in. Encode(Decode(x)) == x
// for any well-formed x.
func Encode(v Value) []byte {
	var buf bytes.Buffer
	encodeValue(&buf, v)
	return buf.Bytes()
}

func encodeValue(buf *bytes.Buffer, v Value) {
	switch v.Kind {
	case KindInt:
		buf.WriteByte('i')
		buf.WriteString(strconv.FormatInt(v.Int, 10))
		buf.WriteByte('e')
	case KindString:
		buf.WriteString(strconv.Itoa(len(v.Str)))
		buf.WriteByte(':')
		buf.Write(v.Str)
	case KindList:
		buf.WriteByte('l')
		for _, item := range v.List {
			encodeValue(buf, item)
		}
		buf.WriteByte('e')
	case KindDict:
		buf.WriteByte('d')
		entries := make([]DictEntry, len(v.Dict))
		copy(entries, v.Dict)
		sort.Slice(entries, func(i, j int) bool {
			return bytes.Compare(entries[i].Key, entries[j].Key) < 0
		})
		for _, e := range entries {
			encodeValue(buf, String(e.Key))
			encodeValue(buf, e.Val)
		}
		buf.WriteByte('e')
	}
}
