package bencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInteger(t *testing.T) {
	cases := map[string]int64{
		"i64e":  64,
		"i-64e": -64,
		"i0e":   0,
		"i-0e":  0,
	}
	for input, want := range cases {
		v, n, err := Decode([]byte(input))
		require.NoError(t, err)
		assert.Equal(t, len(input), n)
		assert.Equal(t, KindInt, v.Kind)
		assert.Equal(t, want, v.Int)
	}
}

func TestDecodeString(t *testing.T) {
	v, n, err := Decode([]byte("5:hello"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, []byte("hello"), v.Str)
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"i64e",
		"i-64e",
		"i0e",
		"5:hello",
		"l4:spami42ee",
		"d3:bar4:spam3:fooi42ee",
		"d4:infoi4e4:namei42ee",
		"le",
		"de",
	}
	for _, in := range inputs {
		v, n, err := Decode([]byte(in))
		require.NoError(t, err, in)
		require.Equal(t, len(in), n, in)
		assert.Equal(t, in, string(Encode(v)), in)
	}
}

func TestDictSerializationOrder(t *testing.T) {
	v := Dict([]DictEntry{
		{Key: []byte("name"), Val: Int(42)},
		{Key: []byte("info"), Val: Int(4)},
	})
	assert.Equal(t, "d4:infoi4e4:namei42ee", string(Encode(v)))
}

func TestDuplicateKeyIsParseError(t *testing.T) {
	_, _, err := Decode([]byte("d3:fooi1e3:fooi2ee"))
	require.Error(t, err)
}

func TestUnknownKindIsFatal(t *testing.T) {
	_, _, err := Decode([]byte("x"))
	require.Error(t, err)
}

func TestTruncatedInputIsFatal(t *testing.T) {
	cases := []string{"i64", "5:hi", "l4:spam", "d3:foo"}
	for _, in := range cases {
		_, _, err := Decode([]byte(in))
		require.Error(t, err, in)
	}
}

func TestNonUTF8KeyAccepted(t *testing.T) {
	raw := append([]byte("d1:"), 0xFF)
	raw = append(raw, []byte("1:xe")...)
	_, _, err := Decode(raw)
	require.NoError(t, err)
}

func TestMarshalUnmarshalStruct(t *testing.T) {
	type Inner struct {
		Length int64  `bencode:"length"`
		Name   string `bencode:"name"`
	}
	type Outer struct {
		Announce string     `bencode:"announce"`
		Info     RawMessage `bencode:"info"`
		Comment  string     `bencode:"comment,omitempty"`
	}
	inner := Inner{Length: 10, Name: "file.bin"}
	infoBytes, err := Marshal(inner)
	require.NoError(t, err)

	out := Outer{Announce: "http://tracker.example/announce", Info: RawMessage(infoBytes)}
	data, err := Marshal(out)
	require.NoError(t, err)

	var got Outer
	require.NoError(t, Unmarshal(data, &got))
	assert.Equal(t, out.Announce, got.Announce)
	assert.Equal(t, []byte(infoBytes), []byte(got.Info))

	var roundTripInner Inner
	require.NoError(t, Unmarshal(got.Info, &roundTripInner))
	assert.Equal(t, inner, roundTripInner)
}

func TestGetAccessors(t *testing.T) {
	v := Dict([]DictEntry{
		{Key: []byte("id"), Val: String([]byte("mnopqrstuvwxyz123456"))},
		{Key: []byte("interval"), Val: Int(900)},
	})
	id, ok := v.GetString("id")
	require.True(t, ok)
	assert.Equal(t, "mnopqrstuvwxyz123456", string(id))
	interval, ok := v.GetInt("interval")
	require.True(t, ok)
	assert.Equal(t, int64(900), interval)
	_, ok = v.GetString("missing")
	assert.False(t, ok)
}
