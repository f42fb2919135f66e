package dht

import (
	"fmt"
	"time"

	"github.com/brineport/torrent/bencode"
	"github.com/brineport/torrent/internal/endpoint"
)

// Error codes a KRPC "e" message can carry, per spec.md §4.H.
const (
	ErrGeneric  = 201
	ErrServer   = 202
	ErrProtocol = 203
	ErrUnknown  = 204
)

// message is a decoded KRPC envelope: exactly one of query/response/err
// is populated, selected by y.
type message struct {
	transactionID []byte
	y             byte // 'q', 'r', or 'e'

	// query ('q')
	method string
	args   bencode.Value

	// response ('r')
	reply bencode.Value

	// error ('e')
	errCode int64
	errMsg  string
}

func encodeQuery(transactionID []byte, method string, args bencode.Value) []byte {
	v := bencode.Dict([]bencode.DictEntry{
		{Key: []byte("t"), Val: bencode.String(transactionID)},
		{Key: []byte("y"), Val: bencode.String([]byte("q"))},
		{Key: []byte("q"), Val: bencode.String([]byte(method))},
		{Key: []byte("a"), Val: args},
	})
	return bencode.Encode(v)
}

func encodeResponse(transactionID []byte, reply bencode.Value) []byte {
	v := bencode.Dict([]bencode.DictEntry{
		{Key: []byte("t"), Val: bencode.String(transactionID)},
		{Key: []byte("y"), Val: bencode.String([]byte("r"))},
		{Key: []byte("r"), Val: reply},
	})
	return bencode.Encode(v)
}

func encodeError(transactionID []byte, code int64, msg string) []byte {
	v := bencode.Dict([]bencode.DictEntry{
		{Key: []byte("t"), Val: bencode.String(transactionID)},
		{Key: []byte("y"), Val: bencode.String([]byte("e"))},
		{Key: []byte("e"), Val: bencode.List([]bencode.Value{
			bencode.Int(code),
			bencode.String([]byte(msg)),
		})},
	})
	return bencode.Encode(v)
}

func decodeMessage(raw []byte) (*message, error) {
	v, _, err := bencode.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("dht: decode krpc message: %w", err)
	}
	t, ok := v.GetString("t")
	if !ok {
		return nil, fmt.Errorf("dht: krpc message missing transaction id")
	}
	yb, ok := v.GetString("y")
	if !ok || len(yb) != 1 {
		return nil, fmt.Errorf("dht: krpc message missing or malformed y")
	}
	m := &message{transactionID: t, y: yb[0]}

	switch m.y {
	case 'q':
		method, ok := v.GetString("q")
		if !ok {
			return nil, fmt.Errorf("dht: query missing q")
		}
		args, ok := v.Get("a")
		if !ok {
			return nil, fmt.Errorf("dht: query missing a")
		}
		m.method = string(method)
		m.args = args
	case 'r':
		reply, ok := v.Get("r")
		if !ok {
			return nil, fmt.Errorf("dht: response missing r")
		}
		m.reply = reply
	case 'e':
		e, ok := v.Get("e")
		if !ok || e.Kind != bencode.KindList || len(e.List) != 2 {
			return nil, fmt.Errorf("dht: malformed e")
		}
		m.errCode = e.List[0].Int
		m.errMsg = string(e.List[1].Str)
	default:
		return nil, fmt.Errorf("dht: unknown y %q", m.y)
	}
	return m, nil
}

// decodeNodesCompact parses a "nodes" string: a concatenation of
// 26-byte records (20-byte id + 6-byte compact endpoint).
func decodeNodesCompact(data []byte) []Node {
	n := len(data) / 26
	out := make([]Node, 0, n)
	now := time.Now()
	for i := 0; i < n; i++ {
		rec := data[i*26 : i*26+26]
		var id NodeID
		copy(id[:], rec[:20])
		eps := endpoint.DecodeCompactIPv4List(rec[20:26], endpoint.Datagram)
		if len(eps) != 1 {
			continue
		}
		out = append(out, Node{ID: id, Endpoint: eps[0], LastSeen: now})
	}
	return out
}
