// Package peer implements the post-handshake side of a BitTorrent peer
// session: the parallel TCP/uTP handshake race, the framed peer wire
// protocol, and a central sink that tracks per-peer state across many
// connections. Grounded throughout on rain's internal/peerconn (the
// Peer type's reader-goroutine/writer-goroutine/central-channel
// pattern) and torrent/internal/peerconn/peer.go, generalized to the
// spec's feature set rather than rain's full request-pipeline engine.
package peer

import (
	"encoding/binary"
	"fmt"
)

// MessageID identifies a peer wire message, per spec.md §4.I.
type MessageID byte

const (
	Choke         MessageID = 0
	Unchoke       MessageID = 1
	Interested    MessageID = 2
	NotInterested MessageID = 3
	Have          MessageID = 4
	Bitfield      MessageID = 5
	Request       MessageID = 6
	Piece         MessageID = 7
	Cancel        MessageID = 8
	Port          MessageID = 9
	Extended      MessageID = 20
)

// Message is a decoded peer wire message. A zero-length frame decodes
// to a keep-alive with IsKeepAlive set.
type Message struct {
	IsKeepAlive bool
	Unknown     bool // id not in the table above; payload already drained, nothing further to parse
	ID          MessageID

	Index  uint32 // have, request, piece, cancel
	Begin  uint32 // request, piece, cancel
	Length uint32 // request, cancel
	Bitset []byte // bitfield
	Block  []byte // piece
	Port   uint16 // port

	ExtendedID      byte   // extended
	ExtendedPayload []byte // extended
}

// decodeMessage parses one frame's payload (the bytes after the
// 4-byte length prefix). An empty payload is a keep-alive.
func decodeMessage(payload []byte) (Message, error) {
	if len(payload) == 0 {
		return Message{IsKeepAlive: true}, nil
	}
	id := MessageID(payload[0])
	body := payload[1:]

	switch id {
	case Choke, Unchoke, Interested, NotInterested:
		return Message{ID: id}, nil
	case Have:
		if len(body) != 4 {
			return Message{}, fmt.Errorf("peer: have: bad length %d", len(body))
		}
		return Message{ID: id, Index: binary.BigEndian.Uint32(body)}, nil
	case Bitfield:
		return Message{ID: id, Bitset: append([]byte(nil), body...)}, nil
	case Request, Cancel:
		if len(body) != 12 {
			return Message{}, fmt.Errorf("peer: request/cancel: bad length %d", len(body))
		}
		return Message{
			ID:     id,
			Index:  binary.BigEndian.Uint32(body[0:4]),
			Begin:  binary.BigEndian.Uint32(body[4:8]),
			Length: binary.BigEndian.Uint32(body[8:12]),
		}, nil
	case Piece:
		if len(body) < 8 {
			return Message{}, fmt.Errorf("peer: piece: bad length %d", len(body))
		}
		return Message{
			ID:    id,
			Index: binary.BigEndian.Uint32(body[0:4]),
			Begin: binary.BigEndian.Uint32(body[4:8]),
			Block: append([]byte(nil), body[8:]...),
		}, nil
	case Port:
		if len(body) != 2 {
			return Message{}, fmt.Errorf("peer: port: bad length %d", len(body))
		}
		return Message{ID: id, Port: binary.BigEndian.Uint16(body)}, nil
	case Extended:
		if len(body) < 1 {
			return Message{}, fmt.Errorf("peer: extended: empty payload")
		}
		return Message{ID: id, ExtendedID: body[0], ExtendedPayload: append([]byte(nil), body[1:]...)}, nil
	default:
		// Unknown id: the frame's full length was already consumed by
		// the caller's read, so there's nothing left to drain — just
		// report it as unknown so the caller skips it.
		return Message{Unknown: true, ID: id}, nil
	}
}

// encodeMessage renders m as a frame body (payload only, no length
// prefix — the caller prepends that).
func encodeMessage(m Message) []byte {
	if m.IsKeepAlive {
		return nil
	}
	switch m.ID {
	case Choke, Unchoke, Interested, NotInterested:
		return []byte{byte(m.ID)}
	case Have:
		buf := make([]byte, 5)
		buf[0] = byte(m.ID)
		binary.BigEndian.PutUint32(buf[1:], m.Index)
		return buf
	case Bitfield:
		buf := make([]byte, 1+len(m.Bitset))
		buf[0] = byte(m.ID)
		copy(buf[1:], m.Bitset)
		return buf
	case Request, Cancel:
		buf := make([]byte, 13)
		buf[0] = byte(m.ID)
		binary.BigEndian.PutUint32(buf[1:5], m.Index)
		binary.BigEndian.PutUint32(buf[5:9], m.Begin)
		binary.BigEndian.PutUint32(buf[9:13], m.Length)
		return buf
	case Piece:
		buf := make([]byte, 9+len(m.Block))
		buf[0] = byte(m.ID)
		binary.BigEndian.PutUint32(buf[1:5], m.Index)
		binary.BigEndian.PutUint32(buf[5:9], m.Begin)
		copy(buf[9:], m.Block)
		return buf
	case Port:
		buf := make([]byte, 3)
		buf[0] = byte(m.ID)
		binary.BigEndian.PutUint16(buf[1:], m.Port)
		return buf
	case Extended:
		buf := make([]byte, 2+len(m.ExtendedPayload))
		buf[0] = byte(m.ID)
		buf[1] = m.ExtendedID
		copy(buf[2:], m.ExtendedPayload)
		return buf
	default:
		return nil
	}
}

// frameLengthPrefix renders the 4-byte big-endian length prefix for a
// payload of the given size.
func frameLengthPrefix(payloadLen int) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(payloadLen))
	return buf
}
