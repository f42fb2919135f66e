package peer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	delivered []struct {
		peerIndex           int
		pieceIndex, begin   uint32
		block               []byte
	}
}

func (s *recordingSink) DeliverBlock(peerIndex int, pieceIndex, begin uint32, block []byte) {
	s.delivered = append(s.delivered, struct {
		peerIndex           int
		pieceIndex, begin   uint32
		block               []byte
	}{peerIndex, pieceIndex, begin, block})
}

func TestCoordinatorChokeUnchoke(t *testing.T) {
	c := NewCoordinator(nil)
	assert.True(t, c.Choking(1), "peers start out choking us")
	c.Handle(Event{PeerIndex: 1, Message: Message{ID: Unchoke}})
	assert.False(t, c.Choking(1))
	c.Handle(Event{PeerIndex: 1, Message: Message{ID: Choke}})
	assert.True(t, c.Choking(1))
}

func TestCoordinatorInterested(t *testing.T) {
	c := NewCoordinator(nil)
	assert.False(t, c.Interested(2))
	c.Handle(Event{PeerIndex: 2, Message: Message{ID: Interested}})
	assert.True(t, c.Interested(2))
	c.Handle(Event{PeerIndex: 2, Message: Message{ID: NotInterested}})
	assert.False(t, c.Interested(2))
}

func TestCoordinatorBitfieldAndHave(t *testing.T) {
	c := NewCoordinator(nil)
	c.Handle(Event{PeerIndex: 3, Message: Message{ID: Bitfield, Bitset: []byte{0b10000000}}})
	assert.True(t, c.HasPiece(3, 0))
	assert.False(t, c.HasPiece(3, 1))

	c.Handle(Event{PeerIndex: 3, Message: Message{ID: Have, Index: 9}})
	assert.True(t, c.HasPiece(3, 9))
}

func TestCoordinatorDeliversBlocks(t *testing.T) {
	sink := &recordingSink{}
	c := NewCoordinator(sink)
	c.Handle(Event{PeerIndex: 4, Message: Message{ID: Piece, Index: 1, Begin: 0, Block: []byte("data")}})
	assert.Len(t, sink.delivered, 1)
	assert.Equal(t, "data", string(sink.delivered[0].block))
}

func TestCoordinatorForgetsOnError(t *testing.T) {
	c := NewCoordinator(nil)
	c.Handle(Event{PeerIndex: 5, Message: Message{ID: Unchoke}})
	assert.False(t, c.Choking(5))
	c.Handle(Event{PeerIndex: 5, Err: assertErr})
	assert.True(t, c.Choking(5), "forgotten peer resets to default choking state")
}

var assertErr = errSentinel("boom")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }
