package peer

import "sync"

// BlockSink receives completed blocks delivered by piece messages. The
// piece-picker and request scheduler that would decide what to request
// next are out of scope per spec.md §1; Coordinator only exposes the
// hooks a scheduler would drive.
type BlockSink interface {
	DeliverBlock(peerIndex int, pieceIndex, begin uint32, block []byte)
}

// peerState is what the coordinator tracks about one peer: its choke/
// interest state and which pieces it has.
type peerState struct {
	choking     bool // this peer is choking us
	interested  bool // this peer is interested in us
	pieceMap    []byte
	pieceMapSet bool
}

// Coordinator is the single owner of cross-peer state, grounded on
// spec.md §4.I's "Central sink and coordinator": on bitfield it
// installs a peer's map, on have it sets one bit, on choke/unchoke/
// interested/not-interested it flips the matching flag, and on piece
// it forwards the block to a BlockSink.
type Coordinator struct {
	mu    sync.Mutex
	peers map[int]*peerState
	sink  BlockSink
}

// NewCoordinator returns a Coordinator that delivers piece blocks to
// sink.
func NewCoordinator(sink BlockSink) *Coordinator {
	return &Coordinator{peers: make(map[int]*peerState), sink: sink}
}

func (c *Coordinator) state(peerIndex int) *peerState {
	s, ok := c.peers[peerIndex]
	if !ok {
		s = &peerState{choking: true}
		c.peers[peerIndex] = s
	}
	return s
}

// Handle applies one Event to the coordinator's state, dispatching
// piece blocks to the BlockSink. It is safe to call from the
// goroutine that drains the shared event channel only — Coordinator
// itself is not meant to be called concurrently from multiple
// goroutines, but guards its state with a mutex anyway since a caller
// may choose to shard event delivery across workers.
func (c *Coordinator) Handle(ev Event) {
	if ev.Err != nil {
		c.mu.Lock()
		delete(c.peers, ev.PeerIndex)
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state(ev.PeerIndex)

	switch ev.Message.ID {
	case Choke:
		s.choking = true
	case Unchoke:
		s.choking = false
	case Interested:
		s.interested = true
	case NotInterested:
		s.interested = false
	case Bitfield:
		s.pieceMap = append([]byte(nil), ev.Message.Bitset...)
		s.pieceMapSet = true
	case Have:
		c.setPieceBit(s, ev.Message.Index)
	case Piece:
		if c.sink != nil {
			c.sink.DeliverBlock(ev.PeerIndex, ev.Message.Index, ev.Message.Begin, ev.Message.Block)
		}
	}
}

// setPieceBit flips bit index on in s's piece map, MSB-first within
// each byte (piece 0 is the most significant bit of byte 0), growing
// the map if a have arrives for an index past what bitfield covered.
func (c *Coordinator) setPieceBit(s *peerState, index uint32) {
	byteIdx := int(index / 8)
	bitIdx := uint(7 - index%8)
	if byteIdx >= len(s.pieceMap) {
		grown := make([]byte, byteIdx+1)
		copy(grown, s.pieceMap)
		s.pieceMap = grown
	}
	s.pieceMap[byteIdx] |= 1 << bitIdx
	s.pieceMapSet = true
}

// Choking reports whether peerIndex is currently choking us.
func (c *Coordinator) Choking(peerIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state(peerIndex).choking
}

// Interested reports whether peerIndex has told us it's interested.
func (c *Coordinator) Interested(peerIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state(peerIndex).interested
}

// HasPiece reports whether peerIndex's known piece map has index set.
func (c *Coordinator) HasPiece(peerIndex int, index uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state(peerIndex)
	byteIdx := int(index / 8)
	if !s.pieceMapSet || byteIdx >= len(s.pieceMap) {
		return false
	}
	bitIdx := uint(7 - index%8)
	return s.pieceMap[byteIdx]&(1<<bitIdx) != 0
}

// Forget drops all state for peerIndex, e.g. once its Peer has closed.
func (c *Coordinator) Forget(peerIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.peers, peerIndex)
}
