package peer

import (
	"encoding/binary"
	"fmt"

	"github.com/brineport/torrent/internal/transport"
)

// Event is a peer message tagged with the originating peer's index,
// the shape the central sink consumes. Grounded on rain's pattern of
// forwarding decoded messages from a per-peer reader goroutine to a
// single owning goroutine over a channel (internal/peerconn.Peer.Run,
// Messages()).
type Event struct {
	PeerIndex int
	Message   Message
	Err       error // set, with Message zero, if the peer's connection failed
}

// Peer owns one established session and the goroutine that reads
// framed messages off it, forwarding them as Events.
type Peer struct {
	Index   int
	Session *Session

	events  chan<- Event
	closeC  chan struct{}
	closedC chan struct{}
}

// NewPeer wraps an established handshake Session for the reader loop,
// tagging every Event it produces with index so a central sink can
// tell peers apart.
func NewPeer(index int, session *Session, events chan<- Event) *Peer {
	return &Peer{
		Index:   index,
		Session: session,
		events:  events,
		closeC:  make(chan struct{}),
		closedC: make(chan struct{}),
	}
}

// Close signals the reader loop to stop and waits for it to exit.
func (p *Peer) Close() {
	close(p.closeC)
	<-p.closedC
}

// Run reads framed peer messages until the connection fails or Close
// is called, forwarding each as an Event. A read that blocks longer
// than transport.PeerReadTimeout terminates the session, per spec.md
// §4.I.
func (p *Peer) Run() {
	defer close(p.closedC)
	defer p.Session.conn.Close()

	for {
		select {
		case <-p.closeC:
			return
		default:
		}

		msg, err := p.readOne()
		if err != nil {
			select {
			case p.events <- Event{PeerIndex: p.Index, Err: err}:
			case <-p.closeC:
			}
			return
		}

		select {
		case p.events <- Event{PeerIndex: p.Index, Message: msg}:
		case <-p.closeC:
			return
		}
	}
}

func (p *Peer) readOne() (Message, error) {
	lenBuf, err := p.Session.conn.ReadExact(4, transport.PeerReadTimeout)
	if err != nil {
		return Message{}, err
	}
	length := binary.BigEndian.Uint32(lenBuf)
	if length == 0 {
		return Message{IsKeepAlive: true}, nil
	}
	payload, err := p.Session.conn.ReadExact(int(length), transport.PeerReadTimeout)
	if err != nil {
		return Message{}, err
	}
	msg, err := decodeMessage(payload)
	if err != nil {
		return Message{}, fmt.Errorf("peer %d: %w", p.Index, err)
	}
	return msg, nil
}

// Send frames and writes msg to the peer.
func (p *Peer) Send(msg Message) error {
	payload := encodeMessage(msg)
	frame := append(frameLengthPrefix(len(payload)), payload...)
	return p.Session.conn.WriteAll(frame, transport.DefaultPayloadTimeout)
}
