package torrent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"

	"github.com/brineport/torrent/internal/dht"
	"github.com/brineport/torrent/internal/endpoint"
	"github.com/brineport/torrent/internal/logger"
	"github.com/brineport/torrent/internal/metainfo"
	"github.com/brineport/torrent/internal/peer"
	"github.com/brineport/torrent/internal/tracker"
)

// Progress is a snapshot of the orchestrator's go-metrics counters,
// grounded on rain's torrent.go downloadSpeed/uploadSpeed EWMAs: this
// core only counts (peers found, handshakes started and won, blocks
// delivered)
// rather than computing a rate, since the piece-picker that would make
// a meaningful speed figure is out of scope.
type Progress struct {
	PeersFound        int64
	HandshakesStarted int64
	HandshakesWon     int64
	BlocksDelivered   int64
}

// Orchestrator drives one torrent end to end: announce, handshake race
// every candidate peer endpoint in parallel, and feed the winners into
// a Coordinator's sink loop. Grounded on spec.md §4.J's five-step
// sequence and on session/run.go's central-select-loop shape, reduced
// from "every torrent in a session" to "one torrent" since the
// multi-torrent bookkeeping in session.go (port pools, per-torrent
// boltdb specs) is out of this core's scope.
type Orchestrator struct {
	meta   *metainfo.MetaInfo
	peerID [20]byte
	port   int
	sink   peer.BlockSink
	dht    *dht.Client
	log    logger.Logger

	peersFound        metrics.Counter
	handshakesStarted metrics.Counter
	handshakesWon     metrics.Counter
	blocksDelivered   metrics.Counter

	mu    sync.Mutex
	coord *peer.Coordinator
	peers map[int]*peer.Peer
	next  int
}

// NewOrchestrator wires one Orchestrator. dhtClient may be nil to skip
// the DHT lookup leg of step two.
func NewOrchestrator(meta *metainfo.MetaInfo, peerID [20]byte, port int, sink peer.BlockSink, dhtClient *dht.Client) *Orchestrator {
	o := &Orchestrator{
		meta:              meta,
		peerID:            peerID,
		port:              port,
		sink:              sink,
		dht:               dhtClient,
		log:               logger.New("orchestrator"),
		peersFound:        metrics.NewCounter(),
		handshakesStarted: metrics.NewCounter(),
		handshakesWon:     metrics.NewCounter(),
		blocksDelivered:   metrics.NewCounter(),
		peers:             make(map[int]*peer.Peer),
	}
	metrics.Register("orchestrator.peers_found", o.peersFound)
	metrics.Register("orchestrator.handshakes_started", o.handshakesStarted)
	metrics.Register("orchestrator.handshakes_won", o.handshakesWon)
	metrics.Register("orchestrator.blocks_delivered", o.blocksDelivered)
	o.coord = peer.NewCoordinator(countingSink{inner: sink, counter: o.blocksDelivered})
	return o
}

// countingSink wraps the caller's BlockSink so every delivered block
// also ticks blocksDelivered, without making BlockSink itself aware of
// metrics.
type countingSink struct {
	inner   peer.BlockSink
	counter metrics.Counter
}

func (s countingSink) DeliverBlock(peerIndex int, pieceIndex, begin uint32, block []byte) {
	s.counter.Inc(1)
	if s.inner != nil {
		s.inner.DeliverBlock(peerIndex, pieceIndex, begin, block)
	}
}

// Progress returns a point-in-time snapshot of the run's counters.
func (o *Orchestrator) Progress() Progress {
	return Progress{
		PeersFound:        o.peersFound.Count(),
		HandshakesStarted: o.handshakesStarted.Count(),
		HandshakesWon:     o.handshakesWon.Count(),
		BlocksDelivered:   o.blocksDelivered.Count(),
	}
}

// Run executes the five-step sequence spec.md §4.J describes: announce
// (tracker and, if enabled, DHT), collect candidate endpoints, race a
// handshake against each in parallel, and drive every winner's reader
// loop into the Coordinator until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	endpoints, err := o.discoverPeers(ctx)
	if err != nil {
		return err
	}
	o.peersFound.Inc(int64(len(endpoints)))

	events := make(chan peer.Event, len(endpoints))
	eg, egCtx := errgroup.WithContext(ctx)
	for _, ep := range endpoints {
		ep := ep
		eg.Go(func() error {
			o.handshakesStarted.Inc(1)
			session, err := peer.Handshake(egCtx, ep.Host, o.meta.InfoHash, o.peerID)
			if err != nil {
				o.log.Debugln("handshake failed for", ep.Host, ":", err)
				return nil // a single peer's failure never fails the run
			}
			o.handshakesWon.Inc(1)
			o.addPeer(session, events)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	return o.sinkLoop(ctx, events)
}

// discoverPeers performs step two: a tracker announce against the
// metainfo's announce URLs, and, when a DHT client was supplied, a
// get_peers lookup seeded from the well-known bootstrap hosts that runs
// alongside the announces. The two peer lists are merged and
// de-duplicated.
func (o *Orchestrator) discoverPeers(ctx context.Context) ([]endpoint.Endpoint, error) {
	seen := make(map[string]endpoint.Endpoint)

	var dhtPeers []endpoint.Endpoint
	dhtDone := make(chan struct{})
	if o.dht != nil {
		var bootstrap []endpoint.Endpoint
		for _, p := range []dht.Preferred{dht.PreferredBitTorrent, dht.PreferredUTorrent, dht.PreferredTransmission, dht.PreferredAelitis} {
			bootstrap = append(bootstrap, endpoint.Endpoint{
				Scheme: endpoint.Datagram,
				Host:   fmt.Sprintf("%s:%d", p.BootstrapHost(), dht.BootstrapPort),
				Path:   "/",
			})
		}
		go func() {
			defer close(dhtDone)
			dhtPeers = o.dht.GetPeers(o.meta.InfoHash, bootstrap)
		}()
	} else {
		close(dhtDone)
	}

	params := tracker.Torrent{
		BytesLeft: o.meta.TotalLength(),
		InfoHash:  o.meta.InfoHash,
		PeerID:    o.peerID,
		Port:      o.port,
	}
	for _, url := range o.meta.AnnounceURLs() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		ep, err := endpoint.Parse(url)
		if err != nil {
			o.log.Warningln("skipping unparseable announce url", url, ":", err)
			continue
		}
		peers, err := tracker.Announce(ep, params, uint32(time.Now().UnixNano()))
		if err != nil {
			o.log.Warningln("tracker announce failed for", url, ":", err)
			continue
		}
		for _, p := range peers.Peers {
			seen[p.String()] = p
		}
	}

	<-dhtDone
	for _, p := range dhtPeers {
		seen[p.String()] = p
	}

	out := make([]endpoint.Endpoint, 0, len(seen))
	for _, ep := range seen {
		out = append(out, ep)
	}
	return out, nil
}

func (o *Orchestrator) addPeer(session *peer.Session, events chan<- peer.Event) {
	o.mu.Lock()
	idx := o.next
	o.next++
	p := peer.NewPeer(idx, session, events)
	o.peers[idx] = p
	o.mu.Unlock()

	go p.Run()
}

// sinkLoop is the coordinator's central select loop: every peer
// publishes Events onto one channel, read here sequentially so the
// Coordinator never needs its own lock, mirroring session/run.go's
// single-consumer select.
func (o *Orchestrator) sinkLoop(ctx context.Context, events <-chan peer.Event) error {
	for {
		select {
		case <-ctx.Done():
			o.closeAll()
			return ctx.Err()
		case ev := <-events:
			o.coord.Handle(ev)
			if ev.Err != nil {
				o.mu.Lock()
				delete(o.peers, ev.PeerIndex)
				o.mu.Unlock()
			}
		}
	}
}

func (o *Orchestrator) closeAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for idx, p := range o.peers {
		p.Close()
		delete(o.peers, idx)
	}
}
