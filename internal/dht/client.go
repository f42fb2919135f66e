package dht

import (
	"fmt"
	"time"

	"github.com/brineport/torrent/bencode"
	"github.com/brineport/torrent/internal/endpoint"
	"github.com/brineport/torrent/internal/transport"
)

// QueryTimeout bounds how long a single get_peers/find_node/ping
// query waits for a reply before the target is silently skipped.
const QueryTimeout = 5 * time.Second

// MaxLookupRounds hard-caps an iterative get_peers lookup.
const MaxLookupRounds = 8

// LookupFanOut is the number of closest nodes used to seed a stalled
// round, spec.md §4.H's k=8.
const LookupFanOut = 8

// Client is a mainline DHT client: its own node-id, a routing table,
// and the transaction-id bookkeeping needed to match replies to
// queries.
type Client struct {
	id    NodeID
	table *RoutingTable
	txns  *transactionTracker
}

// NewClient returns a Client with a freshly generated node-id.
func NewClient() *Client {
	return &Client{
		id:    GenerateNodeID(time.Now()),
		table: NewRoutingTable(),
		txns:  newTransactionTracker(),
	}
}

// ID returns this client's node-id.
func (c *Client) ID() NodeID { return c.id }

// Table exposes the routing table for inspection and seeding with
// well-known bootstrap nodes.
func (c *Client) Table() *RoutingTable { return c.table }

func idArg(id NodeID) bencode.Value {
	return bencode.String(id[:])
}

// query sends method to ep with the given argument dict (id is added
// automatically) and returns the decoded reply dict, or an error if
// the node didn't answer within QueryTimeout.
func (c *Client) query(ep endpoint.Endpoint, method string, args []bencode.DictEntry) (bencode.Value, error) {
	full := append([]bencode.DictEntry{{Key: []byte("id"), Val: idArg(c.id)}}, args...)
	txn := c.txns.next()
	req := encodeQuery(txn, method, bencode.Dict(full))

	d, err := transport.DialDatagram(ep.Host)
	if err != nil {
		return bencode.Value{}, fmt.Errorf("dht: dial %s: %w", ep.Host, err)
	}
	defer d.Close()

	buf := make([]byte, 2048)
	n, err := d.ExchangeOnce(req, buf, QueryTimeout)
	if err != nil {
		return bencode.Value{}, err
	}

	msg, err := decodeMessage(buf[:n])
	if err != nil {
		return bencode.Value{}, err
	}
	if !c.txns.accept(msg.transactionID) {
		return bencode.Value{}, fmt.Errorf("dht: unexpected or stale transaction id from %s", ep.Host)
	}
	if msg.y == 'e' {
		return bencode.Value{}, fmt.Errorf("dht: error reply from %s: %d %s", ep.Host, msg.errCode, msg.errMsg)
	}
	if msg.y != 'r' {
		return bencode.Value{}, fmt.Errorf("dht: unexpected reply type %q from %s", msg.y, ep.Host)
	}
	return msg.reply, nil
}

// Ping sends a ping query.
func (c *Client) Ping(ep endpoint.Endpoint) error {
	_, err := c.query(ep, "ping", nil)
	return err
}

// FindNode sends a find_node query for target and returns any nodes
// the reply carries.
func (c *Client) FindNode(ep endpoint.Endpoint, target NodeID) ([]Node, error) {
	reply, err := c.query(ep, "find_node", []bencode.DictEntry{
		{Key: []byte("target"), Val: idArg(target)},
	})
	if err != nil {
		return nil, err
	}
	nodesRaw, ok := reply.GetString("nodes")
	if !ok {
		return nil, nil
	}
	return decodeNodesCompact(nodesRaw), nil
}

// getPeersReply is the parsed shape of a get_peers response: either a
// "values" list of peer endpoints, or a "nodes" list to continue the
// lookup with (or both, which a real tracker node will not normally
// send, but nothing forbids it).
type getPeersReply struct {
	values []endpoint.Endpoint
	nodes  []Node
}

func (c *Client) getPeers(ep endpoint.Endpoint, infoHash [20]byte) (getPeersReply, error) {
	reply, err := c.query(ep, "get_peers", []bencode.DictEntry{
		{Key: []byte("info_hash"), Val: bencode.String(infoHash[:])},
	})
	if err != nil {
		return getPeersReply{}, err
	}
	var out getPeersReply
	if valuesV, ok := reply.Get("values"); ok && valuesV.Kind == bencode.KindList {
		for _, v := range valuesV.List {
			if v.Kind != bencode.KindString {
				continue
			}
			out.values = append(out.values, endpoint.DecodeCompactIPv4List(v.Str, endpoint.Datagram)...)
		}
	}
	if nodesRaw, ok := reply.GetString("nodes"); ok {
		out.nodes = decodeNodesCompact(nodesRaw)
	}
	return out, nil
}
