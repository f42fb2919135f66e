package dht

import (
	"sync"
	"time"

	"github.com/brineport/torrent/internal/endpoint"
)

// GetPeers runs the iterative peer lookup described in spec.md §4.H:
// starting from bootstrap, each round queries every not-yet-queried
// endpoint for infoHash, all of a round's queries concurrently. A round that returns peers stops the lookup;
// a round that returns nothing and leaves the next round empty is
// re-seeded from the closest known nodes not yet queried. The lookup
// never runs more than MaxLookupRounds rounds.
func (c *Client) GetPeers(infoHash [20]byte, bootstrap []endpoint.Endpoint) []endpoint.Endpoint {
	queried := make(map[string]struct{})
	working := append([]endpoint.Endpoint(nil), bootstrap...)

	var found []endpoint.Endpoint

	for round := 0; round < MaxLookupRounds; round++ {
		var toQuery []endpoint.Endpoint
		for _, ep := range working {
			if _, ok := queried[ep.Host]; ok {
				continue
			}
			toQuery = append(toQuery, ep)
		}
		if len(toQuery) == 0 {
			toQuery = c.seedFromTable(infoHash, queried)
			if len(toQuery) == 0 {
				break
			}
		}

		var next []endpoint.Endpoint
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, ep := range toQuery {
			queried[ep.Host] = struct{}{}
			wg.Add(1)
			go func(ep endpoint.Endpoint) {
				defer wg.Done()
				reply, err := c.getPeers(ep, infoHash)
				if err != nil {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if len(reply.values) > 0 {
					found = append(found, reply.values...)
				}
				for _, n := range reply.nodes {
					n.LastSeen = time.Now()
					c.table.Add(n)
					next = append(next, n.Endpoint)
				}
			}(ep)
		}
		wg.Wait()

		if len(found) > 0 {
			break
		}
		working = next
	}

	return found
}

// seedFromTable returns the closest known nodes to target that
// haven't been queried yet, up to LookupFanOut of them.
func (c *Client) seedFromTable(target [20]byte, queried map[string]struct{}) []endpoint.Endpoint {
	candidates := c.table.Closest(NodeID(target), c.table.Len())
	var out []endpoint.Endpoint
	for _, n := range candidates {
		if _, ok := queried[n.Endpoint.Host]; ok {
			continue
		}
		out = append(out, n.Endpoint)
		if len(out) >= LookupFanOut {
			break
		}
	}
	return out
}
