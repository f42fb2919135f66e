package dht

// Preferred selects among the well-known bootstrap nodes spec.md
// §4.H names, all reachable at port 6881. Grounded on
// original_source/d2h2/src/kademlia.rs's bootstrap comment and
// find_node.rs's PrefferedNetwork enum, which name the same four
// hosts this type selects between.
type Preferred int

const (
	PreferredBitTorrent Preferred = iota
	PreferredUTorrent
	PreferredTransmission
	PreferredAelitis
)

// BootstrapHost returns the hostname (without port) for p.
func (p Preferred) BootstrapHost() string {
	switch p {
	case PreferredUTorrent:
		return "router.utorrent.com"
	case PreferredTransmission:
		return "dht.transmissionbt.com"
	case PreferredAelitis:
		return "dht.aelitis.com"
	default:
		return "router.bittorrent.com"
	}
}

// BootstrapPort is the fixed port every well-known bootstrap node
// listens on.
const BootstrapPort = 6881
