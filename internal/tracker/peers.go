package tracker

import (
	"strconv"

	"github.com/brineport/torrent/bencode"
	"github.com/brineport/torrent/internal/endpoint"
)

// Peers is the normalized result of an announce: the tracker's
// reannounce interval plus every peer endpoint it returned, regardless
// of whether they arrived in dictionary or compact form.
type Peers struct {
	Interval int64
	Seeders  int64
	Leechers int64
	Peers    []endpoint.Endpoint
}

// decodePeersValue accepts both forms a tracker's "peers" key can take:
// a list of {ip, port} dictionaries, or a single compact byte-string.
// Either may appear from the same tracker across requests, so both are
// always handled.
func decodePeersValue(v bencode.Value) []endpoint.Endpoint {
	switch v.Kind {
	case bencode.KindString:
		return endpoint.DecodeCompactIPv4List(v.Str, endpoint.Stream)
	case bencode.KindList:
		out := make([]endpoint.Endpoint, 0, len(v.List))
		for _, item := range v.List {
			ipBytes, ok := item.GetString("ip")
			if !ok {
				continue
			}
			port, ok := item.GetInt("port")
			if !ok {
				continue
			}
			out = append(out, endpoint.Endpoint{
				Scheme: endpoint.Stream,
				Host:   hostPort(string(ipBytes), port),
				Path:   "/",
			})
		}
		return out
	default:
		return nil
	}
}

func hostPort(host string, port int64) string {
	return host + ":" + strconv.FormatInt(port, 10)
}

func parsePeersDict(v bencode.Value) Peers {
	interval, _ := v.GetInt("interval")
	seeders, _ := v.GetInt("complete")
	leechers, _ := v.GetInt("incomplete")
	var peers []endpoint.Endpoint
	if pv, ok := v.Get("peers"); ok {
		peers = decodePeersValue(pv)
	}
	return Peers{
		Interval: interval,
		Seeders:  seeders,
		Leechers: leechers,
		Peers:    peers,
	}
}
