// Package endpoint parses and constructs the scheme-qualified
// locations (trackers, DHT bootstrap nodes, peers) this module talks
// to. Grounded on original_source/uttd/src/url.rs's Url/Scheme split,
// extended with the path component and compact-IPv4 constructor that
// spec.md's Endpoint value needs and the prototype's Url didn't carry.
package endpoint

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheme identifies the transport an Endpoint should be reached over.
type Scheme int

const (
	Stream Scheme = iota
	Datagram
	SecureStream
)

func (s Scheme) String() string {
	switch s {
	case Stream:
		return "stream"
	case Datagram:
		return "datagram"
	case SecureStream:
		return "secure-stream"
	default:
		return "unknown"
	}
}

func schemeFromText(text string) Scheme {
	switch strings.ToLower(text) {
	case "http":
		return Stream
	case "https":
		return SecureStream
	case "udp":
		return Datagram
	default:
		return Datagram
	}
}

// Endpoint is a (scheme, host:port, path) tuple. It is comparable with
// ==, so a set of Endpoint can be deduplicated with a plain map.
type Endpoint struct {
	Scheme Scheme
	Host   string // "host:port"
	Path   string
}

// Parse splits "scheme://host:port[/path]" into an Endpoint. The
// default path is "/".
func Parse(raw string) (Endpoint, error) {
	schemeText, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Endpoint{}, fmt.Errorf("endpoint: missing \"://\" in %q", raw)
	}
	host := rest
	path := "/"
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		host = rest[:idx]
		path = rest[idx:]
	}
	if !strings.Contains(host, ":") {
		return Endpoint{}, fmt.Errorf("endpoint: missing port in %q", raw)
	}
	return Endpoint{
		Scheme: schemeFromText(schemeText),
		Host:   host,
		Path:   path,
	}, nil
}

// FromIPv4 builds a Datagram-or-Stream Endpoint directly from four raw
// octets and a port, the form compact peer lists arrive in.
func FromIPv4(octets [4]byte, port uint16, scheme Scheme) Endpoint {
	return Endpoint{
		Scheme: scheme,
		Host:   fmt.Sprintf("%d.%d.%d.%d:%d", octets[0], octets[1], octets[2], octets[3], port),
		Path:   "/",
	}
}

// Port returns the integer port of the endpoint, or 0 if Host has no
// valid port suffix.
func (e Endpoint) Port() int {
	_, portStr, ok := strings.Cut(e.Host, ":")
	if !ok {
		return 0
	}
	p, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return p
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s://%s%s", e.Scheme, e.Host, e.Path)
}

// DecodeCompactIPv4List parses a concatenation of 6-byte (4 octet IPv4
// + 2 byte big-endian port) records, the form both tracker compact
// peer lists (spec.md §4.G) and DHT "values" lists (spec.md §4.H) use.
// Trailing bytes that don't make a full 6-byte record are discarded
// silently, per spec.md §9.
func DecodeCompactIPv4List(data []byte, scheme Scheme) []Endpoint {
	n := len(data) / 6
	out := make([]Endpoint, 0, n)
	for i := 0; i < n; i++ {
		rec := data[i*6 : i*6+6]
		var octets [4]byte
		copy(octets[:], rec[:4])
		port := uint16(rec[4])<<8 | uint16(rec[5])
		out = append(out, FromIPv4(octets, port, scheme))
	}
	return out
}
