package tracker

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/brineport/torrent/bencode"
	"github.com/brineport/torrent/internal/endpoint"
	"github.com/brineport/torrent/internal/transport"
)

// percentEncode renders raw bytes the way an HTTP announce query
// string needs: bytes in [0-9A-Za-z.-_] pass through unescaped, every
// other byte becomes a %XX hex escape. Grounded on
// original_source/uttd/src/urutil.rs's `encode`, but restricted to the
// RFC 3986 unreserved set that field actually needs instead of
// escaping every byte unconditionally.
func percentEncode(raw []byte) string {
	var b strings.Builder
	for _, c := range raw {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z',
			c == '.' || c == '-' || c == '_':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// announceHTTP performs a tracker announce over HTTP, grounded on
// spec.md §4.G and original_source/uttd/src/urutil.rs's build_url/
// response_body_tcp pair.
func announceHTTP(ep endpoint.Endpoint, params Torrent, event string) (Peers, error) {
	query := fmt.Sprintf(
		"info_hash=%s&peer_id=%s&port=%s&uploaded=%s&downloaded=%s&left=%s&compact=1&event=%s",
		percentEncode(params.InfoHash[:]),
		percentEncode(params.PeerID[:]),
		strconv.Itoa(params.Port),
		strconv.FormatInt(params.BytesUploaded, 10),
		strconv.FormatInt(params.BytesDownloaded, 10),
		strconv.FormatInt(params.BytesLeft, 10),
		event,
	)
	path := ep.Path
	if path == "" {
		path = "/"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	req := fmt.Sprintf(
		"GET %s%s%s HTTP/1.1\r\nHost: %s\r\nConnection: close\r\n\r\n",
		path, sep, query, hostOnly(ep.Host),
	)

	stream, err := transport.Dial(ep.Host, transport.DefaultPayloadTimeout)
	if err != nil {
		return Peers{}, fmt.Errorf("tracker: http announce dial: %w", err)
	}
	defer stream.Close()

	if err := stream.WriteAll([]byte(req), transport.DefaultPayloadTimeout); err != nil {
		return Peers{}, fmt.Errorf("tracker: http announce write: %w", err)
	}

	resp, err := stream.ReadToEnd(transport.DefaultPayloadTimeout)
	if err != nil {
		return Peers{}, fmt.Errorf("tracker: http announce read: %w", err)
	}

	body, err := httpBody(resp)
	if err != nil {
		return Peers{}, err
	}

	v, _, err := bencode.Decode(body)
	if err != nil {
		return Peers{}, fmt.Errorf("tracker: http announce decode: %w", err)
	}
	return parsePeersDict(v), nil
}

// httpBody validates the status line begins "HTTP/1.1 200" and
// returns everything after the first CRLFCRLF.
func httpBody(resp []byte) ([]byte, error) {
	if !bytes.HasPrefix(resp, []byte("HTTP/1.1 200")) {
		line := resp
		if idx := bytes.IndexByte(resp, '\n'); idx >= 0 {
			line = resp[:idx]
		}
		return nil, fmt.Errorf("tracker: http announce failed: %q", bytes.TrimSpace(line))
	}
	idx := bytes.Index(resp, []byte("\r\n\r\n"))
	if idx < 0 {
		return nil, fmt.Errorf("tracker: http announce response has no header terminator")
	}
	return resp[idx+4:], nil
}

func hostOnly(hostPort string) string {
	h, _, ok := strings.Cut(hostPort, ":")
	if !ok {
		return hostPort
	}
	return h
}
