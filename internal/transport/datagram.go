package transport

import (
	"fmt"
	"net"
	"time"
)

const (
	// DatagramAttempts is the fixed retry budget for a single logical
	// request/response exchange over UDP.
	DatagramAttempts = 5

	// DatagramAttemptTimeout bounds how long one attempt waits for a
	// reply before it is retried.
	DatagramAttemptTimeout = 5 * time.Second
)

// Datagram is a UDP association bound to an ephemeral local port and
// connected to a single remote address.
type Datagram struct {
	conn *net.UDPConn
}

// DialDatagram resolves addr and connects a UDP socket to it.
func DialDatagram(addr string) (*Datagram, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial udp %s: %w", addr, err)
	}
	return &Datagram{conn: conn}, nil
}

// Close closes the socket.
func (d *Datagram) Close() error {
	return d.conn.Close()
}

// Send writes b as a single datagram.
func (d *Datagram) Send(b []byte) error {
	_, err := d.conn.Write(b)
	if err != nil {
		return fmt.Errorf("transport: datagram send: %w", err)
	}
	return nil
}

// RecvInto reads one datagram into buf, retrying up to
// DatagramAttempts times when an attempt times out without a reply.
// It returns the number of bytes read, or an error once every attempt
// has timed out.
func (d *Datagram) RecvInto(buf []byte) (int, error) {
	var lastErr error
	for attempt := 0; attempt < DatagramAttempts; attempt++ {
		if err := d.conn.SetReadDeadline(time.Now().Add(DatagramAttemptTimeout)); err != nil {
			return 0, fmt.Errorf("transport: set read deadline: %w", err)
		}
		n, err := d.conn.Read(buf)
		if err == nil {
			return n, nil
		}
		lastErr = err
	}
	return 0, fmt.Errorf("transport: datagram recv: exhausted %d attempts: %w", DatagramAttempts, lastErr)
}

// ExchangeOnce sends req and waits for a single reply into buf within
// timeout, with no retry. DHT queries use this instead of Exchange:
// spec.md §4.H's lookup silently skips a node that doesn't answer
// within its own query timeout rather than retrying it.
func (d *Datagram) ExchangeOnce(req []byte, buf []byte, timeout time.Duration) (int, error) {
	if err := d.Send(req); err != nil {
		return 0, err
	}
	if err := d.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, fmt.Errorf("transport: set read deadline: %w", err)
	}
	n, err := d.conn.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("transport: datagram exchange once: %w", err)
	}
	return n, nil
}

// Exchange sends req and waits for a reply into buf, applying the
// full retry budget: a send/recv round that times out is retried by
// resending req, since the reply to the original send may simply have
// been lost.
func (d *Datagram) Exchange(req []byte, buf []byte) (int, error) {
	var lastErr error
	for attempt := 0; attempt < DatagramAttempts; attempt++ {
		if err := d.Send(req); err != nil {
			return 0, err
		}
		if err := d.conn.SetReadDeadline(time.Now().Add(DatagramAttemptTimeout)); err != nil {
			return 0, fmt.Errorf("transport: set read deadline: %w", err)
		}
		n, err := d.conn.Read(buf)
		if err == nil {
			return n, nil
		}
		lastErr = err
	}
	return 0, fmt.Errorf("transport: datagram exchange: exhausted %d attempts: %w", DatagramAttempts, lastErr)
}
