package tracker

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/brineport/torrent/bencode"
	"github.com/brineport/torrent/internal/endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "abcXYZ019.-_", percentEncode([]byte("abcXYZ019.-_")))
	assert.Equal(t, "%00%FF", percentEncode([]byte{0x00, 0xFF}))
}

func TestHTTPBodyOK(t *testing.T) {
	resp := []byte("HTTP/1.1 200 OK\r\nServer: x\r\n\r\nd8:intervali900ee")
	body, err := httpBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "d8:intervali900ee", string(body))
}

func TestHTTPBodyNonOK(t *testing.T) {
	resp := []byte("HTTP/1.1 301 Moved\r\n\r\n")
	_, err := httpBody(resp)
	assert.Error(t, err)
}

func TestDecodePeersValueCompact(t *testing.T) {
	data := []byte{127, 0, 0, 1, 0x1F, 0x90}
	v := bencode.String(data)
	got := decodePeersValue(v)
	require.Len(t, got, 1)
	assert.Equal(t, "127.0.0.1:8080", got[0].Host)
}

func TestAnnounceHTTPEndToEnd(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := make([]byte, 4096)
		_, _ = c.Read(buf)
		body := "d8:intervali1800e8:completei1e10:incompletei2e5:peers12:" +
			string([]byte{127, 0, 0, 1, 0x1F, 0x90, 8, 8, 8, 8, 0x00, 0x50}) + "e"
		resp := "HTTP/1.1 200 OK\r\nConnection: close\r\n\r\n" + body
		_, _ = c.Write([]byte(resp))
	}()

	ep := endpoint.Endpoint{Scheme: endpoint.Stream, Host: ln.Addr().String(), Path: "/announce"}
	var params Torrent
	params.Port = 6881
	peers, err := Announce(ep, params, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), peers.Interval)
	assert.Equal(t, int64(1), peers.Seeders)
	assert.Equal(t, int64(2), peers.Leechers)
	require.Len(t, peers.Peers, 2)
	assert.Equal(t, "127.0.0.1:8080", peers.Peers[0].Host)
	<-done
}

func TestAnnounceUDPEndToEnd(t *testing.T) {
	srvConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	defer srvConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 128)

		// connect phase
		n, addr, err := srvConn.ReadFromUDP(buf)
		if err != nil || n < 16 {
			return
		}
		connResp := make([]byte, 16)
		binary.BigEndian.PutUint32(connResp[4:8], binary.BigEndian.Uint32(buf[12:16]))
		for i := range connResp[8:16] {
			connResp[8+i] = 0x42
		}
		if _, err := srvConn.WriteToUDP(connResp, addr); err != nil {
			return
		}

		// announce phase
		n, addr, err = srvConn.ReadFromUDP(buf)
		if err != nil || n < 98 {
			return
		}
		txn := buf[12:16]
		annResp := make([]byte, 26)
		binary.BigEndian.PutUint32(annResp[0:4], 1)
		copy(annResp[4:8], txn)
		binary.BigEndian.PutUint32(annResp[8:12], 1800)
		binary.BigEndian.PutUint32(annResp[12:16], 0)
		binary.BigEndian.PutUint32(annResp[16:20], 1)
		copy(annResp[20:26], []byte{10, 0, 0, 1, 0x1A, 0xE1})
		_, _ = srvConn.WriteToUDP(annResp, addr)
	}()

	ep := endpoint.Endpoint{Scheme: endpoint.Datagram, Host: srvConn.LocalAddr().String(), Path: "/"}
	var params Torrent
	params.Port = 6881
	peers, err := Announce(ep, params, 77)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), peers.Interval)
	assert.Equal(t, int64(1), peers.Seeders)
	require.Len(t, peers.Peers, 1)
	assert.Equal(t, "10.0.0.1:6881", peers.Peers[0].Host)
	<-done
}
