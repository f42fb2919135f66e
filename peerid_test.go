package torrent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPeerIDHasClientPrefix(t *testing.T) {
	id := NewPeerID()
	assert.Equal(t, clientIDPrefix, string(id[:len(clientIDPrefix)]))
}

func TestNewPeerIDIsNotConstant(t *testing.T) {
	a := NewPeerID()
	b := NewPeerID()
	assert.NotEqual(t, a, b)
}
