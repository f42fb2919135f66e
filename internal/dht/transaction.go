package dht

import (
	"encoding/binary"
	"sync"
)

// transactionTracker hands out a wrapping 16-bit transaction-id
// counter, rendered as 2 big-endian bytes, and tracks which ids are
// currently awaiting a reply. Grounded on spec.md §4.H
// "Transaction-ids".
type transactionTracker struct {
	mu      sync.Mutex
	counter uint16
	pending map[uint16]struct{}
}

func newTransactionTracker() *transactionTracker {
	return &transactionTracker{pending: make(map[uint16]struct{})}
}

// next allocates a fresh transaction-id and marks it pending.
func (t *transactionTracker) next() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.counter
	t.counter++
	t.pending[id] = struct{}{}
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, id)
	return buf
}

// accept reports whether raw is a currently pending transaction-id,
// and if so, clears it: a reply whose t does not match a pending
// transaction is dropped per spec.md §4.H.
func (t *transactionTracker) accept(raw []byte) bool {
	if len(raw) != 2 {
		return false
	}
	id := binary.BigEndian.Uint16(raw)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[id]; !ok {
		return false
	}
	delete(t.pending, id)
	return true
}
