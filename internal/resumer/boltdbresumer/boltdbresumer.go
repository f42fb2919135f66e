// Package boltdbresumer persists resumer.State in a boltdb database, the
// same embedded store rain uses for its session database (session.go
// opens one bolt.DB per client and keeps a "session"/"torrents" bucket
// pair in it; this is the reduced-scope equivalent for a single-torrent
// core: one bucket, one key).
package boltdbresumer

import (
	"encoding/binary"
	"time"

	"github.com/boltdb/bolt"

	"github.com/brineport/torrent/internal/resumer"
)

var (
	bucketName = []byte("session")
	stateKey   = []byte("state")
)

// Resumer is a resumer.Resumer backed by a boltdb file.
type Resumer struct {
	db *bolt.DB
}

// New opens (creating if absent) the boltdb file at path and ensures its
// bucket exists.
func New(path string) (*Resumer, error) {
	db, err := bolt.Open(path, 0640, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err2 := tx.CreateBucketIfNotExists(bucketName)
		return err2
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Resumer{db: db}, nil
}

// Read returns the persisted state, or ok=false if nothing has been
// written yet.
func (r *Resumer) Read() (resumer.State, bool, error) {
	var s resumer.State
	var found bool
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		v := b.Get(stateKey)
		if v == nil || len(v) != 22 {
			return nil
		}
		found = true
		copy(s.PeerID[:], v[:20])
		s.ListenPort = binary.BigEndian.Uint16(v[20:22])
		return nil
	})
	return s, found, err
}

// Write persists s, overwriting any previous value.
func (r *Resumer) Write(s resumer.State) error {
	buf := make([]byte, 22)
	copy(buf[:20], s.PeerID[:])
	binary.BigEndian.PutUint16(buf[20:22], s.ListenPort)
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put(stateKey, buf)
	})
}

// Close releases the underlying boltdb file.
func (r *Resumer) Close() error {
	return r.db.Close()
}
