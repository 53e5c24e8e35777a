// Package bolt provides a BoltDB-backed sdk.State.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"dao_gov/sdk"
)

const (
	stateBucket = "state"
	metaBucket  = "meta"
	ttlKey      = "ttl"
)

// ErrLocked is returned by Open when another process holds the file.
var ErrLocked = errors.New("bolt: database is locked by another process")

// Store keeps governance state in a single bolt file.
type Store struct {
	db *bbolt.DB
}

var _ sdk.State = (*Store)(nil)

// Open opens (or creates) the bolt file at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, cleanPath)
		}
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debugf("opened bolt store %s", cleanPath)
	return store, nil
}

// Close closes the underlying bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) View(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		t, err := newTxn(tx, true)
		if err != nil {
			return err
		}
		return fn(t)
	})
}

func (s *Store) Update(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		t, err := newTxn(tx, false)
		if err != nil {
			return err
		}
		return fn(t)
	})
}

// TTL is the last lifetime extension asserted by a write.
type TTL struct {
	Threshold  uint32
	ExtendTo   uint32
	Extensions uint64
}

// LastTTL reads the stored lifetime extension record.
func (s *Store) LastTTL() (TTL, error) {
	var ttl TTL
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(metaBucket))
		if b == nil {
			return fmt.Errorf("meta bucket is missing")
		}
		ttl = decodeTTL(b.Get([]byte(ttlKey)))
		return nil
	})
	return ttl, err
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{stateBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

type txn struct {
	state    *bbolt.Bucket
	meta     *bbolt.Bucket
	readOnly bool
}

func newTxn(tx *bbolt.Tx, readOnly bool) (*txn, error) {
	state := tx.Bucket([]byte(stateBucket))
	meta := tx.Bucket([]byte(metaBucket))
	if state == nil || meta == nil {
		return nil, fmt.Errorf("state buckets are missing")
	}
	return &txn{state: state, meta: meta, readOnly: readOnly}, nil
}

// Get copies the value out, bolt memory is only valid inside the tx.
func (t *txn) Get(key string) ([]byte, bool, error) {
	v := t.state.Get([]byte(key))
	if v == nil {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (t *txn) Has(key string) (bool, error) {
	return t.state.Get([]byte(key)) != nil, nil
}

func (t *txn) Set(key string, value []byte) error {
	if t.readOnly {
		return sdk.ErrReadOnly
	}
	if value == nil {
		value = []byte{}
	}
	return t.state.Put([]byte(key), value)
}

func (t *txn) ForEach(prefix string, fn func(key string, value []byte) error) error {
	p := []byte(prefix)
	c := t.state.Cursor()
	for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
		if err := fn(string(k), bytes.Clone(v)); err != nil {
			return err
		}
	}
	return nil
}

func (t *txn) ExtendTTL(threshold, extendTo uint32) error {
	if t.readOnly {
		return sdk.ErrReadOnly
	}
	ttl := decodeTTL(t.meta.Get([]byte(ttlKey)))
	ttl.Threshold = threshold
	ttl.ExtendTo = extendTo
	ttl.Extensions++
	return t.meta.Put([]byte(ttlKey), encodeTTL(ttl))
}

func encodeTTL(ttl TTL) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint32(buf[0:4], ttl.Threshold)
	binary.BigEndian.PutUint32(buf[4:8], ttl.ExtendTo)
	binary.BigEndian.PutUint64(buf[8:16], ttl.Extensions)
	return buf
}

func decodeTTL(b []byte) TTL {
	if len(b) != 16 {
		return TTL{}
	}
	return TTL{
		Threshold:  binary.BigEndian.Uint32(b[0:4]),
		ExtendTo:   binary.BigEndian.Uint32(b[4:8]),
		Extensions: binary.BigEndian.Uint64(b[8:16]),
	}
}
