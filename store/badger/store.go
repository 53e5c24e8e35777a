// Package badger provides a Badger-backed sdk.State.
package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger"
	"github.com/dgraph-io/badger/options"

	"dao_gov/sdk"
)

// State keys live under 's', bookkeeping under 'm', so a prefix scan over
// state never sees the ttl record.
const (
	statePrefix = "s"
	ttlKey      = "m/ttl"
)

// maxConflictRetries bounds how often Update replays after ErrConflict.
const maxConflictRetries = 5

// Store keeps governance state in a badger directory.
type Store struct {
	db *badger.DB
}

var _ sdk.State = (*Store)(nil)

// Open opens (or creates) the badger directory at dir.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanDir := filepath.Clean(dir)
	opts := badger.DefaultOptions(cleanDir).
		WithValueDir(cleanDir).
		WithLogger(badgerLogger{}).
		WithValueLogLoadingMode(options.FileIO).
		WithTableLoadingMode(options.FileIO).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(1).
		WithNumCompactors(1).
		WithNumLevelZeroTables(1).
		WithNumLevelZeroTablesStall(2)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the badger directory.
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
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&tx{txn: txn, readOnly: true})
	})
}

// Update runs fn in a read-write transaction. Badger uses optimistic
// concurrency, a conflicting commit replays fn from scratch.
func (s *Store) Update(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			return fn(&tx{txn: txn})
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		log.Debugf("badger conflict, retrying update (attempt %d)", attempt+1)
	}
	return err
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
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ttl, err = readTTL(txn)
		return err
	})
	return ttl, err
}

type tx struct {
	txn      *badger.Txn
	readOnly bool
}

func (t *tx) Get(key string) ([]byte, bool, error) {
	item, err := t.txn.Get([]byte(statePrefix + key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (t *tx) Has(key string) (bool, error) {
	_, err := t.txn.Get([]byte(statePrefix + key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (t *tx) Set(key string, value []byte) error {
	if t.readOnly {
		return sdk.ErrReadOnly
	}
	if value == nil {
		value = []byte{}
	}
	return t.txn.Set([]byte(statePrefix+key), value)
}

func (t *tx) ForEach(prefix string, fn func(key string, value []byte) error) error {
	p := []byte(statePrefix + prefix)
	it := t.txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		item := it.Item()
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		k := item.KeyCopy(nil)
		if err := fn(string(k[len(statePrefix):]), v); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) ExtendTTL(threshold, extendTo uint32) error {
	if t.readOnly {
		return sdk.ErrReadOnly
	}
	ttl, err := readTTL(t.txn)
	if err != nil {
		return err
	}
	ttl.Threshold = threshold
	ttl.ExtendTo = extendTo
	ttl.Extensions++
	buf := make([]byte, 16)
	binary.BigEndian.PutUint32(buf[0:4], ttl.Threshold)
	binary.BigEndian.PutUint32(buf[4:8], ttl.ExtendTo)
	binary.BigEndian.PutUint64(buf[8:16], ttl.Extensions)
	return t.txn.Set([]byte(ttlKey), buf)
}

func readTTL(txn *badger.Txn) (TTL, error) {
	item, err := txn.Get([]byte(ttlKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return TTL{}, nil
	}
	if err != nil {
		return TTL{}, err
	}
	b, err := item.ValueCopy(nil)
	if err != nil {
		return TTL{}, err
	}
	if len(b) != 16 {
		return TTL{}, fmt.Errorf("corrupt ttl record (%d bytes)", len(b))
	}
	return TTL{
		Threshold:  binary.BigEndian.Uint32(b[0:4]),
		ExtendTo:   binary.BigEndian.Uint32(b[4:8]),
		Extensions: binary.BigEndian.Uint64(b[8:16]),
	}, nil
}
