// Package memory is an in-process sdk.State, optionally persisted to a
// JSON snapshot file after every commit. Meant for tests and local runs.
package memory

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"

	"dao_gov/sdk"
)

var ErrClosed = errors.New("memory: store closed")

// TTL is the last lifetime extension a transaction asked for.
type TTL struct {
	Threshold  uint32
	ExtendTo   uint32
	Extensions uint64
}

type Store struct {
	mu       sync.RWMutex
	db       map[string][]byte
	ttl      TTL
	filename string
	closed   bool
}

var _ sdk.State = (*Store)(nil)

// New returns an empty store that lives only in memory.
func New() *Store {
	return &Store{db: make(map[string][]byte)}
}

// Open loads the snapshot at filename (a missing file is fine) and keeps
// writing it back after each commit.
func Open(filename string) (*Store, error) {
	s := New()
	s.filename = filename
	if err := s.loadFromFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) View(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(&txn{store: s, readOnly: true})
}

// Update applies the transaction's pending writes only when fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	tx := &txn{store: s, pending: map[string][]byte{}}
	if err := fn(tx); err != nil {
		return err
	}
	db, ttl := s.db, s.ttl
	if s.filename != "" {
		// the snapshot goes out before memory changes, a failed write
		// leaves both untouched
		db = make(map[string][]byte, len(s.db)+len(tx.pending))
		for k, v := range s.db {
			db[k] = v
		}
	}
	for k, v := range tx.pending {
		db[k] = v
	}
	if tx.ttl != nil {
		ttl = TTL{Threshold: tx.ttl.Threshold, ExtendTo: tx.ttl.ExtendTo, Extensions: ttl.Extensions + 1}
	}
	if s.filename != "" {
		if err := saveToFile(s.filename, db, ttl); err != nil {
			return err
		}
	}
	s.db, s.ttl = db, ttl
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// LastTTL reports the most recent committed lifetime extension.
func (s *Store) LastTTL() TTL {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ttl
}

// Len is the number of committed keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.db)
}

// Dump copies the committed key space, handy for before/after comparisons.
func (s *Store) Dump() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.db))
	for k, v := range s.db {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

type txn struct {
	store    *Store
	readOnly bool
	pending  map[string][]byte
	ttl      *TTL
}

func (t *txn) Get(key string) ([]byte, bool, error) {
	if v, ok := t.pending[key]; ok {
		return append([]byte(nil), v...), true, nil
	}
	v, ok := t.store.db[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (t *txn) Has(key string) (bool, error) {
	if _, ok := t.pending[key]; ok {
		return true, nil
	}
	_, ok := t.store.db[key]
	return ok, nil
}

func (t *txn) Set(key string, value []byte) error {
	if t.readOnly {
		return sdk.ErrReadOnly
	}
	t.pending[key] = append([]byte(nil), value...)
	return nil
}

func (t *txn) ForEach(prefix string, fn func(key string, value []byte) error) error {
	keys := make([]string, 0)
	for k := range t.store.db {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	for k := range t.pending {
		if _, dup := t.store.db[k]; !dup && strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, _, _ := t.Get(k)
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (t *txn) ExtendTTL(threshold, extendTo uint32) error {
	if t.readOnly {
		return sdk.ErrReadOnly
	}
	t.ttl = &TTL{Threshold: threshold, ExtendTo: extendTo}
	return nil
}

// loadFromFile loads the map from the snapshot file
func (s *Store) loadFromFile() error {
	data, err := os.ReadFile(s.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // file doesn't exist yet
		}
		return err
	}
	snap := snapshot{}
	if err := snap.unmarshal(data); err != nil {
		return err
	}
	s.db = snap.Entries
	s.ttl = snap.TTL
	return nil
}

// saveToFile writes the full map next to the target and renames it over,
// so a crash mid-write keeps the previous snapshot.
func saveToFile(filename string, db map[string][]byte, ttl TTL) error {
	data, err := snapshot{Entries: db, TTL: ttl}.marshal()
	if err != nil {
		return err
	}
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}
