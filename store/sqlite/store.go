// Package sqlite provides a SQLite-backed sdk.State.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"dao_gov/sdk"
	"dao_gov/store/sqlite/migrations"
)

// maxBusyRetries bounds how often Update restarts after SQLITE_BUSY.
const maxBusyRetries = 5

// Store persists governance state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ sdk.State = (*Store)(nil)

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) View(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sqlTx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin view: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()
	return fn(&txn{ctx: ctx, tx: sqlTx, readOnly: true})
}

// Update runs fn in one SQL transaction. A concurrent writer from another
// process can make SQLite give up with SQLITE_BUSY, in which case the whole
// call is replayed.
func (s *Store) Update(ctx context.Context, fn func(tx sdk.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	var err error
	for attempt := 0; attempt < maxBusyRetries; attempt++ {
		err = s.update(ctx, fn)
		if !isBusy(err) {
			return err
		}
		log.Debugf("sqlite busy, retrying update (attempt %d)", attempt+1)
		time.Sleep(time.Duration(attempt+1) * 20 * time.Millisecond)
	}
	return err
}

func (s *Store) update(ctx context.Context, fn func(tx sdk.Tx) error) error {
	sqlTx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	if err := fn(&txn{ctx: ctx, tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LastTTL reports the stored lifetime extension and how often it was asserted.
func (s *Store) LastTTL(ctx context.Context) (threshold, extendTo uint32, extensions uint64, err error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT threshold, extend_to, extensions FROM ttl_extensions WHERE id = 1`)
	err = row.Scan(&threshold, &extendTo, &extensions)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, 0, nil
	}
	return threshold, extendTo, extensions, err
}

func isBusy(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code() & 0xff
	return code == sqlite3lib.SQLITE_BUSY || code == sqlite3lib.SQLITE_LOCKED
}

type txn struct {
	ctx      context.Context
	tx       *sql.Tx
	readOnly bool
}

func (t *txn) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := t.tx.QueryRowContext(t.ctx, `SELECT value FROM state WHERE key = ?`, []byte(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get state: %w", err)
	}
	return value, true, nil
}

func (t *txn) Has(key string) (bool, error) {
	var found int
	err := t.tx.QueryRowContext(t.ctx, `SELECT 1 FROM state WHERE key = ?`, []byte(key)).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has state: %w", err)
	}
	return true, nil
}

func (t *txn) Set(key string, value []byte) error {
	if t.readOnly {
		return sdk.ErrReadOnly
	}
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		[]byte(key), value,
	)
	if err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	return nil
}

// ForEach reads the whole range first so fn may query the same tx.
func (t *txn) ForEach(prefix string, fn func(key string, value []byte) error) error {
	query := `SELECT key, value FROM state ORDER BY key`
	var args []any
	if prefix != "" {
		query = `SELECT key, value FROM state WHERE key >= ? ORDER BY key`
		args = []any{[]byte(prefix)}
		if end := prefixEnd([]byte(prefix)); end != nil {
			query = `SELECT key, value FROM state WHERE key >= ? AND key < ? ORDER BY key`
			args = append(args, end)
		}
	}
	rows, err := t.tx.QueryContext(t.ctx, query, args...)
	if err != nil {
		return fmt.Errorf("scan state: %w", err)
	}
	type kv struct {
		key   []byte
		value []byte
	}
	var items []kv
	for rows.Next() {
		var item kv
		if err := rows.Scan(&item.key, &item.value); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan state row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("scan state: %w", err)
	}
	_ = rows.Close()
	for _, item := range items {
		if err := fn(string(item.key), item.value); err != nil {
			return err
		}
	}
	return nil
}

func (t *txn) ExtendTTL(threshold, extendTo uint32) error {
	if t.readOnly {
		return sdk.ErrReadOnly
	}
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO ttl_extensions (id, threshold, extend_to, extensions, extended_at)
		 VALUES (1, ?, ?, 1, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   threshold = excluded.threshold,
		   extend_to = excluded.extend_to,
		   extensions = ttl_extensions.extensions + 1,
		   extended_at = excluded.extended_at`,
		threshold, extendTo, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("extend ttl: %w", err)
	}
	return nil
}

// prefixEnd is the smallest key greater than every key with prefix, nil
// when no such key exists (all 0xff).
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
