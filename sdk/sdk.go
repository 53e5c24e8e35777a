// Package sdk describes the host the governance engine runs against: the
// keyed store, the identity check and the ledger clock. The engine only
// ever talks to these interfaces so the same code runs on every backend.
package sdk

import (
	"context"
	"errors"
)

var (
	// ErrReadOnly is returned by Tx.Set inside a View transaction.
	ErrReadOnly = errors.New("sdk: write in read-only transaction")
	// ErrMissingAuth is returned by an Authorizer when the caller does not
	// hold authority over the claimed address.
	ErrMissingAuth = errors.New("sdk: missing required auth")
)

// State is the persistent keyed store. Update runs fn inside one backend
// transaction and commits only if fn returns nil; View runs fn read-only.
// Implementations may call fn more than once when they retry on conflict.
type State interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx is one store transaction. Keys are binary strings built by the
// contract key helpers.
type Tx interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	Has(key string) (bool, error)
	Set(key string, value []byte) error
	// ForEach walks every key starting with prefix in key order.
	ForEach(prefix string, fn func(key string, value []byte) error) error
	// ExtendTTL re-asserts the data lifetime. Backends without expiry
	// record the request so operators can see the last extension.
	ExtendTTL(threshold, extendTo uint32) error
}

// Authorizer proves that the caller in ctx controls addr.
type Authorizer interface {
	RequireAuth(ctx context.Context, addr Address) error
}

// AuthorizerFunc adapts a plain function to Authorizer.
type AuthorizerFunc func(ctx context.Context, addr Address) error

func (f AuthorizerFunc) RequireAuth(ctx context.Context, addr Address) error {
	return f(ctx, addr)
}
