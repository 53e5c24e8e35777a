// Package contract is the governance engine: membership, proposals, votes
// and the settings singleton, all kept in an sdk.State.
package contract

import (
	"context"
	"errors"
	"sync"

	"dao_gov/sdk"
)

// Engine runs every governance operation as one atomic call against the
// store. It keeps no records in memory between calls.
type Engine struct {
	state   sdk.State
	auth    sdk.Authorizer
	clock   sdk.Clock
	sink    EventSink
	observe func(op string, err error)

	ttlThreshold uint32
	ttlExtendTo  uint32

	// mu serializes mutating calls. Every one of them touches DaoSettings
	// or the proposal it works on, so there is little to gain from finer locks.
	mu sync.Mutex
}

type Option func(*Engine)

// WithAuthorizer swaps the identity check. Default is sdk.EnvAuthorizer.
func WithAuthorizer(a sdk.Authorizer) Option {
	return func(e *Engine) { e.auth = a }
}

// WithClock swaps the ledger clock. Default is sdk.SystemClock.
func WithClock(c sdk.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithEventSink registers where committed events go besides the log.
func WithEventSink(s EventSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithObserver is called once per finished operation, err is nil on success.
func WithObserver(fn func(op string, err error)) Option {
	return func(e *Engine) { e.observe = fn }
}

// WithTTL overrides the lifetime extension thresholds.
func WithTTL(threshold, extendTo uint32) Option {
	return func(e *Engine) {
		e.ttlThreshold = threshold
		e.ttlExtendTo = extendTo
	}
}

func New(state sdk.State, opts ...Option) *Engine {
	e := &Engine{
		state:        state,
		auth:         sdk.EnvAuthorizer{},
		clock:        sdk.SystemClock{},
		ttlThreshold: TTLThreshold,
		ttlExtendTo:  TTLExtendTo,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now is the engine's view of the ledger clock.
func (e *Engine) Now() uint64 {
	return e.clock.Timestamp()
}

// update runs fn with a fresh staging context inside one store
// transaction. Staged writes hit the store only after fn succeeded, then
// the lifetime extension is re-asserted. Events go out after commit.
func (e *Engine) update(ctx context.Context, op string, fn func(c *callCtx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = sdk.WithOperation(ctx, op)
	now := e.clock.Timestamp()
	var events []Event
	err := e.state.Update(ctx, func(tx sdk.Tx) error {
		c := newCallCtx(ctx, tx, now)
		if err := fn(c); err != nil {
			return err
		}
		if err := c.flush(); err != nil {
			return err
		}
		if err := tx.ExtendTTL(e.ttlThreshold, e.ttlExtendTo); err != nil {
			return Wrap(CodeStorage, "extend ttl", err)
		}
		events = c.events
		return nil
	})
	err = asEngineError(err)
	if e.observe != nil {
		e.observe(op, err)
	}
	if err != nil {
		log.Debugf("%s rejected: %v", op, err)
		return err
	}
	for _, ev := range events {
		e.publish(ctx, now, ev)
	}
	return nil
}

// view runs fn read-only. Queries never extend TTL and never authenticate.
func (e *Engine) view(ctx context.Context, fn func(c *callCtx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := e.state.View(ctx, func(tx sdk.Tx) error {
		return fn(newCallCtx(ctx, tx, e.clock.Timestamp()))
	})
	return asEngineError(err)
}

// requireAuth fails the whole call if the caller does not control addr.
func (e *Engine) requireAuth(c *callCtx, addr sdk.Address) error {
	if err := e.auth.RequireAuth(c.ctx, addr); err != nil {
		return Wrap(CodeUnauthorized, "unauthorized", err).With("address", addr.String())
	}
	return nil
}

// asEngineError keeps taxonomy errors and context errors as they are and
// tags everything else coming out of a store as a storage failure.
func asEngineError(err error) error {
	if err == nil {
		return nil
	}
	var ee *Error
	if errors.As(err, &ee) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Wrap(CodeStorage, "state", err)
}
