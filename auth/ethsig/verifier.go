package ethsig

import (
	"context"
	"fmt"
	"time"

	"dao_gov/sdk"
)

// DefaultWindow is how far issued_at may drift from the clock.
const DefaultWindow = 5 * time.Minute

// Verifier is an sdk.Authorizer that accepts a call when the context
// carries an envelope signed by the required account, for the running
// operation, issued within the freshness window.
type Verifier struct {
	clock  sdk.Clock
	window uint64
}

var _ sdk.Authorizer = (*Verifier)(nil)

// NewVerifier builds a verifier. A zero window means DefaultWindow.
func NewVerifier(clock sdk.Clock, window time.Duration) *Verifier {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Verifier{clock: clock, window: uint64(window / time.Second)}
}

// Verify checks the signature and freshness of env on its own.
func (v *Verifier) Verify(env Envelope) error {
	want, err := EVMAddress(env.Signer)
	if err != nil {
		return err
	}
	now := v.clock.Timestamp()
	if env.IssuedAt > now+v.window || now > env.IssuedAt+v.window {
		return fmt.Errorf("%w: issued_at %d, now %d", ErrStale, env.IssuedAt, now)
	}
	got, err := env.Recover()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: recovered %s", ErrBadSignature, got.Hex())
	}
	return nil
}

func (v *Verifier) RequireAuth(ctx context.Context, addr sdk.Address) error {
	env, ok := EnvelopeFromContext(ctx)
	if !ok {
		return ErrNoEnvelope
	}
	if op := sdk.OperationFromContext(ctx); op != "" && op != env.Op {
		return fmt.Errorf("%w: signed %q, running %q", ErrWrongOperation, env.Op, op)
	}
	if err := v.Verify(env); err != nil {
		log.Debugf("rejected envelope from %s: %v", env.Signer, err)
		return err
	}
	want, err := EVMAddress(addr)
	if err != nil {
		return err
	}
	signer, _ := EVMAddress(env.Signer)
	if signer != want {
		return fmt.Errorf("%w: %s", ErrSignerMismatch, addr)
	}
	return nil
}
