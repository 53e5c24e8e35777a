package sdk

import (
	"context"
	"slices"
)

// Env is the per-call environment the host hands to the engine.
type Env struct {
	Sender Sender `json:"msg.sender"`
}

type envKey struct{}

type opKey struct{}

// WithEnv returns a copy of ctx carrying env.
func WithEnv(ctx context.Context, env Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// EnvFromContext returns the env stored in ctx, if any.
func EnvFromContext(ctx context.Context) (Env, bool) {
	if ctx == nil {
		return Env{}, false
	}
	env, ok := ctx.Value(envKey{}).(Env)
	return env, ok
}

// WithOperation tags ctx with the name of the operation being executed, so
// authorizers can bind a signature to one op.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey{}, op)
}

// OperationFromContext returns the op set by WithOperation or "".
func OperationFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	op, _ := ctx.Value(opKey{}).(string)
	return op
}

// AsSender is a shortcut for a ctx whose sender signed for itself only.
// Example payload: sdk.AsSender(ctx, "hive:alice")
func AsSender(ctx context.Context, addr Address) context.Context {
	return WithEnv(ctx, Env{Sender: Sender{Address: addr, RequiredAuths: []Address{addr}}})
}

// EnvAuthorizer trusts the required auths the host already verified and
// put into the env, same as a contract reading msg.required_auths.
type EnvAuthorizer struct{}

func (EnvAuthorizer) RequireAuth(ctx context.Context, addr Address) error {
	env, ok := EnvFromContext(ctx)
	if !ok {
		return ErrMissingAuth
	}
	if slices.ContainsFunc(env.Sender.RequiredAuths, addr.Equal) {
		return nil
	}
	return ErrMissingAuth
}
