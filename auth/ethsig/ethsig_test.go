package ethsig

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao_gov/sdk"
)

const now = 1_700_000_000

func signed(t *testing.T, op string, issuedAt uint64) (Envelope, sdk.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	env, err := Sign(key, op, `{"proposal_id":1,"vote":"for"}`, issuedAt)
	require.NoError(t, err)
	return env, env.Signer
}

func TestSignAndVerify(t *testing.T) {
	v := NewVerifier(sdk.NewManualClock(now), time.Minute)
	env, signer := signed(t, "cast_vote", now)

	ctx := sdk.WithOperation(WithEnvelope(context.Background(), env), "cast_vote")
	require.NoError(t, v.RequireAuth(ctx, signer))
	// checksum and lower case spellings are the same account
	require.NoError(t, v.RequireAuth(ctx, sdk.Address(strings.ToLower(signer.String()))))
	require.NoError(t, v.RequireAuth(ctx, sdk.Address("did:pkh:eip155:1:"+signer.String())))
}

func TestRejectsWrongAccount(t *testing.T) {
	v := NewVerifier(sdk.NewManualClock(now), time.Minute)
	env, _ := signed(t, "cast_vote", now)
	_, other := signed(t, "cast_vote", now)
	ctx := WithEnvelope(context.Background(), env)

	assert.ErrorIs(t, v.RequireAuth(ctx, other), ErrSignerMismatch)
	assert.ErrorIs(t, v.RequireAuth(ctx, "hive:alice"), ErrNotEVM)
}

func TestRejectsTampering(t *testing.T) {
	v := NewVerifier(sdk.NewManualClock(now), time.Minute)
	env, signer := signed(t, "cast_vote", now)

	forged := env
	forged.Args = `{"proposal_id":1,"vote":"against"}`
	assert.ErrorIs(t, v.RequireAuth(WithEnvelope(context.Background(), forged), signer), ErrBadSignature)

	short := env
	short.Signature = env.Signature[:10]
	assert.ErrorIs(t, v.Verify(short), ErrBadSignature)
}

func TestWalletStyleRecoveryID(t *testing.T) {
	v := NewVerifier(sdk.NewManualClock(now), time.Minute)
	env, _ := signed(t, "add_member", now)
	env.Signature[crypto.RecoveryIDOffset] += 27
	assert.NoError(t, v.Verify(env))
}

func TestFreshnessWindow(t *testing.T) {
	clock := sdk.NewManualClock(now)
	v := NewVerifier(clock, time.Minute)

	env, _ := signed(t, "cast_vote", now)
	clock.Advance(60)
	assert.NoError(t, v.Verify(env))
	clock.Advance(1)
	assert.ErrorIs(t, v.Verify(env), ErrStale)

	future, _ := signed(t, "cast_vote", clock.Timestamp()+61)
	assert.ErrorIs(t, v.Verify(future), ErrStale)
}

func TestOperationBinding(t *testing.T) {
	v := NewVerifier(sdk.NewManualClock(now), 0)
	env, signer := signed(t, "cast_vote", now)
	ctx := sdk.WithOperation(WithEnvelope(context.Background(), env), "transfer_admin")
	assert.ErrorIs(t, v.RequireAuth(ctx, signer), ErrWrongOperation)
	assert.ErrorIs(t, v.RequireAuth(context.Background(), signer), ErrNoEnvelope)
}

func TestEnvelopeJSON(t *testing.T) {
	env, _ := signed(t, "cast_vote", now)
	data, err := MarshalEnvelope(env)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"op":"cast_vote"`)

	back, err := UnmarshalEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, env, back)

	_, err = UnmarshalEnvelope([]byte(`{"signature":"zz"}`))
	assert.Error(t, err)
}

func TestGenerateAndParseKey(t *testing.T) {
	kp, err := GenerateKey()
	require.NoError(t, err)
	assert.Equal(t, sdk.AddressTypeEVM, kp.Address.Type())

	key, err := ParsePrivateKey(kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, kp.Address.String(), crypto.PubkeyToAddress(key.PublicKey).Hex())

	_, err = ParsePrivateKey("nothex")
	assert.Error(t, err)
}
