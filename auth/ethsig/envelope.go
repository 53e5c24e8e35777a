// Package ethsig authenticates calls with secp256k1 signatures, the same
// keys an EVM wallet holds.
package ethsig

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"dao_gov/sdk"
)

var (
	ErrNoEnvelope      = errors.New("ethsig: no signed envelope in context")
	ErrNotEVM          = errors.New("ethsig: signer is not an evm account")
	ErrBadSignature    = errors.New("ethsig: signature does not match signer")
	ErrStale           = errors.New("ethsig: envelope outside freshness window")
	ErrWrongOperation  = errors.New("ethsig: envelope signed for another operation")
	ErrSignerMismatch  = errors.New("ethsig: envelope signer is not the required account")
	ErrMalformedSigner = errors.New("ethsig: malformed signer")
)

// Envelope is one signed call. Args is opaque to the verifier, callers
// compare it with the arguments they are about to execute.
type Envelope struct {
	Signer    sdk.Address
	Op        string
	Args      string
	IssuedAt  uint64
	Signature []byte
}

// Digest is the EIP-191 personal message hash that gets signed, so a
// browser wallet can produce envelopes as well.
func (e Envelope) Digest() []byte {
	return accounts.TextHash([]byte(e.message()))
}

func (e Envelope) message() string {
	var b strings.Builder
	b.WriteString("dao_gov signed call\n")
	b.WriteString("signer:")
	b.WriteString(e.Signer.Canonical().String())
	b.WriteString("\nop:")
	b.WriteString(e.Op)
	b.WriteString("\nissued_at:")
	b.WriteString(strconv.FormatUint(e.IssuedAt, 10))
	b.WriteString("\nargs:")
	b.WriteString(e.Args)
	return b.String()
}

// Sign builds an envelope for op/args signed by key.
func Sign(key *ecdsa.PrivateKey, op, args string, issuedAt uint64) (Envelope, error) {
	env := Envelope{
		Signer:   sdk.Address(crypto.PubkeyToAddress(key.PublicKey).Hex()),
		Op:       op,
		Args:     args,
		IssuedAt: issuedAt,
	}
	sig, err := crypto.Sign(env.Digest(), key)
	if err != nil {
		return Envelope{}, fmt.Errorf("sign envelope: %w", err)
	}
	env.Signature = sig
	return env, nil
}

// Recover returns the account that produced the signature.
func (e Envelope) Recover() (common.Address, error) {
	if len(e.Signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: want %d signature bytes, got %d",
			ErrBadSignature, crypto.SignatureLength, len(e.Signature))
	}
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, e.Signature)
	// wallets hand out v as 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(e.Digest(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// EVMAddress extracts the 20 byte account from a 0x.. or did:pkh:eip155 address.
func EVMAddress(addr sdk.Address) (common.Address, error) {
	if addr.Type() != sdk.AddressTypeEVM {
		return common.Address{}, fmt.Errorf("%w: %s", ErrNotEVM, addr)
	}
	s := addr.String()
	if strings.HasPrefix(s, "did:pkh:eip155:") {
		s = s[strings.LastIndex(s, ":")+1:]
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrMalformedSigner, addr)
	}
	return common.HexToAddress(s), nil
}

// ParsePrivateKey reads a hex private key, with or without 0x.
func ParsePrivateKey(keyHex string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(keyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// KeyPair is a freshly generated signing key in hex form.
type KeyPair struct {
	Address    sdk.Address
	PublicKey  string
	PrivateKey string
}

// GenerateKey creates a new secp256k1 key.
func GenerateKey() (KeyPair, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate key: %w", err)
	}
	return KeyPair{
		Address:    sdk.Address(crypto.PubkeyToAddress(key.PublicKey).Hex()),
		PublicKey:  hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey)),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
	}, nil
}

type envelopeKey struct{}

// WithEnvelope returns a copy of ctx carrying env.
func WithEnvelope(ctx context.Context, env Envelope) context.Context {
	return context.WithValue(ctx, envelopeKey{}, env)
}

// EnvelopeFromContext returns the envelope stored in ctx, if any.
func EnvelopeFromContext(ctx context.Context) (Envelope, bool) {
	env, ok := ctx.Value(envelopeKey{}).(Envelope)
	return env, ok
}
