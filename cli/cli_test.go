package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao_gov/auth/ethsig"
	"dao_gov/contract"
	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// run executes one invocation against the json backed memory store in dir,
// so state carries over between calls like it would for a user.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd, a := newRoot(nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--store", "memory", "--data-dir", dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, a.close())
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func TestGovernanceFlow(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "init", "--admin", "hive:admin", "--threshold", "1", "--quorum", "5000", "--period", "1000", "--delay", "10")
	assert.Contains(t, out, `"quorum":5000`)
	assert.Contains(t, out, `"voting_period":1000`)

	// no --sender: admin commands act as the stored admin
	out = mustRun(t, dir, "member", "add", "hive:alice", "60")
	assert.Contains(t, out, `"voting_power":60`)
	assert.Contains(t, out, `"is_active":true`)

	_, err := run(t, dir, "member", "add", "hive:bob", "40", "--sender", "hive:bob")
	assert.ErrorIs(t, err, contract.ErrUnauthorized)

	out = mustRun(t, dir, "proposal", "create", "--title", "fund the docs", "--description", "pay for docs", "--sender", "hive:alice")
	assert.Contains(t, out, `"id":1`)
	assert.Contains(t, out, `"status":"active"`)

	out = mustRun(t, dir, "proposal", "vote", "1", "yes", "--sender", "hive:alice")
	assert.Contains(t, out, `"for_votes":60`)

	out = mustRun(t, dir, "vote", "get", "1", "hive:alice")
	assert.Contains(t, out, `"voted":true`)
	assert.Contains(t, out, `"vote":"for"`)

	out = mustRun(t, dir, "vote", "get", "1", "hive:bob")
	assert.Contains(t, out, `"voted":false`)

	out = mustRun(t, dir, "vote", "list", "1")
	assert.Contains(t, out, `"voter":"hive:alice"`)

	_, err = run(t, dir, "proposal", "finalize", "1")
	assert.ErrorIs(t, err, contract.ErrVotingPeriodNotEnded)

	out = mustRun(t, dir, "settings", "update", "--quorum", "6000")
	assert.Contains(t, out, `"quorum":6000`)
	assert.Contains(t, out, `"proposal_threshold":1`)
	assert.Contains(t, out, `"total_voting_power":60`)

	out = mustRun(t, dir, "proposal", "list")
	assert.Contains(t, out, `"title":"fund the docs"`)

	out = mustRun(t, dir, "member", "list")
	assert.Contains(t, out, `"address":"hive:alice"`)

	mustRun(t, dir, "admin", "transfer", "hive:carol")
	out = mustRun(t, dir, "admin", "get")
	assert.Contains(t, out, `"admin":"hive:carol"`)

	_, err = run(t, dir, "member", "deactivate", "hive:alice", "--sender", "hive:admin")
	assert.ErrorIs(t, err, contract.ErrUnauthorized)
	out = mustRun(t, dir, "member", "deactivate", "hive:alice")
	assert.Contains(t, out, `"is_active":false`)
}

func TestInitFromGenesis(t *testing.T) {
	dir := t.TempDir()
	genesis := filepath.Join(dir, "genesis.yaml")
	require.NoError(t, os.WriteFile(genesis, []byte(`
admin: hive:council
settings:
  proposal_threshold: 5
  quorum: 2500
  voting_period: 600
  execution_delay: 60
members:
  - address: hive:alice
    voting_power: 10
  - address: hive:bob
    voting_power: 20
`), 0o644))

	out := mustRun(t, dir, "init", "--genesis", genesis, "--quorum", "3000")
	assert.Contains(t, out, `"quorum":3000`)
	assert.Contains(t, out, `"member_count":2`)
	assert.Contains(t, out, `"total_voting_power":30`)

	_, err := run(t, dir, "init", "--genesis", genesis)
	assert.ErrorIs(t, err, contract.ErrAlreadyInitialized)
}

func TestQuorumOutOfRange(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "init", "--admin", "hive:admin", "--quorum", "4294970296")
	assert.ErrorIs(t, err, contract.ErrInvalidQuorum)

	mustRun(t, dir, "init", "--admin", "hive:admin")
	_, err = run(t, dir, "settings", "update", "--quorum", "4294970296")
	assert.ErrorIs(t, err, contract.ErrInvalidQuorum)
}

func TestCommandsBeforeInit(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "settings", "get")
	assert.ErrorIs(t, err, contract.ErrNotInitialized)

	_, err = run(t, dir, "proposal", "get", "abc")
	assert.ErrorContains(t, err, "invalid proposal id")

	_, err = run(t, dir, "proposal", "vote", "1", "maybe", "--sender", "hive:alice")
	assert.Error(t, err)
}

func TestKeeperOnce(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init", "--admin", "hive:admin", "--period", "1000")
	out := mustRun(t, dir, "keeper", "--once")
	assert.Contains(t, out, `"scanned":0`)
	assert.Contains(t, out, `"next_start":1`)
}

func TestEthSigAuth(t *testing.T) {
	dir := t.TempDir()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	admin := sdk.Address(crypto.PubkeyToAddress(key.PublicKey).Hex())
	params := dao.SettingsParams{ProposalThreshold: 1, Quorum: 5000, VotingPeriod: 100, ExecutionDelay: 0}

	args := settingsArgs(object{}.addr("admin", admin), params).String()
	env, err := ethsig.Sign(key, "initialize", args, uint64(time.Now().Unix()))
	require.NoError(t, err)
	data, err := ethsig.MarshalEnvelope(env)
	require.NoError(t, err)
	envPath := filepath.Join(dir, "init.json")
	require.NoError(t, os.WriteFile(envPath, data, 0o600))

	base := []string{"--auth", "ethsig", "--envelope", envPath}
	_, err = run(t, dir, append(base, "init", "--admin", admin.String(), "--threshold", "1", "--quorum", "5000", "--period", "100", "--delay", "0")...)
	require.NoError(t, err)

	// the same envelope cannot be replayed for another op
	_, err = run(t, dir, append(base, "member", "add", "hive:alice", "10")...)
	assert.ErrorContains(t, err, `envelope is for "initialize"`)

	// or for other arguments
	_, err = run(t, dir, append(base, "init", "--admin", admin.String(), "--quorum", "9000")...)
	assert.ErrorContains(t, err, "do not match call args")

	_, err = run(t, dir, "--auth", "ethsig", "member", "add", "hive:alice", "10")
	assert.ErrorContains(t, err, "--envelope is required")
}

func TestKeyCommands(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, dir, "key", "new")
	assert.Contains(t, out, `"private_key":"0x`)

	kp, err := ethsig.GenerateKey()
	require.NoError(t, err)
	envPath := filepath.Join(dir, "env.json")
	mustRun(t, dir, "key", "sign", "--key", kp.PrivateKey, "--op", "cast_vote", "--args", `{"x":1}`, "--issued-at", "42", "-o", envPath)

	data, err := os.ReadFile(envPath)
	require.NoError(t, err)
	env, err := ethsig.UnmarshalEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, "cast_vote", env.Op)
	assert.Equal(t, uint64(42), env.IssuedAt)
	got, err := env.Recover()
	require.NoError(t, err)
	assert.Equal(t, kp.Address.String(), got.Hex())
}

func TestObjectString(t *testing.T) {
	o := object{}.addr("member", "0xABCDEF0123456789ABCDEF0123456789ABCDEF01").u64("voting_power", 7).boolean("ok", true).str("s", `a"b`)
	assert.Equal(t, `{"member":"0xabcdef0123456789abcdef0123456789abcdef01","voting_power":7,"ok":true,"s":"a\"b"}`, o.String())
}
