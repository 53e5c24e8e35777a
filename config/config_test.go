package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao_gov/contract"
	"dao_gov/sdk"
)

func TestLoadRuntimeDefaults(t *testing.T) {
	cfg, err := LoadRuntime()
	require.NoError(t, err)
	assert.Equal(t, StoreBolt, cfg.Store)
	assert.Equal(t, AuthEnv, cfg.Auth)
	assert.Equal(t, 30*time.Second, cfg.KeeperInterval)
	assert.Equal(t, filepath.Join("data", "dao.bolt"), cfg.StorePath())
	assert.Equal(t, filepath.Join("data", "logs", "dao_gov.log"), cfg.LogPath())
}

func TestLoadRuntimeFromEnv(t *testing.T) {
	t.Setenv("DAOGOV_STORE", "SQLite")
	t.Setenv("DAOGOV_DATA_DIR", "/var/lib/dao")
	t.Setenv("DAOGOV_KEEPER_INTERVAL", "5s")
	t.Setenv("DAOGOV_KEEPER_EXECUTE", "true")
	t.Setenv("DAOGOV_AUTH", "ethsig")
	t.Setenv("DAOGOV_LOG_FILE", "/tmp/dao.log")

	cfg, err := LoadRuntime()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/var/lib/dao/dao.db", cfg.StorePath())
	assert.Equal(t, 5*time.Second, cfg.KeeperInterval)
	assert.True(t, cfg.KeeperExecute)
	assert.Equal(t, AuthEthSig, cfg.Auth)
	assert.Equal(t, "/tmp/dao.log", cfg.LogPath())
}

func TestLoadRuntimeRejects(t *testing.T) {
	t.Setenv("DAOGOV_STORE", "postgres")
	_, err := LoadRuntime()
	assert.ErrorContains(t, err, "unknown store")

	t.Setenv("DAOGOV_STORE", "badger")
	t.Setenv("DAOGOV_KEEPER_INTERVAL", "soon")
	_, err = LoadRuntime()
	assert.ErrorContains(t, err, "parse env")
}

func TestStorePaths(t *testing.T) {
	cfg := Runtime{DataDir: "d"}
	for store, want := range map[string]string{
		StoreMemory: filepath.Join("d", "state.json"),
		StoreSQLite: filepath.Join("d", "dao.db"),
		StoreBolt:   filepath.Join("d", "dao.bolt"),
		StoreBadger: filepath.Join("d", "badger"),
	} {
		cfg.Store = store
		assert.Equal(t, want, cfg.StorePath(), store)
	}
}

func TestGenesisRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "genesis.yaml")
	g := DefaultGenesis("hive:admin")
	g.Members = []GenesisMember{{Address: "hive:alice", VotingPower: 60}, {Address: "hive:bob", VotingPower: 40}}
	require.NoError(t, g.SaveGenesis(path))

	loaded, err := LoadGenesis(path)
	require.NoError(t, err)
	assert.Equal(t, g, loaded)
}

func TestLoadGenesisFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
admin: hive:council
settings:
  proposal_threshold: 10
  quorum: 3000
  voting_period: 1000
  execution_delay: 500
members:
  - address: hive:alice
    voting_power: 25
`), 0o644))

	g, err := LoadGenesis(path)
	require.NoError(t, err)
	assert.Equal(t, sdk.Address("hive:council"), g.Admin)
	assert.Equal(t, uint64(3000), g.Settings.Quorum)
	assert.Equal(t, uint64(500), g.Settings.ExecutionDelay)
	require.Len(t, g.Members, 1)
	assert.Equal(t, uint64(25), g.Members[0].VotingPower)
}

func TestGenesisValidate(t *testing.T) {
	g := DefaultGenesis("")
	assert.ErrorContains(t, g.Validate(), "admin")

	g = DefaultGenesis("hive:admin")
	g.Settings.Quorum = 10001
	assert.ErrorContains(t, g.Validate(), "quorum")
	g.Settings.Quorum = 1<<32 + 3000
	assert.ErrorIs(t, g.Validate(), contract.ErrInvalidQuorum)

	g = DefaultGenesis("hive:admin")
	g.Members = []GenesisMember{
		{Address: "0x52908400098527886E0F7030069857D2E4169EE7", VotingPower: 1},
		{Address: "0x52908400098527886e0f7030069857d2e4169ee7", VotingPower: 1},
	}
	assert.ErrorContains(t, g.Validate(), "duplicate")

	g = DefaultGenesis("hive:admin")
	g.Members = []GenesisMember{{Address: "hive:a", VotingPower: ^uint64(0)}, {Address: "hive:b", VotingPower: 1}}
	assert.ErrorContains(t, g.Validate(), "overflows")

	_, err := LoadGenesis(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
