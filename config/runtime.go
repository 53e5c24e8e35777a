// Package config loads the daemon settings from the environment and the
// DAO genesis from YAML.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
	StoreBadger = "badger"
)

// Authorizers.
const (
	AuthEnv    = "env"
	AuthEthSig = "ethsig"
)

// Runtime controls where state lives and what runs next to the engine.
type Runtime struct {
	Store          string        `env:"DAOGOV_STORE"           envDefault:"bolt"`
	DataDir        string        `env:"DAOGOV_DATA_DIR"        envDefault:"data"`
	LogLevel       string        `env:"DAOGOV_LOG_LEVEL"       envDefault:"info"`
	LogFile        string        `env:"DAOGOV_LOG_FILE"`
	Genesis        string        `env:"DAOGOV_GENESIS"`
	NATSURL        string        `env:"DAOGOV_NATS_URL"`
	NATSSubject    string        `env:"DAOGOV_NATS_SUBJECT"    envDefault:"dao.events"`
	MetricsAddr    string        `env:"DAOGOV_METRICS_ADDR"    envDefault:":9464"`
	KeeperInterval time.Duration `env:"DAOGOV_KEEPER_INTERVAL" envDefault:"30s"`
	KeeperExecute  bool          `env:"DAOGOV_KEEPER_EXECUTE"`
	Auth           string        `env:"DAOGOV_AUTH"            envDefault:"env"`
	AuthWindow     time.Duration `env:"DAOGOV_AUTH_WINDOW"     envDefault:"5m"`
}

// LoadRuntime parses the environment and validates the result.
func LoadRuntime() (Runtime, error) {
	var cfg Runtime
	if err := env.Parse(&cfg); err != nil {
		return Runtime{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.Auth = strings.ToLower(strings.TrimSpace(cfg.Auth))
	if err := cfg.Validate(); err != nil {
		return Runtime{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Runtime) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StoreBolt, StoreBadger:
	default:
		return fmt.Errorf("unknown store %q (want memory, sqlite, bolt or badger)", c.Store)
	}
	switch c.Auth {
	case AuthEnv, AuthEthSig:
	default:
		return fmt.Errorf("unknown auth %q (want env or ethsig)", c.Auth)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.KeeperInterval <= 0 {
		return fmt.Errorf("keeper interval must be positive")
	}
	if c.AuthWindow <= 0 {
		return fmt.Errorf("auth window must be positive")
	}
	return nil
}

// StorePath is the file (or directory, for badger) the backend opens.
// The memory store snapshots to a json file so the CLI keeps state
// between invocations.
func (c Runtime) StorePath() string {
	switch c.Store {
	case StoreMemory:
		return filepath.Join(c.DataDir, "state.json")
	case StoreSQLite:
		return filepath.Join(c.DataDir, "dao.db")
	case StoreBadger:
		return filepath.Join(c.DataDir, "badger")
	default:
		return filepath.Join(c.DataDir, "dao.bolt")
	}
}

// LogPath is where the rotating log file goes.
func (c Runtime) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "logs", "dao_gov.log")
}
