// Package cli is the dao_gov command tree. Every engine operation has a
// subcommand; keeper and watch run long lived.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"dao_gov/auth/ethsig"
	"dao_gov/config"
	"dao_gov/contract"
	"dao_gov/events/natsbus"
	"dao_gov/sdk"
	"dao_gov/store/badger"
	"dao_gov/store/bolt"
	"dao_gov/store/memory"
	"dao_gov/store/sqlite"
)

const appName = "dao_gov"

// LogSetup configures logging once the runtime config is known. May be nil.
type LogSetup func(cfg config.Runtime) error

type app struct {
	setup LogSetup
	cfg   config.Runtime

	// flag overrides
	store    string
	dataDir  string
	logLevel string
	auth     string
	natsURL  string
	sender   string
	envelope string

	state sdk.State
	nc    *nats.Conn
	eng   *contract.Engine
}

// NewRootCmd builds the command tree.
func NewRootCmd(setup LogSetup) *cobra.Command {
	cmd, _ := newRoot(setup)
	return cmd
}

func newRoot(setup LogSetup) (*cobra.Command, *app) {
	a := &app{setup: setup}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Membership weighted DAO governance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.store, "store", "", "state backend: memory, sqlite, bolt or badger (env DAOGOV_STORE)")
	f.StringVar(&a.dataDir, "data-dir", "", "directory holding state and logs (env DAOGOV_DATA_DIR)")
	f.StringVar(&a.logLevel, "log-level", "", "trace, debug, info, warn, error, critical (env DAOGOV_LOG_LEVEL)")
	f.StringVar(&a.auth, "auth", "", "env or ethsig (env DAOGOV_AUTH)")
	f.StringVar(&a.natsURL, "nats-url", "", "publish events to this NATS server (env DAOGOV_NATS_URL)")
	f.StringVar(&a.sender, "sender", "", "account the call is made as (env auth)")
	f.StringVar(&a.envelope, "envelope", "", "signed envelope json file (ethsig auth)")

	cmd.AddCommand(
		initCmd(a),
		memberCmd(a),
		proposalCmd(a),
		voteCmd(a),
		settingsCmd(a),
		adminCmd(a),
		keeperCmd(a),
		watchCmd(a),
		keyCmd(),
	)
	return cmd, a
}

// Execute runs the command tree against os.Args. The store is closed even
// when the command failed, cobra skips post-run hooks in that case.
func Execute(setup LogSetup) error {
	cmd, a := newRoot(setup)
	err := cmd.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) configure(cmd *cobra.Command) error {
	cfg, err := config.LoadRuntime()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store = strings.ToLower(a.store)
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("auth") {
		cfg.Auth = strings.ToLower(a.auth)
	}
	if flags.Changed("nats-url") {
		cfg.NATSURL = a.natsURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	if a.setup != nil {
		return a.setup(cfg)
	}
	return nil
}

func (a *app) openState() (sdk.State, error) {
	if err := os.MkdirAll(a.cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := a.cfg.StorePath()
	switch a.cfg.Store {
	case config.StoreMemory:
		return memory.Open(path)
	case config.StoreSQLite:
		return sqlite.Open(path)
	case config.StoreBadger:
		return badger.Open(path)
	default:
		return bolt.Open(filepath.Clean(path))
	}
}

// engine opens the store on first use. extra options are only honoured on
// that first call.
func (a *app) engine(extra ...contract.Option) (*contract.Engine, error) {
	if a.eng != nil {
		return a.eng, nil
	}
	state, err := a.openState()
	if err != nil {
		return nil, err
	}
	a.state = state

	opts := []contract.Option{contract.WithClock(sdk.SystemClock{})}
	if a.cfg.Auth == config.AuthEthSig {
		opts = append(opts, contract.WithAuthorizer(ethsig.NewVerifier(sdk.SystemClock{}, a.cfg.AuthWindow)))
	}
	if a.cfg.NATSURL != "" {
		nc, err := a.connect()
		if err != nil {
			return nil, err
		}
		opts = append(opts, contract.WithEventSink(natsbus.New(nc, a.cfg.NATSSubject)))
	}
	a.eng = contract.New(state, append(opts, extra...)...)
	return a.eng, nil
}

func (a *app) connect() (*nats.Conn, error) {
	if a.nc != nil {
		return a.nc, nil
	}
	if a.cfg.NATSURL == "" {
		return nil, fmt.Errorf("no NATS server configured (--nats-url or DAOGOV_NATS_URL)")
	}
	nc, err := natsbus.Connect(a.cfg.NATSURL, appName)
	if err != nil {
		return nil, err
	}
	a.nc = nc
	return nc, nil
}

func (a *app) close() error {
	if a.nc != nil {
		// flush so events published by this invocation are not lost on exit
		_ = a.nc.Flush()
		a.nc.Close()
		a.nc = nil
	}
	if a.state != nil {
		err := a.state.Close()
		a.state = nil
		a.eng = nil
		return err
	}
	return nil
}

// authCtx attaches the caller's credentials for op. With env auth the
// sender flag wins over fallback. With ethsig the envelope must be signed
// for exactly this op and these args.
func (a *app) authCtx(ctx context.Context, op string, args object, fallback sdk.Address) (context.Context, error) {
	if a.cfg.Auth == config.AuthEthSig {
		if a.envelope == "" {
			return nil, fmt.Errorf("--envelope is required with ethsig auth")
		}
		data, err := os.ReadFile(a.envelope)
		if err != nil {
			return nil, fmt.Errorf("read envelope: %w", err)
		}
		env, err := ethsig.UnmarshalEnvelope(data)
		if err != nil {
			return nil, fmt.Errorf("parse envelope: %w", err)
		}
		if env.Op != op {
			return nil, fmt.Errorf("envelope is for %q, not %q", env.Op, op)
		}
		if want := args.String(); env.Args != want {
			return nil, fmt.Errorf("envelope args %q do not match call args %q", env.Args, want)
		}
		return ethsig.WithEnvelope(ctx, env), nil
	}
	sender := sdk.Address(a.sender)
	if sender == "" {
		sender = fallback
	}
	if sender == "" {
		return nil, fmt.Errorf("--sender is required")
	}
	return sdk.AsSender(ctx, sender), nil
}

// adminFallback is the stored admin when no sender was given.
func (a *app) adminFallback(ctx context.Context, eng *contract.Engine) sdk.Address {
	if a.sender != "" {
		return sdk.Address(a.sender)
	}
	admin, err := eng.GetAdmin(ctx)
	if err != nil {
		return ""
	}
	return admin
}
