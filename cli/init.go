package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dao_gov/config"
	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

func settingsArgs(o object, p dao.SettingsParams) object {
	return o.u64("proposal_threshold", p.ProposalThreshold).
		u64("quorum", p.Quorum).
		u64("voting_period", p.VotingPeriod).
		u64("execution_delay", p.ExecutionDelay)
}

// paramFlags binds the four settings flags onto p.
func paramFlags(cmd *cobra.Command, p *dao.SettingsParams) {
	cmd.Flags().Uint64Var(&p.ProposalThreshold, "threshold", p.ProposalThreshold, "minimum voting power to create a proposal")
	cmd.Flags().Uint64Var(&p.Quorum, "quorum", p.Quorum, "quorum in basis points (0-10000)")
	cmd.Flags().Uint64Var(&p.VotingPeriod, "period", p.VotingPeriod, "voting period in seconds")
	cmd.Flags().Uint64Var(&p.ExecutionDelay, "delay", p.ExecutionDelay, "execution delay in seconds after voting ends")
}

// overrideParams copies every flag the user set from flagged into p.
func overrideParams(cmd *cobra.Command, p *dao.SettingsParams, flagged dao.SettingsParams) {
	f := cmd.Flags()
	if f.Changed("threshold") {
		p.ProposalThreshold = flagged.ProposalThreshold
	}
	if f.Changed("quorum") {
		p.Quorum = flagged.Quorum
	}
	if f.Changed("period") {
		p.VotingPeriod = flagged.VotingPeriod
	}
	if f.Changed("delay") {
		p.ExecutionDelay = flagged.ExecutionDelay
	}
}

func initCmd(a *app) *cobra.Command {
	var (
		admin       string
		genesisPath string
		writePath   string
		flagged     = config.DefaultGenesis("").Settings
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the DAO from flags or a genesis file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if genesisPath == "" {
				genesisPath = a.cfg.Genesis
			}
			var g *config.Genesis
			if genesisPath != "" {
				var err error
				if g, err = config.LoadGenesis(genesisPath); err != nil {
					return err
				}
			} else {
				g = config.DefaultGenesis("")
			}
			if admin != "" {
				g.Admin = sdk.Address(admin)
			}
			overrideParams(cmd, &g.Settings, flagged)
			if err := g.Validate(); err != nil {
				return err
			}
			if a.cfg.Auth == config.AuthEthSig && len(g.Members) > 0 {
				return fmt.Errorf("genesis members need env auth, add them with member add")
			}
			if writePath != "" {
				if err := g.SaveGenesis(writePath); err != nil {
					return err
				}
			}

			eng, err := a.engine()
			if err != nil {
				return err
			}
			args := settingsArgs(object{}.addr("admin", g.Admin), g.Settings)
			ctx, err := a.authCtx(cmd.Context(), "initialize", args, g.Admin)
			if err != nil {
				return err
			}
			if err := eng.Initialize(ctx, g.Admin, g.Settings); err != nil {
				return err
			}
			for _, m := range g.Members {
				args := object{}.addr("member", m.Address).u64("voting_power", m.VotingPower)
				mctx, err := a.authCtx(cmd.Context(), "add_member", args, g.Admin)
				if err != nil {
					return err
				}
				if err := eng.AddMember(mctx, m.Address, m.VotingPower); err != nil {
					return fmt.Errorf("genesis member %s: %w", m.Address, err)
				}
			}
			settings, err := eng.GetDaoSettings(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, settings)
		},
	}
	cmd.Flags().StringVar(&admin, "admin", "", "admin account (overrides the genesis file)")
	cmd.Flags().StringVar(&genesisPath, "genesis", "", "genesis yaml file (env DAOGOV_GENESIS)")
	cmd.Flags().StringVar(&writePath, "write-genesis", "", "also save the effective genesis to this file")
	paramFlags(cmd, &flagged)
	return cmd
}
