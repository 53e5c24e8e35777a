package cli

import (
	"github.com/spf13/cobra"

	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

func proposalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proposal",
		Aliases: []string{"p"},
		Short:   "Create, vote on and settle proposals",
	}

	var title, description, proposer string
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a new proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			by := sdk.Address(proposer)
			if by == "" {
				by = sdk.Address(a.sender)
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			call := object{}.addr("proposer", by).str("title", title).str("description", description)
			ctx, err := a.authCtx(cmd.Context(), "create_proposal", call, by)
			if err != nil {
				return err
			}
			id, err := eng.CreateProposal(ctx, by, title, description)
			if err != nil {
				return err
			}
			p, err := eng.GetProposal(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
	create.Flags().StringVar(&title, "title", "", "proposal title")
	create.Flags().StringVar(&description, "description", "", "proposal description")
	create.Flags().StringVar(&proposer, "proposer", "", "proposing member (defaults to --sender)")
	cmd.AddCommand(create)

	var voter string
	vote := &cobra.Command{
		Use:   "vote ID for|against|abstain",
		Short: "Cast a vote weighted by the voter's power",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			choice, err := dao.ParseVoteChoice(args[1])
			if err != nil {
				return err
			}
			by := sdk.Address(voter)
			if by == "" {
				by = sdk.Address(a.sender)
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			call := object{}.addr("voter", by).u64("proposal_id", id).str("vote", choice.String())
			ctx, err := a.authCtx(cmd.Context(), "cast_vote", call, by)
			if err != nil {
				return err
			}
			if err := eng.CastVote(ctx, by, id, choice); err != nil {
				return err
			}
			p, err := eng.GetProposal(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
	vote.Flags().StringVar(&voter, "voter", "", "voting member (defaults to --sender)")
	cmd.AddCommand(vote)

	cmd.AddCommand(&cobra.Command{
		Use:   "finalize ID",
		Short: "Close voting on a proposal whose period ended (anyone)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			status, err := eng.FinalizeProposal(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, object{}.u64("id", id).str("status", status.String()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "execute ID",
		Short: "Mark a passed proposal executed once its delay is over (anyone)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			if err := eng.ExecuteProposal(cmd.Context(), id); err != nil {
				return err
			}
			p, err := eng.GetProposal(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get ID",
		Short: "Show a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			p, err := eng.GetProposal(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	})

	var from uint64
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List proposals by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			ps, err := eng.ListProposals(cmd.Context(), from, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, ps)
		},
	}
	list.Flags().Uint64Var(&from, "from", 1, "first proposal id")
	list.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.AddCommand(list)
	return cmd
}
