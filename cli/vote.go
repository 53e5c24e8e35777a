package cli

import (
	"github.com/spf13/cobra"

	"dao_gov/sdk"
)

func voteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Inspect recorded votes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get PROPOSAL_ID ADDRESS",
		Short: "Show how an account voted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			voter := sdk.Address(args[1])
			choice, ok, err := eng.GetVote(cmd.Context(), id, voter)
			if err != nil {
				return err
			}
			out := object{}.u64("proposal_id", id).addr("voter", voter).boolean("voted", ok)
			if ok {
				out = out.str("vote", choice.String())
			}
			return printJSON(cmd, out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list PROPOSAL_ID",
		Short: "List every vote on a proposal",
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
			votes, err := eng.ListVotes(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, votes)
		},
	})
	return cmd
}
