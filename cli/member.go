package cli

import (
	"github.com/spf13/cobra"

	"dao_gov/sdk"
)

func memberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage and inspect members",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add ADDRESS VOTING_POWER",
		Short: "Add a member (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			member := sdk.Address(args[0])
			power, err := parsePower(args[1])
			if err != nil {
				return err
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			call := object{}.addr("member", member).u64("voting_power", power)
			ctx, err := a.authCtx(cmd.Context(), "add_member", call, a.adminFallback(cmd.Context(), eng))
			if err != nil {
				return err
			}
			if err := eng.AddMember(ctx, member, power); err != nil {
				return err
			}
			m, err := eng.GetMember(cmd.Context(), member)
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-power ADDRESS VOTING_POWER",
		Short: "Change an active member's voting power (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			member := sdk.Address(args[0])
			power, err := parsePower(args[1])
			if err != nil {
				return err
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			call := object{}.addr("member", member).u64("voting_power", power)
			ctx, err := a.authCtx(cmd.Context(), "update_voting_power", call, a.adminFallback(cmd.Context(), eng))
			if err != nil {
				return err
			}
			if err := eng.UpdateVotingPower(ctx, member, power); err != nil {
				return err
			}
			m, err := eng.GetMember(cmd.Context(), member)
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "deactivate ADDRESS",
		Short: "Deactivate a member (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			member := sdk.Address(args[0])
			eng, err := a.engine()
			if err != nil {
				return err
			}
			call := object{}.addr("member", member)
			ctx, err := a.authCtx(cmd.Context(), "deactivate_member", call, a.adminFallback(cmd.Context(), eng))
			if err != nil {
				return err
			}
			if err := eng.DeactivateMember(ctx, member); err != nil {
				return err
			}
			m, err := eng.GetMember(cmd.Context(), member)
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get ADDRESS",
		Short: "Show a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			m, err := eng.GetMember(cmd.Context(), sdk.Address(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every member ever added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			members, err := eng.ListMembers(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, members)
		},
	})
	return cmd
}
