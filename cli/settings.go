package cli

import (
	"github.com/spf13/cobra"

	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

func settingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change governance parameters",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show settings and aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			s, err := eng.GetDaoSettings(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, s)
		},
	})

	var flagged dao.SettingsParams
	update := &cobra.Command{
		Use:   "update",
		Short: "Change parameters (admin), unset flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			current, err := eng.GetDaoSettings(cmd.Context())
			if err != nil {
				return err
			}
			params := current.Params()
			overrideParams(cmd, &params, flagged)
			ctx, err := a.authCtx(cmd.Context(), "update_dao_settings", settingsArgs(object{}, params), a.adminFallback(cmd.Context(), eng))
			if err != nil {
				return err
			}
			if err := eng.UpdateDaoSettings(ctx, params); err != nil {
				return err
			}
			s, err := eng.GetDaoSettings(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, s)
		},
	}
	paramFlags(update, &flagged)
	cmd.AddCommand(update)
	return cmd
}

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Show or hand over the admin role",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the current admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			admin, err := eng.GetAdmin(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, object{}.addr("admin", admin))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "transfer NEW_ADMIN",
		Short: "Hand the admin role to another account (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			next := sdk.Address(args[0])
			eng, err := a.engine()
			if err != nil {
				return err
			}
			ctx, err := a.authCtx(cmd.Context(), "transfer_admin", object{}.addr("new_admin", next), a.adminFallback(cmd.Context(), eng))
			if err != nil {
				return err
			}
			if err := eng.TransferAdmin(ctx, next); err != nil {
				return err
			}
			return printJSON(cmd, object{}.addr("admin", next))
		},
	})
	return cmd
}
