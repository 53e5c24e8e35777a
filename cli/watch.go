package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CosmWasm/tinyjson"
	"github.com/spf13/cobra"

	"dao_gov/contract"
	"dao_gov/events/natsbus"
)

func watchCmd(a *app) *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream governance events from NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			nc, err := a.connect()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			bus := natsbus.New(nc, a.cfg.NATSSubject)
			return bus.Watch(ctx, nc, func(ev contract.Event) {
				if compact {
					fmt.Fprintln(out, ev.String())
					return
				}
				data, err := tinyjson.Marshal(ev)
				if err != nil {
					return
				}
				fmt.Fprintln(out, string(data))
			})
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print one short pipe separated line per event")
	return cmd
}
