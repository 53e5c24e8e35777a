package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dao_gov/contract"
	"dao_gov/keeper"
	"dao_gov/metrics"
)

func keeperCmd(a *app) *cobra.Command {
	var (
		once        bool
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "keeper",
		Short: "Finalize (and optionally execute) due proposals in a loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			collector := metrics.New()
			eng, err := a.engine(contract.WithObserver(collector.ObserveOp))
			if err != nil {
				return err
			}
			k := keeper.New(eng,
				keeper.WithInterval(a.cfg.KeeperInterval),
				keeper.WithExecute(a.cfg.KeeperExecute),
				keeper.WithObserver(collector),
			)
			if once {
				r, err := k.Tick(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, object{}.
					u64("scanned", uint64(r.Scanned)).
					u64("passed", uint64(r.Passed)).
					u64("failed", uint64(r.Failed)).
					u64("executed", uint64(r.Executed)).
					u64("errors", uint64(r.Errors)).
					u64("next_start", r.NextStart))
			}

			if cmd.Flags().Changed("metrics-addr") {
				a.cfg.MetricsAddr = metricsAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var srv *http.Server
			if a.cfg.MetricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", collector.Handler())
				srv = &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						fmt.Fprintf(cmd.ErrOrStderr(), "metrics server: %v\n", err)
						stop()
					}
				}()
			}

			err = k.Run(ctx)
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and print its report")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics here, empty disables (env DAOGOV_METRICS_ADDR)")
	return cmd
}
