package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/attachehq/attache/config"
	"github.com/attachehq/attache/scheduler"
	"github.com/attachehq/attache/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, logger, err := wireApp(ctx, cfg)
			if err != nil {
				return err
			}

			srv := server.New(app.Orchestrator(), app.Memory(), app.Tools(), func(o *server.Options) {
				o.Addr = cfg.Server.Addr
				o.Model = app.Model()
				o.MaxModelCalls = cfg.Model.MaxCallsPerTurn
				o.Logger = logger
			})

			if cfg.Scheduler.Enabled {
				janitor := scheduler.NewJanitor(app.Memory(), func(o *scheduler.Options) {
					o.Schedule = cfg.Scheduler.Schedule
					o.IdleAfter = cfg.Scheduler.IdleAfter
					o.Logger = logger
				})
				if err := janitor.Start(); err != nil {
					return err
				}
				defer janitor.Stop()
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Listen() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the config file)")

	return cmd
}
