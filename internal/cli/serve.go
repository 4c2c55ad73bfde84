package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arcsys-ai/arcsys/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP API",
	Long: `Start the HTTP server exposing POST /api/v1/analyze, run history under
/api/v1/runs, a health check at /healthz, and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server.Version = version
		srv := server.New(server.Params{
			Runner:          a.pipeline,
			Store:           a.store,
			Logger:          a.logger,
			Registry:        a.registry,
			Listen:          a.cfg.Server.Listen,
			ShutdownTimeout: a.cfg.Server.ShutdownTimeout.Std(),
		})

		return srv.ListenAndServe(ctx)
	},
}
