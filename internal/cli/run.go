package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run \"<query>\"",
	Short: "Run one analysis from the command line",
	Long: `Run the full pipeline over a single query and print the rendered markdown
artifact to stdout. Stage failures are reported on stderr; the run still
completes with whatever sections were producible.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(args[0])
		if query == "" {
			return fmt.Errorf("query must not be empty")
		}

		a, err := buildApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		runID := uuid.NewString()
		a.logger.Info("analysis started", "run_id", runID)

		final, err := a.pipeline.Run(cmd.Context(), runID, query)
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}

		for _, entry := range final.ErrorLog {
			fmt.Fprintln(cmd.ErrOrStderr(), "stage error:", entry)
		}

		fmt.Fprintln(cmd.OutOrStdout(), final.FinalOutput)
		fmt.Fprintf(cmd.ErrOrStderr(), "run %s: score=%.1f risk=%.2f iterations=%d\n",
			runID, final.Score, final.RiskScore, final.Iterations)
		return nil
	},
}
