// Package cli implements the arcsys command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion records the build-time version string.
func SetVersion(v string) {
	version = v
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "arcsys",
	Short: "arcsys — multi-agent system analysis pipeline",
	Long: `arcsys runs a multi-stage agent pipeline over a system design query:
requirements extraction, research, architecture design, visualization,
quality critique with bounded retry, and bias risk assessment, rendered
into a single markdown artifact.

Configuration is read from ./arcsys.yaml or ~/.arcsys/config.yaml; the
provider API key comes from the ARCSYS_API_KEY environment variable.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
}
