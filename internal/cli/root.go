// Package cli implements the askctl command-line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/askgate/internal/config"
	"github.com/kailas-cloud/askgate/internal/version"
)

var (
	envName string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "askctl",
	Short:   "askgate retrieval orchestrator CLI",
	Version: version.Version,
	Long: `askctl answers questions through the askgate retrieval pipeline without
running the API server: classify, search the configured backends, filter,
and synthesize a grounded answer with citations.

Example usage:
  askctl ask "What is the grade appeal deadline?"
  askctl ask --json --verbose "library opening hours"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envName)
		return err
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(), "config environment name (local, dev, prod)")
}
