package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/askgate/internal/app"
	healthuc "github.com/kailas-cloud/askgate/internal/usecase/health"
	logpkg "github.com/kailas-cloud/askgate/internal/logger"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check configured component availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logpkg.NewLogger(envName, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		a, err := app.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("assemble pipeline: %w", err)
		}
		defer a.Close()

		report := a.Health.Check(cmd.Context())
		for name, res := range report.Checks {
			fmt.Printf("%-8s %s\n", name, res)
		}
		fmt.Printf("status: %s\n", report.Status)

		if report.Status != healthuc.Healthy {
			return fmt.Errorf("one or more components degraded")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
