package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/askgate/internal/app"
	"github.com/kailas-cloud/askgate/internal/domain/progress"
	logpkg "github.com/kailas-cloud/askgate/internal/logger"
)

var (
	askHint    string
	askJSON    bool
	askVerbose bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question through the retrieval pipeline",
	Long: `Ask runs the full pipeline: classify, plan, search every configured
backend, filter, merge, and synthesize a cited answer.

Examples:
  askctl ask "What is the grade appeal deadline?"
  askctl ask --hint "campus: Hanoi" --json "shuttle schedule"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askHint, "hint", "", "extra context passed to the synthesizer")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "print pipeline progress to stderr")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := args[0]

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

	if askVerbose {
		a.Orchestrator.WithSink(progress.Func(func(e progress.Event) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", e.Step, e.Message)
		}))
	}

	out := a.Orchestrator.Orchestrate(cmd.Context(), query, askHint)

	if askJSON {
		payload := map[string]any{
			"answer":   out.Text,
			"sentinel": string(out.Sentinel),
		}
		citations := make([]map[string]any, 0, len(out.Citations))
		for _, c := range out.Citations {
			citations = append(citations, map[string]any{
				"title":          c.Title,
				"url":            c.URL,
				"contentPreview": c.ContentPreview,
				"score":          c.Score,
			})
		}
		payload["citations"] = citations

		encoded, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Println(string(encoded))
		return nil
	}

	fmt.Println(out.Text)
	if len(out.Citations) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for i, c := range out.Citations {
			title := c.Title
			if title == "" {
				title = c.URL
			}
			fmt.Printf("  [%d] %s\n      %s\n", i+1, title, c.URL)
		}
	}
	if askVerbose {
		var parts []string
		for id, report := range out.Diagnostics.Backends {
			parts = append(parts, fmt.Sprintf("%s=%s raw=%d kept=%d", id, report.Status, report.Raw, report.Kept))
		}
		fmt.Fprintf(os.Stderr, "backends: %s; evidence: %d\n", strings.Join(parts, ", "), out.Diagnostics.Evidence)
	}

	return nil
}
