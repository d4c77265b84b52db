package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnforge/internal/assess"
)

// Execute runs the learnforge command line.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "learnforge",
		Short: "Assessment client, question ingestion and test sessions",
		Long: "learnforge talks to an AI assessment service with local fallbacks, " +
			"imports question banks from CSV and runs graded tests with a durable history.",
		SilenceUsage: true,
	}

	f := root.PersistentFlags()
	f.String("base-url", assess.DefaultBaseURL, "Assessment service base URL")
	f.String("token", "", "Bearer token sent to the assessment service")
	f.Duration("timeout", 30*time.Second, "Timeout for a single assessment call")
	f.Int("retries", 1, "Attempts per assessment call before falling back")
	f.Float64("rate", 0, "Maximum assessment calls per second (0 disables pacing)")
	f.String("data-dir", "data", "Directory holding question CSV sources")
	f.String("db", "", "Path to SQLite database file (overrides the default data path)")
	f.String("log-level", "warn", "Log level: debug, info, warn, error")
	f.String("log-format", "console", "Log format: console or json")
	f.String("log-file", "", "Also write JSON logs to this file, rotated")

	root.AddCommand(newQuestionsCmd())
	root.AddCommand(newAssessCmd())
	root.AddCommand(newTestCmd())
	root.AddCommand(newCallsCmd())
	root.AddCommand(newVersionCmd())
	return root
}
