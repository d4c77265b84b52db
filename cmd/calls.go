package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnforge/internal/store"
)

func newCallsCmd() *cobra.Command {
	callsCmd := &cobra.Command{
		Use:   "calls",
		Short: "Inspect recorded assessment service calls",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent assessment calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			endpoint, _ := cmd.Flags().GetString("endpoint")

			c, err := setup(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			st, err := c.store()
			if err != nil {
				return err
			}
			events, err := st.CallEvents().Query(cmd.Context(), store.QueryOpts{Limit: limit, Endpoint: endpoint})
			if err != nil {
				return fmt.Errorf("query calls: %w", err)
			}

			out := c.out
			if len(events) == 0 {
				fmt.Fprintln(out, "No assessment calls recorded.")
				return nil
			}

			fmt.Fprintf(out, "%-5s  %-19s  %-24s  %-5s  %-7s  %-2s  %s\n",
				"ID", "Timestamp", "Endpoint", "Code", "Ms", "OK", "Error")
			fmt.Fprintln(out, strings.Repeat("─", 100))

			for _, e := range events {
				ok := "✓"
				if !e.Success {
					ok = "✗"
				}
				fmt.Fprintf(out, "%-5d  %-19s  %-24s  %-5d  %-7d  %-2s  %s\n",
					e.ID,
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					truncate(e.Endpoint, 24),
					e.StatusCode,
					e.LatencyMs,
					ok,
					truncate(e.ErrorMessage, 40),
				)
			}
			return nil
		},
	}
	listCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	listCmd.Flags().StringP("endpoint", "e", "", "Filter by endpoint (e.g. evaluate, generate-question)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show call counts, failures and latency per endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			st, err := c.store()
			if err != nil {
				return err
			}
			stats, err := st.CallEvents().Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("query call stats: %w", err)
			}

			out := c.out
			if len(stats) == 0 {
				fmt.Fprintln(out, "No assessment calls recorded.")
				return nil
			}

			fmt.Fprintf(out, "%-24s  %6s  %8s  %8s\n", "Endpoint", "Calls", "Failed", "Avg Ms")
			fmt.Fprintln(out, strings.Repeat("─", 54))

			var calls, failures int
			for _, s := range stats {
				fmt.Fprintf(out, "%-24s  %6d  %8d  %8.0f\n", s.Endpoint, s.Calls, s.Failures, s.AvgLatencyMs)
				calls += s.Calls
				failures += s.Failures
			}
			fmt.Fprintln(out, strings.Repeat("─", 54))
			fmt.Fprintf(out, "%-24s  %6d  %8d\n", "TOTAL", calls, failures)
			return nil
		},
	}

	callsCmd.AddCommand(listCmd)
	callsCmd.AddCommand(statsCmd)
	return callsCmd
}
