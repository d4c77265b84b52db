package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnforge/internal/catalog"
	"github.com/abhisek/learnforge/internal/questions"
	"github.com/abhisek/learnforge/internal/session"
)

func newTestCmd() *cobra.Command {
	testCmd := &cobra.Command{
		Use:   "test",
		Short: "Take tests and review past attempts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List builtin tests",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, id := range catalog.IDs() {
				t, _ := catalog.Lookup(id)
				fmt.Fprintf(out, "%-20s  %-30s  %d questions\n", t.ID, t.Title, len(t.Questions))
			}
		},
	}

	takeCmd := &cobra.Command{
		Use:   "take <testId>",
		Short: "Grade a set of answers and record the attempt",
		Long: "Answers are read from a JSON array of strings, one per question in order. " +
			"With --source the test is built from an imported CSV source instead of the builtin catalog.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answersPath, _ := cmd.Flags().GetString("answers")
			source, _ := cmd.Flags().GetString("source")
			asJSON, _ := cmd.Flags().GetBool("json")
			showDashboard, _ := cmd.Flags().GetBool("dashboard")

			c, err := setup(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			test, err := c.loadTest(args[0], source)
			if err != nil {
				return err
			}

			var answers []string
			if answersPath != "" {
				if err := readJSONFile(answersPath, &answers); err != nil {
					return err
				}
			}
			if len(answers) > len(test.Questions) {
				return fmt.Errorf("%d answers given for %d questions", len(answers), len(test.Questions))
			}

			st, err := c.store()
			if err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			o, err := session.New(ctx, test, session.NewStoreHistory(st), client, c.logger)
			if err != nil {
				return err
			}
			for i, a := range answers {
				if err := o.Answer(i, a); err != nil {
					return err
				}
			}
			attempt, err := o.Submit(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				if err := c.printJSON(attempt); err != nil {
					return err
				}
			} else {
				printAttempt(c, o.Test(), attempt)
			}

			if showDashboard {
				if err := o.ViewDashboard(); err != nil {
					return err
				}
				fmt.Fprintln(c.out)
				printDashboard(c, o.Dashboard())
			}
			return nil
		},
	}
	takeCmd.Flags().String("answers", "", "JSON file with the answers (\"-\" for stdin)")
	takeCmd.Flags().String("source", "", "CSV source in the data directory to build the test from")
	takeCmd.Flags().Bool("json", false, "Print the attempt as JSON")
	takeCmd.Flags().Bool("dashboard", false, "Show the dashboard after grading")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			attempts, err := c.attempts(cmd)
			if err != nil {
				return err
			}
			out := c.out
			if len(attempts) == 0 {
				fmt.Fprintln(out, "No attempts recorded yet.")
				return nil
			}

			fmt.Fprintf(out, "%-36s  %-20s  %5s  %-9s  %s\n", "ID", "Test", "Score", "Fallbacks", "Completed")
			fmt.Fprintln(out, strings.Repeat("─", 100))
			for _, a := range attempts {
				fmt.Fprintf(out, "%-36s  %-20s  %5d  %-9d  %s\n",
					a.ID, truncate(a.TestID, 20), a.Score, a.FallbackCount,
					a.CompletedAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize recorded attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			c, err := setup(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			attempts, err := c.attempts(cmd)
			if err != nil {
				return err
			}
			d := session.Summarize(attempts)
			if asJSON {
				return c.printJSON(d)
			}
			printDashboard(c, d)
			return nil
		},
	}
	dashboardCmd.Flags().Bool("json", false, "Print the dashboard as JSON")

	testCmd.AddCommand(listCmd)
	testCmd.AddCommand(takeCmd)
	testCmd.AddCommand(historyCmd)
	testCmd.AddCommand(dashboardCmd)
	return testCmd
}

// loadTest returns the builtin test id, or a test built from an imported
// source when source is set.
func (c *cli) loadTest(id, source string) (catalog.Test, error) {
	if source == "" {
		t, ok := catalog.Lookup(id)
		if !ok {
			return catalog.Test{}, fmt.Errorf("unknown test %q (available: %s)", id, strings.Join(catalog.IDs(), ", "))
		}
		return t, nil
	}

	im, err := c.importer()
	if err != nil {
		return catalog.Test{}, err
	}
	qs, err := im.ImportAll(id, source)
	if err != nil {
		return catalog.Test{}, err
	}
	if len(qs) == 0 {
		return catalog.Test{}, fmt.Errorf("%s has no usable questions", source)
	}
	return catalog.FromQuestions(id, source, qs[0].Topic, qs), nil
}

func (c *cli) attempts(cmd *cobra.Command) ([]session.TestAttempt, error) {
	st, err := c.store()
	if err != nil {
		return nil, err
	}
	return session.NewStoreHistory(st).Load(cmd.Context())
}

func printAttempt(c *cli, test catalog.Test, a *session.TestAttempt) {
	out := c.out
	fmt.Fprintf(out, "%s: %d%%\n", test.Title, a.Score)
	fmt.Fprintln(out, strings.Repeat("─", 60))
	for _, r := range a.Results {
		mark := "✓"
		if !r.Evaluation.Correct {
			mark = "✗"
		}
		fmt.Fprintf(out, "%s %2d. %s  (%.0f)\n", mark, r.QuestionIndex+1, truncate(r.Question, 50), r.Evaluation.Score)
		if test.Questions[r.QuestionIndex].Kind == questions.KindMultipleChoice && r.CorrectAnswer != "" {
			fmt.Fprintf(out, "      answer: %s\n", r.CorrectAnswer)
		}
		if r.Evaluation.Feedback != "" {
			fmt.Fprintf(out, "      %s\n", r.Evaluation.Feedback)
		}
	}
	if a.FallbackCount > 0 {
		fmt.Fprintf(out, "\n%d of %d answers were graded offline.\n", a.FallbackCount, len(a.Results))
	}
}

func printDashboard(c *cli, d session.Dashboard) {
	out := c.out
	if d.Attempts == 0 {
		fmt.Fprintln(out, "No attempts recorded yet.")
		return
	}
	fmt.Fprintf(out, "Attempts: %d   Average: %.1f   Best: %d\n", d.Attempts, d.AverageScore, d.BestScore)
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "%-20s  %8s  %5s  %7s  %5s\n", "Test", "Attempts", "Best", "Average", "Last")
	for _, t := range d.Tests {
		fmt.Fprintf(out, "%-20s  %8d  %5d  %7.1f  %5d\n", truncate(t.TestID, 20), t.Attempts, t.BestScore, t.AverageScore, t.LastScore)
	}
}
