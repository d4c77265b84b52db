package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnforge/internal/questions"
)

func newQuestionsCmd() *cobra.Command {
	questionsCmd := &cobra.Command{
		Use:   "questions",
		Short: "Import, validate and export CSV question banks",
	}

	importCmd := &cobra.Command{
		Use:   "import <subject> <source>",
		Short: "Import a CSV source from the data directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			c, err := setup(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			im, err := c.importer()
			if err != nil {
				return err
			}
			qs, err := im.ImportAll(args[0], args[1])
			if err != nil {
				return err
			}
			if asJSON {
				return c.printJSON(qs)
			}

			out := c.out
			fmt.Fprintf(out, "%-36s  %-15s  %-12s  %s\n", "ID", "Type", "Difficulty", "Question")
			fmt.Fprintln(out, strings.Repeat("─", 100))
			for _, q := range qs {
				fmt.Fprintf(out, "%-36s  %-15s  %-12s  %s\n", q.ID, q.Kind, q.Difficulty, truncate(q.Text, 40))
			}
			fmt.Fprintf(out, "\n%d questions imported from %s\n", len(qs), im.Path(args[1]))
			return nil
		},
	}
	importCmd.Flags().Bool("json", false, "Print questions as JSON")

	validateCmd := &cobra.Command{
		Use:   "validate <source>",
		Short: "Check a CSV source and report problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			c, err := setup(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			im, err := c.importer()
			if err != nil {
				return err
			}
			report, err := im.Validate(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				if err := c.printJSON(report); err != nil {
					return err
				}
			} else {
				out := c.out
				fmt.Fprintf(out, "Questions: %d\n", report.QuestionCount)
				for _, e := range report.Errors {
					fmt.Fprintf(out, "error:   %s\n", e)
				}
				for _, w := range report.Warnings {
					fmt.Fprintf(out, "warning: %s\n", w)
				}
			}
			if !report.Valid {
				return fmt.Errorf("%s has %d errors", args[0], len(report.Errors))
			}
			return nil
		},
	}
	validateCmd.Flags().Bool("json", false, "Print the report as JSON")

	listCmd := &cobra.Command{
		Use:   "list <subject>",
		Short: "List CSV sources available for a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			im, err := c.importer()
			if err != nil {
				return err
			}
			sources := im.ListAvailableSources(args[0])
			if len(sources) == 0 {
				fmt.Fprintf(c.out, "No sources for %q in %s.\n", args[0], im.Dir())
				return nil
			}
			for _, s := range sources {
				fmt.Fprintln(c.out, s)
			}
			return nil
		},
	}

	sampleCmd := &cobra.Command{
		Use:   "sample <subject>",
		Short: "Write a sample CSV source for a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = args[0]
			}

			c, err := setup(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			im, err := c.importer()
			if err != nil {
				return err
			}
			path, err := im.CreateSample(args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, path)
			return nil
		},
	}
	sampleCmd.Flags().String("name", "", "Display name of the subject")

	exportCmd := &cobra.Command{
		Use:   "export <subject> <source> [output]",
		Short: "Re-encode an imported source as canonical CSV",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			im, err := c.importer()
			if err != nil {
				return err
			}
			qs, err := im.ImportAll(args[0], args[1])
			if err != nil {
				return err
			}
			data := questions.ToRowFormat(qs)

			if len(args) < 3 || args[2] == "-" {
				_, err := fmt.Fprint(c.out, data)
				return err
			}
			if err := os.WriteFile(args[2], []byte(data), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", args[2], err)
			}
			fmt.Fprintf(c.out, "%d questions written to %s\n", len(qs), args[2])
			return nil
		},
	}

	questionsCmd.AddCommand(importCmd)
	questionsCmd.AddCommand(validateCmd)
	questionsCmd.AddCommand(listCmd)
	questionsCmd.AddCommand(sampleCmd)
	questionsCmd.AddCommand(exportCmd)
	return questionsCmd
}
