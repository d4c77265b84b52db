package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/learnforge/internal/assess"
	"github.com/abhisek/learnforge/internal/questions"
)

// resultView is how an assessment result is printed.
type resultView[T any] struct {
	Fallback bool   `json:"fallback"`
	Cause    string `json:"cause,omitempty"`
	Result   T      `json:"result"`
}

func printResult[T any](c *cli, r assess.Result[T]) error {
	view := resultView[T]{Fallback: r.Fallback, Result: r.Value}
	if r.Cause != nil {
		view.Cause = r.Cause.Error()
	}
	return c.printJSON(view)
}

// assessRun wraps a subcommand body with setup and client construction.
func assessRun(run func(cmd *cobra.Command, args []string, c *cli, client *assess.Client) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := setup(cmd)
		if err != nil {
			return err
		}
		defer c.close()

		client, err := c.client()
		if err != nil {
			return err
		}
		return run(cmd, args, c, client)
	}
}

func newAssessCmd() *cobra.Command {
	assessCmd := &cobra.Command{
		Use:   "assess",
		Short: "Call the assessment service",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show which AI providers the service has available",
		Args:  cobra.NoArgs,
		RunE: assessRun(func(cmd *cobra.Command, _ []string, c *cli, client *assess.Client) error {
			res := client.GetProviderStatus(cmd.Context())
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printResult(c, res)
			}

			out := c.out
			if res.Value.Error != "" {
				fmt.Fprintln(out, res.Value.Error)
				return nil
			}
			fmt.Fprintf(out, "%-20s  %-24s  %s\n", "Provider", "Type", "Available")
			fmt.Fprintln(out, strings.Repeat("─", 60))
			for _, name := range res.Value.Names() {
				p := res.Value.Providers[name]
				fmt.Fprintf(out, "%-20s  %-24s  %v\n", truncate(name, 20), truncate(p.Type, 24), p.Available)
			}
			return nil
		}),
	}
	statusCmd.Flags().Bool("json", false, "Print the raw status as JSON")

	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Grade one answer",
		Args:  cobra.NoArgs,
		RunE: assessRun(func(cmd *cobra.Command, _ []string, c *cli, client *assess.Client) error {
			question, _ := cmd.Flags().GetString("question")
			answer, _ := cmd.Flags().GetString("answer")
			kind, _ := cmd.Flags().GetString("type")
			rawCtx, _ := cmd.Flags().GetString("context")

			var evalCtx map[string]any
			if rawCtx != "" {
				if err := json.Unmarshal([]byte(rawCtx), &evalCtx); err != nil {
					return fmt.Errorf("invalid --context: %w", err)
				}
			}
			return printResult(c, client.EvaluateAnswer(cmd.Context(), question, answer, questions.Kind(kind), evalCtx))
		}),
	}
	evaluateCmd.Flags().String("question", "", "Question text")
	evaluateCmd.Flags().String("answer", "", "Learner's answer")
	evaluateCmd.Flags().String("type", string(questions.KindShortAnswer), "Question type")
	evaluateCmd.Flags().String("context", "", "Extra grading context as a JSON object")
	_ = evaluateCmd.MarkFlagRequired("question")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an adaptive question",
		Args:  cobra.NoArgs,
		RunE: assessRun(func(cmd *cobra.Command, _ []string, c *cli, client *assess.Client) error {
			subject, _ := cmd.Flags().GetString("subject")
			difficulty, _ := cmd.Flags().GetString("difficulty")
			topic, _ := cmd.Flags().GetString("topic")
			previous, _ := cmd.Flags().GetStringSlice("previous")
			return printResult(c, client.GenerateAdaptiveQuestion(cmd.Context(), subject, difficulty, topic, previous))
		}),
	}
	generateCmd.Flags().String("subject", "Mathematics", "Subject of the question")
	generateCmd.Flags().String("difficulty", string(questions.Beginner), "Difficulty level")
	generateCmd.Flags().String("topic", "", "Optional topic")
	generateCmd.Flags().StringSlice("previous", nil, "Questions already asked")

	explainCmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain a question after an answer",
		Args:  cobra.NoArgs,
		RunE: assessRun(func(cmd *cobra.Command, _ []string, c *cli, client *assess.Client) error {
			question, _ := cmd.Flags().GetString("question")
			answer, _ := cmd.Flags().GetString("answer")
			correct, _ := cmd.Flags().GetString("correct")
			return printResult(c, client.GetTutoringExplanation(cmd.Context(), question, answer, correct))
		}),
	}
	explainCmd.Flags().String("question", "", "Question text")
	explainCmd.Flags().String("answer", "", "Learner's answer")
	explainCmd.Flags().String("correct", "", "Correct answer, if known")
	_ = explainCmd.MarkFlagRequired("question")

	chatCmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Continue a tutoring conversation",
		Args:  cobra.MinimumNArgs(1),
		RunE: assessRun(func(cmd *cobra.Command, args []string, c *cli, client *assess.Client) error {
			historyPath, _ := cmd.Flags().GetString("history")

			var history []assess.ChatMessage
			if historyPath != "" {
				if err := readJSONFile(historyPath, &history); err != nil {
					return err
				}
			}
			return printResult(c, client.ConversationalTutoring(cmd.Context(), strings.Join(args, " "), history))
		}),
	}
	chatCmd.Flags().String("history", "", "JSON file with earlier messages")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Recommend a learning path",
		Args:  cobra.NoArgs,
		RunE: assessRun(func(cmd *cobra.Command, _ []string, c *cli, client *assess.Client) error {
			progressPath, _ := cmd.Flags().GetString("progress")
			subjects, _ := cmd.Flags().GetStringSlice("subjects")

			progress := map[string]any{}
			if progressPath != "" {
				if err := readJSONFile(progressPath, &progress); err != nil {
					return err
				}
			}
			return printResult(c, client.AnalyzeLearningPath(cmd.Context(), progress, subjects))
		}),
	}
	pathCmd.Flags().String("progress", "", "JSON file with the learner's progress")
	pathCmd.Flags().StringSlice("subjects", nil, "Subjects to consider")

	errorsCmd := &cobra.Command{
		Use:   "errors <file.json>",
		Short: "Analyze a learner's mistakes",
		Args:  cobra.ExactArgs(1),
		RunE: assessRun(func(cmd *cobra.Command, args []string, c *cli, client *assess.Client) error {
			subject, _ := cmd.Flags().GetString("subject")

			var studentErrors []map[string]any
			if err := readJSONFile(args[0], &studentErrors); err != nil {
				return err
			}
			return printResult(c, client.AnalyzeErrors(cmd.Context(), studentErrors, subject))
		}),
	}
	errorsCmd.Flags().String("subject", "", "Subject the mistakes belong to")

	batchCmd := &cobra.Command{
		Use:   "batch <file.json>",
		Short: "Grade a list of answers in order",
		Args:  cobra.ExactArgs(1),
		RunE: assessRun(func(cmd *cobra.Command, args []string, c *cli, client *assess.Client) error {
			var evals []assess.Evaluation
			if err := readJSONFile(args[0], &evals); err != nil {
				return err
			}
			items := client.BatchEvaluate(cmd.Context(), evals)

			var fallbacks int
			for _, it := range items {
				if it.Fallback {
					fallbacks++
				}
			}
			if fallbacks > 0 {
				c.logger.Warn("some answers were graded locally", zap.Int("fallbacks", fallbacks), zap.Int("total", len(items)))
			}
			return c.printJSON(items)
		}),
	}

	assessCmd.AddCommand(statusCmd)
	assessCmd.AddCommand(evaluateCmd)
	assessCmd.AddCommand(generateCmd)
	assessCmd.AddCommand(explainCmd)
	assessCmd.AddCommand(chatCmd)
	assessCmd.AddCommand(pathCmd)
	assessCmd.AddCommand(errorsCmd)
	assessCmd.AddCommand(batchCmd)
	return assessCmd
}
