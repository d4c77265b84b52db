package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/learnforge/internal/assess"
	"github.com/abhisek/learnforge/internal/catalog"
	"github.com/abhisek/learnforge/internal/logging"
)

// Orchestrator drives a single learner through one test. It is not safe for
// concurrent use.
type Orchestrator struct {
	test    catalog.Test
	history HistoryStore
	grader  Grader
	logger  *zap.Logger
	now     func() time.Time

	phase    Phase
	answers  map[int]string
	attempts []TestAttempt
	result   *TestAttempt
}

// New creates an Orchestrator in the taking phase. The history is read once here.
func New(ctx context.Context, test catalog.Test, history HistoryStore, grader Grader, logger *zap.Logger) (*Orchestrator, error) {
	if history == nil {
		return nil, errors.New("session: history store is required")
	}

	attempts, err := history.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attempt history: %w", err)
	}
	if attempts == nil {
		attempts = []TestAttempt{}
	}

	return &Orchestrator{
		test:     test,
		history:  history,
		grader:   grader,
		logger:   logging.OrNop(logger).Named("session").With(zap.String("test", test.ID)),
		now:      time.Now,
		phase:    PhaseTaking,
		answers:  map[int]string{},
		attempts: attempts,
	}, nil
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase { return o.phase }

// Test returns the test being taken.
func (o *Orchestrator) Test() catalog.Test { return o.test }

// Answer records the learner's answer to question index.
func (o *Orchestrator) Answer(index int, value string) error {
	if o.phase != PhaseTaking {
		return &PhaseError{Op: "answer", Phase: o.phase}
	}
	if index < 0 || index >= len(o.test.Questions) {
		return fmt.Errorf("question %d out of range [0,%d)", index, len(o.test.Questions))
	}
	o.answers[index] = value
	return nil
}

// Answers returns the current answers in question order, "" when unanswered.
func (o *Orchestrator) Answers() []string {
	out := make([]string, len(o.test.Questions))
	for i := range out {
		out[i] = o.answers[i]
	}
	return out
}

// Submit grades the current answers and completes the attempt with them.
func (o *Orchestrator) Submit(ctx context.Context) (*TestAttempt, error) {
	if o.phase != PhaseTaking {
		return nil, &PhaseError{Op: "submit", Phase: o.phase}
	}
	if o.grader == nil {
		return nil, errors.New("session: no grader configured")
	}

	answers := o.Answers()
	evals := make([]assess.Evaluation, len(o.test.Questions))
	for i, q := range o.test.Questions {
		evals[i] = assess.Evaluation{
			Question: q.Text,
			Answer:   answers[i],
			Type:     q.Kind,
			Context: map[string]any{
				"topic":         o.test.Topic,
				"correctAnswer": q.CorrectText(),
				"options":       q.Options,
			},
		}
	}

	items := o.grader.BatchEvaluate(ctx, evals)
	if len(items) != len(evals) {
		return nil, fmt.Errorf("grader returned %d results for %d answers", len(items), len(evals))
	}

	attempt := &TestAttempt{
		ID:          uuid.NewString(),
		TestID:      o.test.ID,
		Answers:     answers,
		CompletedAt: o.now().UTC(),
		Results:     make([]QuestionResult, len(items)),
	}
	scores := make([]float64, len(items))
	for i, item := range items {
		q := o.test.Questions[i]
		attempt.Results[i] = QuestionResult{
			QuestionIndex: i,
			QuestionID:    q.ID,
			Question:      q.Text,
			UserAnswer:    answers[i],
			CorrectAnswer: q.CorrectText(),
			Evaluation:    item.Result,
		}
		if item.Fallback {
			attempt.FallbackCount++
		}
		scores[i] = item.Result.Score
	}
	attempt.Score = Score(scores)

	if err := o.Complete(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// Score is the rounded mean of per-question scores, 0 for none.
func Score(scores []float64) int {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(sum / float64(len(scores))))
}

// Complete records a finished attempt and moves to reviewing the result. A
// nil attempt is logged and ignored. The full history is persisted before
// the phase changes; if that fails nothing changes.
func (o *Orchestrator) Complete(ctx context.Context, attempt *TestAttempt) error {
	if attempt == nil {
		o.logger.Error("no attempt provided to complete", zap.String("phase", string(o.phase)))
		return nil
	}
	if o.phase != PhaseTaking {
		return &PhaseError{Op: "complete", Phase: o.phase}
	}

	recorded := cloneAttempt(*attempt)
	updated := append(slices.Clone(o.attempts), recorded)
	if err := o.history.Save(ctx, updated); err != nil {
		return fmt.Errorf("save attempt history: %w", err)
	}

	o.attempts = updated
	o.result = &recorded
	o.phase = PhaseReviewingResults
	o.logger.Info("attempt recorded",
		zap.String("attempt", recorded.ID),
		zap.Int("score", recorded.Score),
		zap.Int("fallbacks", recorded.FallbackCount),
		zap.Int("history", len(updated)))
	return nil
}

// Retake discards the current answers and result and starts a new attempt.
func (o *Orchestrator) Retake() error {
	if o.phase == PhaseTaking {
		return &PhaseError{Op: "retake", Phase: o.phase}
	}
	o.answers = map[int]string{}
	o.result = nil
	o.phase = PhaseTaking
	return nil
}

// ViewDashboard moves from reviewing the result to the history dashboard.
func (o *Orchestrator) ViewDashboard() error {
	if o.phase != PhaseReviewingResults {
		return &PhaseError{Op: "view dashboard", Phase: o.phase}
	}
	o.phase = PhaseViewingDashboard
	return nil
}

// Result returns the attempt completed in this session, or nil.
func (o *Orchestrator) Result() *TestAttempt {
	if o.result == nil {
		return nil
	}
	r := cloneAttempt(*o.result)
	return &r
}

// History returns every recorded attempt, oldest first.
func (o *Orchestrator) History() []TestAttempt {
	out := make([]TestAttempt, len(o.attempts))
	for i, a := range o.attempts {
		out[i] = cloneAttempt(a)
	}
	return out
}

// Dashboard summarizes the recorded attempts.
func (o *Orchestrator) Dashboard() Dashboard {
	return Summarize(o.attempts)
}

func cloneAttempt(a TestAttempt) TestAttempt {
	a.Answers = slices.Clone(a.Answers)
	a.Results = slices.Clone(a.Results)
	return a
}
