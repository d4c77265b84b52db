// Package session runs one learner through a test: answering, grading,
// reviewing the result and browsing past attempts.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/learnforge/internal/assess"
)

// Phase is the orchestrator state.
type Phase string

const (
	PhaseTaking           Phase = "taking"
	PhaseReviewingResults Phase = "reviewing-results"
	PhaseViewingDashboard Phase = "viewing-dashboard"
)

// QuestionResult is the graded answer to one question of an attempt.
type QuestionResult struct {
	QuestionIndex int                     `json:"questionIndex"`
	QuestionID    string                  `json:"questionId"`
	Question      string                  `json:"question"`
	UserAnswer    string                  `json:"userAnswer"`
	CorrectAnswer string                  `json:"correctAnswer"`
	Evaluation    assess.EvaluationResult `json:"evaluation"`
}

// TestAttempt is one completed run of a test. Attempts are never modified
// after they are recorded.
type TestAttempt struct {
	ID          string    `json:"id"`
	TestID      string    `json:"testId"`
	Answers     []string  `json:"answers"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`

	Results       []QuestionResult `json:"results,omitempty"`
	FallbackCount int              `json:"fallbackCount"`
}

// HistoryStore persists the ordered attempt history. Load returns the full
// history and Save replaces it.
type HistoryStore interface {
	Load(ctx context.Context) ([]TestAttempt, error)
	Save(ctx context.Context, attempts []TestAttempt) error
}

// Grader grades answers in order, one result per input.
type Grader interface {
	BatchEvaluate(ctx context.Context, evaluations []assess.Evaluation) []assess.BatchItem
}

// PhaseError reports an operation attempted in the wrong phase.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.Phase)
}
