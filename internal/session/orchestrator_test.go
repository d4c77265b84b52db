package session

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/learnforge/internal/assess"
	"github.com/abhisek/learnforge/internal/catalog"
	"github.com/abhisek/learnforge/internal/store"
)

// stubGrader scores every answer with the same result.
type stubGrader struct {
	result assess.EvaluationResult
	short  bool
	seen   []assess.Evaluation
}

func (g *stubGrader) BatchEvaluate(_ context.Context, evals []assess.Evaluation) []assess.BatchItem {
	g.seen = append(g.seen, evals...)
	n := len(evals)
	if g.short && n > 0 {
		n--
	}
	items := make([]assess.BatchItem, n)
	for i := range items {
		items[i] = assess.BatchItem{Evaluation: evals[i], Result: g.result}
	}
	return items
}

func javaTest(t *testing.T) catalog.Test {
	t.Helper()
	test, ok := catalog.Lookup("java-fundamentals")
	require.True(t, ok)
	return test
}

func newOrchestrator(t *testing.T, history HistoryStore, grader Grader) *Orchestrator {
	t.Helper()
	o, err := New(context.Background(), javaTest(t), history, grader, zap.NewNop())
	require.NoError(t, err)
	o.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return o
}

func evalReply(score float64) assess.MockReply {
	data, _ := json.Marshal(map[string]any{"correct": score >= 50, "score": score, "feedback": "graded"})
	return assess.MockReply{Content: data}
}

func TestNewStartsTaking(t *testing.T) {
	prior := TestAttempt{ID: "a1", TestID: "oop-concepts", Answers: []string{"x"}, Score: 40}
	o := newOrchestrator(t, NewMemoryHistory(prior), &stubGrader{})

	assert.Equal(t, PhaseTaking, o.Phase())
	assert.Nil(t, o.Result())
	require.Len(t, o.History(), 1)
	assert.Equal(t, "a1", o.History()[0].ID)
	assert.Equal(t, make([]string, 5), o.Answers())
}

func TestNewRequiresHistory(t *testing.T) {
	_, err := New(context.Background(), javaTest(t), nil, &stubGrader{}, nil)
	assert.Error(t, err)
}

func TestAnswer(t *testing.T) {
	o := newOrchestrator(t, NewMemoryHistory(), &stubGrader{})

	require.NoError(t, o.Answer(0, "A blueprint for objects"))
	require.NoError(t, o.Answer(4, "final"))
	require.NoError(t, o.Answer(0, "An object"))
	assert.Equal(t, []string{"An object", "", "", "", "final"}, o.Answers())

	assert.Error(t, o.Answer(-1, "x"))
	assert.Error(t, o.Answer(5, "x"))
}

func TestSubmitGradesWithClient(t *testing.T) {
	mock := assess.NewMockTransport(evalReply(100), evalReply(80), evalReply(60))
	client, err := assess.NewClient(mock, assess.Options{})
	require.NoError(t, err)

	history := NewMemoryHistory()
	o := newOrchestrator(t, history, client)
	for i := range 5 {
		require.NoError(t, o.Answer(i, "answer"))
	}

	attempt, err := o.Submit(context.Background())
	require.NoError(t, err)

	// Two answers graded by the fallback at 75.
	assert.Equal(t, 78, attempt.Score)
	assert.Equal(t, 2, attempt.FallbackCount)
	assert.Equal(t, "java-fundamentals", attempt.TestID)
	assert.NotEmpty(t, attempt.ID)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), attempt.CompletedAt)
	require.Len(t, attempt.Results, 5)
	assert.Equal(t, "java-fundamentals/1", attempt.Results[0].QuestionID)
	assert.Equal(t, assess.ProviderFallback, attempt.Results[4].Evaluation.Provider)
	assert.Equal(t, 5, mock.CallCount())

	assert.Equal(t, PhaseReviewingResults, o.Phase())
	require.NotNil(t, o.Result())
	assert.Equal(t, attempt.ID, o.Result().ID)
	assert.Equal(t, 1, history.Saves())

	saved, err := history.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, attempt.ID, saved[0].ID)
}

func TestSubmitSendsGradingContext(t *testing.T) {
	g := &stubGrader{result: assess.EvaluationResult{Score: 50}}
	o := newOrchestrator(t, NewMemoryHistory(), g)
	require.NoError(t, o.Answer(0, "A blueprint for objects"))

	_, err := o.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, g.seen, 5)
	first := g.seen[0]
	assert.Equal(t, o.Test().Questions[0].Text, first.Question)
	assert.Equal(t, "A blueprint for objects", first.Answer)
	assert.Equal(t, o.Test().Questions[0].Kind, first.Type)
	assert.Equal(t, o.Test().Questions[0].CorrectText(), first.Context["correctAnswer"])
	assert.Equal(t, "", g.seen[1].Answer)
}

func TestSubmitRejectsShortGrading(t *testing.T) {
	history := NewMemoryHistory()
	o := newOrchestrator(t, history, &stubGrader{short: true})

	_, err := o.Submit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, PhaseTaking, o.Phase())
	assert.Zero(t, history.Saves())
}

func TestCompleteNilIsLoggedNoop(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	history := NewMemoryHistory()
	o, err := New(context.Background(), javaTest(t), history, &stubGrader{}, zap.New(core))
	require.NoError(t, err)

	require.NoError(t, o.Complete(context.Background(), nil))

	assert.Equal(t, PhaseTaking, o.Phase())
	assert.Empty(t, o.History())
	assert.Nil(t, o.Result())
	assert.Zero(t, history.Saves())
	assert.Equal(t, 1, logs.FilterMessage("no attempt provided to complete").Len())
}

func TestCompleteAppendsInOrder(t *testing.T) {
	prior := TestAttempt{ID: "old", TestID: "java-fundamentals", Score: 20}
	history := NewMemoryHistory(prior)
	o := newOrchestrator(t, history, &stubGrader{})

	attempt := &TestAttempt{ID: "new", TestID: "java-fundamentals", Answers: []string{"a"}, Score: 90}
	require.NoError(t, o.Complete(context.Background(), attempt))

	// The recorded attempt is detached from the caller's value.
	attempt.Answers[0] = "changed"
	attempt.Score = 0

	got := o.History()
	require.Len(t, got, 2)
	assert.Equal(t, "old", got[0].ID)
	assert.Equal(t, "new", got[1].ID)
	assert.Equal(t, []string{"a"}, got[1].Answers)
	assert.Equal(t, 90, o.Result().Score)
}

func TestCompleteSaveFailureLeavesStateUnchanged(t *testing.T) {
	history := NewMemoryHistory()
	history.SaveErr = errors.New("disk full")
	o := newOrchestrator(t, history, &stubGrader{})

	err := o.Complete(context.Background(), &TestAttempt{ID: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, history.SaveErr)
	assert.Equal(t, PhaseTaking, o.Phase())
	assert.Empty(t, o.History())
	assert.Nil(t, o.Result())
}

func TestPhaseTransitions(t *testing.T) {
	o := newOrchestrator(t, NewMemoryHistory(), &stubGrader{result: assess.EvaluationResult{Score: 100}})

	var pe *PhaseError
	require.ErrorAs(t, o.ViewDashboard(), &pe)
	assert.Equal(t, PhaseTaking, pe.Phase)

	_, err := o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseReviewingResults, o.Phase())

	require.ErrorAs(t, o.Answer(0, "late"), &pe)
	_, err = o.Submit(context.Background())
	require.ErrorAs(t, err, &pe)
	require.ErrorAs(t, o.Complete(context.Background(), &TestAttempt{}), &pe)

	require.NoError(t, o.ViewDashboard())
	assert.Equal(t, PhaseViewingDashboard, o.Phase())
	assert.Equal(t, 1, o.Dashboard().Attempts)
	assert.Error(t, o.ViewDashboard())

	require.NoError(t, o.Retake())
	assert.Equal(t, PhaseTaking, o.Phase())
	require.ErrorAs(t, o.Retake(), &pe)
}

func TestRetakeResetsAnswersAndResult(t *testing.T) {
	o := newOrchestrator(t, NewMemoryHistory(), &stubGrader{result: assess.EvaluationResult{Score: 60}})
	require.NoError(t, o.Answer(1, "x"))
	_, err := o.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, o.Retake())

	assert.Equal(t, PhaseTaking, o.Phase())
	assert.Nil(t, o.Result())
	assert.Equal(t, make([]string, 5), o.Answers())
	assert.Len(t, o.History(), 1)

	_, err = o.Submit(context.Background())
	require.NoError(t, err)
	assert.Len(t, o.History(), 2)
}

func TestStoreHistorySurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learnforge.db")
	ctx := context.Background()

	s, err := store.Open(path)
	require.NoError(t, err)
	o, err := New(ctx, javaTest(t), NewStoreHistory(s), &stubGrader{result: assess.EvaluationResult{Score: 70}}, nil)
	require.NoError(t, err)
	first, err := o.Submit(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	o, err = New(ctx, javaTest(t), NewStoreHistory(s), &stubGrader{}, nil)
	require.NoError(t, err)
	got := o.History()
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, 70, got[0].Score)
	assert.True(t, first.CompletedAt.Equal(got[0].CompletedAt))

	raw, ok, err := s.Get(ctx, store.AttemptHistoryKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"testId":"java-fundamentals"`)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   int
	}{
		{"none", nil, 0},
		{"single", []float64{42}, 42},
		{"rounds half up", []float64{50, 51}, 51},
		{"rounds down", []float64{10, 10, 11}, 10},
		{"all perfect", []float64{100, 100}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.scores))
		})
	}
}
