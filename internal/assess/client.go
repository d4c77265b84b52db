// Package assess is a client for the remote assessment service. Every
// operation always yields a usable result: when the service cannot be reached
// or answers badly, a locally computed fallback tagged "fallback" is returned.
package assess

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/abhisek/learnforge/internal/logging"
	"github.com/abhisek/learnforge/internal/questions"
)

// Options configures a Client.
type Options struct {
	// Fallbacks supplies canned questions. Default: DefaultFallbackCatalog().
	Fallbacks *FallbackCatalog

	Logger *zap.Logger

	// Registerer receives the client's metrics. Nil disables metrics.
	Registerer prometheus.Registerer
}

// Client calls the assessment service.
type Client struct {
	transport Transport
	fallbacks FallbackCatalog
	logger    *zap.Logger
	metrics   *metrics
}

// NewClient creates a Client over t. Replies are decoded as they arrive;
// schema checks belong in the transport stack (see NewTransport).
func NewClient(t Transport, opts Options) (*Client, error) {
	if t == nil {
		return nil, errors.New("assess: transport is required")
	}
	c := &Client{
		transport: t,
		fallbacks: DefaultFallbackCatalog(),
		logger:    logging.OrNop(opts.Logger).Named("assess"),
	}
	if opts.Fallbacks != nil {
		c.fallbacks = *opts.Fallbacks
	}

	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, err
	}
	c.metrics = m
	return c, nil
}

// call sends one request and decodes its reply into T, or returns the
// fallback when anything goes wrong.
func call[T any](ctx context.Context, c *Client, e Endpoint, body any, fallback func() T) Result[T] {
	start := time.Now()
	value, err := fetch[T](ctx, c, e, body)
	c.metrics.observe(e, err != nil, time.Since(start))

	if err != nil {
		c.logger.Warn("assessment call failed, using fallback",
			zap.String("endpoint", string(e)),
			zap.String("transport", c.transport.Name()),
			zap.Error(err))
		return Result[T]{Value: fallback(), Fallback: true, Cause: err}
	}
	return Result[T]{Value: value}
}

func fetch[T any](ctx context.Context, c *Client, e Endpoint, body any) (T, error) {
	var value T
	reply, err := c.transport.Send(ctx, Call{Endpoint: e, Body: body})
	if err != nil {
		return value, err
	}
	if err := json.Unmarshal(reply.Content, &value); err != nil {
		return value, &ErrInvalidResponse{Endpoint: e, Content: reply.Content, Err: err}
	}
	return value, nil
}

// EvaluateAnswer grades an answer. kind defaults to multiple-choice and a nil
// context is sent as an empty object.
func (c *Client) EvaluateAnswer(ctx context.Context, question, answer string, kind questions.Kind, evalCtx map[string]any) Result[EvaluationResult] {
	if kind == "" {
		kind = questions.KindMultipleChoice
	}
	if evalCtx == nil {
		evalCtx = map[string]any{}
	}
	req := Evaluation{Question: question, Answer: answer, Type: kind, Context: evalCtx}
	return call(ctx, c, EndpointEvaluate, req, fallbackEvaluation)
}

// GenerateAdaptiveQuestion asks for a question at the given difficulty,
// default intermediate. topic may be empty.
func (c *Client) GenerateAdaptiveQuestion(ctx context.Context, subject, difficulty, topic string, previous []string) Result[GeneratedQuestion] {
	if difficulty == "" {
		difficulty = string(questions.Intermediate)
	}
	if previous == nil {
		previous = []string{}
	}
	req := QuestionRequest{Subject: subject, Difficulty: difficulty, PreviousQuestions: previous}
	if topic != "" {
		req.Topic = &topic
	}
	return call(ctx, c, EndpointGenerate, req, func() GeneratedQuestion {
		return c.fallbacks.fallbackQuestion(subject, difficulty)
	})
}

// GetTutoringExplanation explains a student's answer. correctAnswer may be empty.
func (c *Client) GetTutoringExplanation(ctx context.Context, question, studentAnswer, correctAnswer string) Result[TutoringExplanation] {
	req := ExplanationRequest{Question: question, StudentAnswer: studentAnswer}
	if correctAnswer != "" {
		req.CorrectAnswer = &correctAnswer
	}
	return call(ctx, c, EndpointExplain, req, fallbackExplanation)
}

// ConversationalTutoring continues a tutoring conversation.
func (c *Client) ConversationalTutoring(ctx context.Context, message string, history []ChatMessage) Result[TutorReply] {
	if history == nil {
		history = []ChatMessage{}
	}
	req := ConversationRequest{StudentMessage: message, ConversationHistory: history}
	return call(ctx, c, EndpointConversation, req, fallbackConversation)
}

// AnalyzeLearningPath recommends a study plan over subjects.
func (c *Client) AnalyzeLearningPath(ctx context.Context, progress map[string]any, subjects []string) Result[LearningPath] {
	if progress == nil {
		progress = map[string]any{}
	}
	if subjects == nil {
		subjects = []string{}
	}
	req := LearningPathRequest{StudentProgress: progress, Subjects: subjects}
	return call(ctx, c, EndpointLearningPath, req, func() LearningPath {
		return fallbackLearningPath(subjects)
	})
}

// AnalyzeErrors diagnoses a student's mistakes in a subject.
func (c *Client) AnalyzeErrors(ctx context.Context, studentErrors []map[string]any, subject string) Result[ErrorAnalysis] {
	if studentErrors == nil {
		studentErrors = []map[string]any{}
	}
	req := ErrorAnalysisRequest{StudentErrors: studentErrors, Subject: subject}
	return call(ctx, c, EndpointErrorAnalysis, req, fallbackErrorAnalysis)
}

// GetProviderStatus reports which model providers the service can reach.
// On failure the result carries only an error message.
func (c *Client) GetProviderStatus(ctx context.Context) Result[ProviderStatus] {
	return call(ctx, c, EndpointProviderStatus, nil, fallbackStatus)
}

// BatchEvaluate grades evaluations one after another. The output has the
// same length and order as the input, and each item falls back on its own.
func (c *Client) BatchEvaluate(ctx context.Context, evaluations []Evaluation) []BatchItem {
	items := make([]BatchItem, 0, len(evaluations))
	for _, ev := range evaluations {
		res := c.EvaluateAnswer(ctx, ev.Question, ev.Answer, ev.Type, ev.Context)
		items = append(items, BatchItem{Evaluation: ev, Result: res.Value, Fallback: res.Fallback})
	}
	return items
}
