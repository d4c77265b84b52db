package assess

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockTransport(
		MockReply{Content: json.RawMessage(`{"ok":true}`)},
	)
	tr := WithRetry(mock, retryConfig())

	reply, err := tr.Send(context.Background(), Call{Endpoint: EndpointEvaluate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(reply.Content) != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", reply.Content)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockTransport(
		MockReply{Err: &ErrUnavailable{Err: errors.New("down")}},
		MockReply{Content: json.RawMessage(`{"ok":true}`)},
	)
	tr := WithRetry(mock, retryConfig())

	if _, err := tr.Send(context.Background(), Call{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	mock := NewMockTransport(
		MockReply{Err: &ErrUnavailable{Err: errors.New("down")}},
		MockReply{Err: &ErrUnavailable{Err: errors.New("down")}},
		MockReply{Err: &ErrUnavailable{Err: errors.New("down")}},
	)
	tr := WithRetry(mock, retryConfig())

	if _, err := tr.Send(context.Background(), Call{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_DefaultSingleAttempt(t *testing.T) {
	mock := NewMockTransport(
		MockReply{Err: &ErrUnavailable{}},
		MockReply{Content: json.RawMessage(`{}`)},
	)
	tr := WithRetry(mock, DefaultConfig().Retry)

	if _, err := tr.Send(context.Background(), Call{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_ClientErrorNotRetried(t *testing.T) {
	mock := NewMockTransport(
		MockReply{Err: &ErrStatus{Code: 400}},
	)
	tr := WithRetry(mock, retryConfig())

	_, err := tr.Send(context.Background(), Call{})
	var st *ErrStatus
	if !errors.As(err, &st) {
		t.Fatalf("expected ErrStatus, got %T", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	mock := NewMockTransport(
		MockReply{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
		MockReply{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
		MockReply{Content: json.RawMessage(`{}`)},
	)
	tr := WithRetry(mock, retryConfig())

	if _, err := tr.Send(context.Background(), Call{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_ContextCanceledNotRetried(t *testing.T) {
	mock := NewMockTransport(
		MockReply{Err: context.Canceled},
	)
	tr := WithRetry(mock, retryConfig())

	_, err := tr.Send(context.Background(), Call{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_RateLimitRespectsRetryAfter(t *testing.T) {
	r := &RetryTransport{config: retryConfig()}
	wait := r.backoff(0, &ErrRateLimit{RetryAfter: 5 * time.Millisecond})
	if wait != 5*time.Millisecond {
		t.Fatalf("expected 5ms, got %s", wait)
	}

	// Capped at MaxWait.
	wait = r.backoff(0, &ErrRateLimit{RetryAfter: time.Hour})
	if wait != 10*time.Millisecond {
		t.Fatalf("expected 10ms cap, got %s", wait)
	}
}

func TestRetry_BackoffBounds(t *testing.T) {
	r := &RetryTransport{config: retryConfig()}
	for attempt := range 6 {
		wait := r.backoff(attempt, errors.New("x"))
		if wait < 0 || wait > 12*time.Millisecond {
			t.Fatalf("attempt %d: wait %s out of bounds", attempt, wait)
		}
	}
}

func TestRetry_Classify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want retryClass
	}{
		{"canceled", context.Canceled, retryNever},
		{"wrapped deadline", &ErrUnavailable{Err: context.DeadlineExceeded}, retryNever},
		{"invalid reply", &ErrInvalidResponse{Endpoint: EndpointEvaluate}, retryOnce},
		{"rate limited", &ErrRateLimit{}, retryAlways},
		{"server error", &ErrUnavailable{Err: &ErrStatus{Code: 503}}, retryAlways},
		{"bad request", &ErrStatus{Code: 400}, retryNever},
		{"unknown", errors.New("boom"), retryAlways},
	}
	for _, tt := range tests {
		if got := classify(tt.err); got != tt.want {
			t.Errorf("%s: classify = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRetry_SchemaMismatchRetriedOnce(t *testing.T) {
	mock := NewMockTransport(
		MockReply{Content: json.RawMessage(`{"feedback":"missing fields"}`)},
		MockReply{Content: json.RawMessage(`{"correct":true,"score":50}`)},
	)
	tr := WithRetry(WithValidation(mock), retryConfig())

	reply, err := tr.Send(context.Background(), Call{Endpoint: EndpointEvaluate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(reply.Content) != `{"correct":true,"score":50}` {
		t.Fatalf("unexpected reply %s", reply.Content)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_SchemaMismatchGivesUpAfterSecondTry(t *testing.T) {
	bad := MockReply{Content: json.RawMessage(`{"score":500}`)}
	mock := NewMockTransport(bad, bad, MockReply{Content: json.RawMessage(`{"correct":true,"score":50}`)})
	tr := WithRetry(WithValidation(mock), retryConfig())

	_, err := tr.Send(context.Background(), Call{Endpoint: EndpointEvaluate})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}
