package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit    int       // max results (0 = unlimited)
	Endpoint string    // exact endpoint match ("" = any)
	From     time.Time // created_at >= From
	To       time.Time // created_at <= To
}

// CallEventData captures a single call to the assessment service.
type CallEventData struct {
	Transport    string
	Endpoint     string
	StatusCode   int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// CallEvent is a persisted CallEventData.
type CallEvent struct {
	ID        int64
	CreatedAt time.Time
	CallEventData
}

// EventRepo provides append access to assessment call events.
type EventRepo interface {
	// AppendCall records an assessment service call.
	AppendCall(ctx context.Context, data CallEventData) error
}

// AttemptHistoryKey is the fixed storage key of the test attempt history.
const AttemptHistoryKey = "aiTestHistory"
