package assess

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/learnforge/internal/logging"
	"github.com/abhisek/learnforge/internal/store"
)

// EventLogTransport is a decorator that records every call as an event.
type EventLogTransport struct {
	inner  Transport
	repo   store.EventRepo
	logger *zap.Logger
}

// WithEventLog wraps a Transport with event recording.
func WithEventLog(t Transport, repo store.EventRepo, logger *zap.Logger) Transport {
	return &EventLogTransport{inner: t, repo: repo, logger: logging.OrNop(logger)}
}

func (l *EventLogTransport) Send(ctx context.Context, call Call) (*Reply, error) {
	start := time.Now()
	reply, err := l.inner.Send(ctx, call)

	data := store.CallEventData{
		Transport:  l.inner.Name(),
		Endpoint:   string(call.Endpoint),
		LatencyMs:  time.Since(start).Milliseconds(),
		Success:    err == nil,
		StatusCode: statusCode(reply, err),
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// Recording must never fail the call.
	if logErr := l.repo.AppendCall(context.WithoutCancel(ctx), data); logErr != nil {
		l.logger.Warn("failed to record assessment call", zap.Error(logErr))
	}

	return reply, err
}

func (l *EventLogTransport) Name() string {
	return l.inner.Name()
}

// statusCode extracts the HTTP status of a call outcome, 0 when none was received.
func statusCode(reply *Reply, err error) int {
	if reply != nil {
		return reply.StatusCode
	}
	var st *ErrStatus
	if errors.As(err, &st) {
		return st.Code
	}
	return 0
}
