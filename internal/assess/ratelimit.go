package assess

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitTransport paces outgoing calls with a token bucket.
type RateLimitTransport struct {
	inner   Transport
	limiter *rate.Limiter
}

// WithRateLimit wraps a Transport so each call waits for a token. A nil
// limiter returns t unchanged.
func WithRateLimit(t Transport, limiter *rate.Limiter) Transport {
	if limiter == nil {
		return t
	}
	return &RateLimitTransport{inner: t, limiter: limiter}
}

func (l *RateLimitTransport) Send(ctx context.Context, call Call) (*Reply, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.inner.Send(ctx, call)
}

func (l *RateLimitTransport) Name() string {
	return l.inner.Name()
}
