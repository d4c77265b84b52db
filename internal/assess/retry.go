package assess

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// retryClass says how a failed call may be repeated.
type retryClass int

const (
	retryNever retryClass = iota
	retryOnce             // malformed replies get a single second chance
	retryAlways
)

// classify maps a transport error to its retry class.
func classify(err error) retryClass {
	var (
		invalid *ErrInvalidResponse
		limited *ErrRateLimit
		down    *ErrUnavailable
		status  *ErrStatus
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	case errors.As(err, &limited), errors.As(err, &down):
		return retryAlways
	case errors.As(err, &status):
		// A 4xx other than 429 will not change on retry.
		return retryNever
	default:
		return retryAlways
	}
}

// RetryTransport repeats transient failures with exponential backoff and jitter.
type RetryTransport struct {
	inner  Transport
	config RetryConfig
}

// WithRetry wraps t with retry logic. MaxAttempts below 2 disables retries.
func WithRetry(t Transport, cfg RetryConfig) Transport {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryTransport{inner: t, config: cfg}
}

func (r *RetryTransport) Send(ctx context.Context, call Call) (*Reply, error) {
	var (
		err         error
		usedOnce    bool
		lastAttempt = r.config.MaxAttempts - 1
	)
	for attempt := 0; attempt <= lastAttempt; attempt++ {
		var reply *Reply
		reply, err = r.inner.Send(ctx, call)
		if err == nil {
			return reply, nil
		}

		switch classify(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if usedOnce {
				return nil, err
			}
			usedOnce = true
		}
		if attempt == lastAttempt {
			break
		}

		timer := time.NewTimer(r.backoff(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, err
}

func (r *RetryTransport) Name() string {
	return r.inner.Name()
}

// backoff is the pause before retrying after attempt failed with err. A
// server-provided Retry-After wins, capped at MaxWait.
func (r *RetryTransport) backoff(attempt int, err error) time.Duration {
	cfg := r.config

	var limited *ErrRateLimit
	if errors.As(err, &limited) && limited.RetryAfter > 0 {
		if cfg.MaxWait > 0 {
			return min(limited.RetryAfter, cfg.MaxWait)
		}
		return limited.RetryAfter
	}

	base := math.Min(
		float64(cfg.InitialWait)*math.Pow(cfg.Multiplier, float64(attempt)),
		float64(cfg.MaxWait),
	)
	// ±20% jitter
	wait := base * (0.8 + 0.4*rand.Float64())
	return time.Duration(math.Max(wait, 0))
}
