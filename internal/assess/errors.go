package assess

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrStatus indicates the service answered with a non-2xx status.
type ErrStatus struct {
	Code int
	Body string
}

func (e *ErrStatus) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("assessment service returned status %d", e.Code)
	}
	return fmt.Sprintf("assessment service returned status %d: %s", e.Code, e.Body)
}

// ErrRateLimit indicates the service returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrUnavailable indicates the service is down or unreachable.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assessment service unavailable: %v", e.Err)
	}
	return "assessment service unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates a 2xx body that is not JSON or does not match
// the endpoint's schema.
type ErrInvalidResponse struct {
	Endpoint Endpoint
	Content  json.RawMessage
	Err      error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid %s response: %v", e.Endpoint, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }
