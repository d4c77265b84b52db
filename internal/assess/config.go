package assess

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DefaultBaseURL is where the assessment service is expected by default.
const DefaultBaseURL = "http://localhost:5000/api/ai"

// Config holds all assessment client configuration.
type Config struct {
	HTTP  HTTPConfig
	Retry RetryConfig

	// RateLimit caps outgoing calls per second. 0 disables pacing.
	RateLimit float64

	// Burst is the token bucket size when RateLimit is set. Default: 1.
	Burst int
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	BaseURL string

	// Token is sent as a bearer credential when set.
	Token string

	// Timeout bounds a single HTTP exchange. 0 leaves it to the transport.
	Timeout time.Duration
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults. Retries are off so
// a failing call falls back immediately.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			BaseURL: DefaultBaseURL,
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Burst: 1,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.HTTP.BaseURL == "" {
		return errors.New("base URL is required")
	}
	u, err := url.Parse(c.HTTP.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base URL %q must be an absolute http(s) URL", c.HTTP.BaseURL)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.HTTP.Timeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.MaxAttempts > 1 && c.Retry.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be at least 1, got %g", c.Retry.Multiplier)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %g", c.RateLimit)
	}
	return nil
}
