package assess

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abhisek/learnforge/internal/store"
)

// NewTransport creates the HTTP transport stack from configuration:
// caller → retry → rate limit → event log → validation → http. A nil repo
// skips event recording.
func NewTransport(cfg Config, client *http.Client, repo store.EventRepo, logger *zap.Logger) (Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assessment config: %w", err)
	}

	base, err := NewHTTPTransport(cfg.HTTP, client)
	if err != nil {
		return nil, fmt.Errorf("initializing http transport: %w", err)
	}

	t := WithValidation(base)
	if repo != nil {
		t = WithEventLog(t, repo, logger)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		t = WithRateLimit(t, rate.NewLimiter(rate.Limit(cfg.RateLimit), burst))
	}
	return WithRetry(t, cfg.Retry), nil
}
