package assess

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"https", func(c *Config) { c.HTTP.BaseURL = "https://example.com/api/ai" }, false},
		{"empty base", func(c *Config) { c.HTTP.BaseURL = "" }, true},
		{"relative base", func(c *Config) { c.HTTP.BaseURL = "/api/ai" }, true},
		{"negative timeout", func(c *Config) { c.HTTP.Timeout = -time.Second }, true},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, true},
		{"bad multiplier", func(c *Config) { c.Retry.MaxAttempts = 3; c.Retry.Multiplier = 0.5 }, true},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:5000/api/ai", cfg.HTTP.BaseURL)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
	assert.Zero(t, cfg.HTTP.Timeout)
	assert.Zero(t, cfg.RateLimit)
}

func TestRateLimitHonorsContext(t *testing.T) {
	mock := NewMockTransport(MockReply{Content: json.RawMessage(`{}`)})
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	tr := WithRateLimit(mock, limiter)

	_, err := tr.Send(context.Background(), Call{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = tr.Send(ctx, Call{})
	assert.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRateLimitNilLimiter(t *testing.T) {
	mock := NewMockTransport()
	assert.Same(t, mock, WithRateLimit(mock, nil))
}

func TestProviderStatusJSON(t *testing.T) {
	var s ProviderStatus
	require.NoError(t, json.Unmarshal([]byte(`{"a":{"available":true,"type":"A"}}`), &s))
	assert.Equal(t, map[string]ProviderInfo{"a": {Available: true, Type: "A"}}, s.Providers)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"available":true,"type":"A"}}`, string(data))

	require.NoError(t, json.Unmarshal([]byte(`{"error":"nope"}`), &s))
	assert.Equal(t, "nope", s.Error)
	assert.Empty(t, s.Providers)
}

func TestValidateReplySchemas(t *testing.T) {
	tests := []struct {
		endpoint Endpoint
		reply    string
		valid    bool
	}{
		{EndpointGenerate, `{"question":"Q","correctAnswer":1}`, true},
		{EndpointGenerate, `{"question":"Q","correctAnswer":"text"}`, true},
		{EndpointGenerate, `{"question":""}`, false},
		{EndpointGenerate, `{"question":"Q","options":[1,2]}`, false},
		{EndpointExplain, `{"explanation":"E","key_concepts":["a"]}`, true},
		{EndpointConversation, `{"response_type":"x"}`, false},
		{EndpointLearningPath, `{"goals":["g"]}`, true},
		{EndpointLearningPath, `[]`, false},
		{EndpointErrorAnalysis, `{"error_patterns":[{"pattern":"p"}]}`, true},
		{EndpointProviderStatus, `{"x":{"available":"yes"}}`, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.endpoint)+tt.reply, func(t *testing.T) {
			err := validateReply(tt.endpoint, json.RawMessage(tt.reply))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
