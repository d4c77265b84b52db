package assess

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxReplyBytes bounds how much of a response body is read.
const maxReplyBytes = 4 << 20

// HTTPTransport speaks JSON over HTTP to the assessment service.
type HTTPTransport struct {
	baseURL *url.URL
	token   string
	client  *http.Client
}

// NewHTTPTransport creates an HTTPTransport. A nil client uses a client with
// the configured timeout.
func NewHTTPTransport(cfg HTTPConfig, client *http.Client) (*HTTPTransport, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("assess: base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must be http or https", cfg.BaseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPTransport{baseURL: u, token: cfg.Token, client: client}, nil
}

// Name returns "http".
func (t *HTTPTransport) Name() string { return "http" }

// URL returns the absolute URL of an endpoint.
func (t *HTTPTransport) URL(e Endpoint) string {
	return t.baseURL.JoinPath(string(e)).String()
}

func (t *HTTPTransport) Send(ctx context.Context, call Call) (*Reply, error) {
	method := call.Endpoint.Method()

	var body io.Reader
	if method != http.MethodGet {
		data, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", call.Endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.URL(call.Endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", call.Endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ErrUnavailable{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, &ErrUnavailable{Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, data)
	}

	if !json.Valid(data) {
		return nil, &ErrInvalidResponse{
			Endpoint: call.Endpoint,
			Content:  data,
			Err:      errors.New("body is not valid JSON"),
		}
	}

	return &Reply{Content: data, StatusCode: resp.StatusCode}, nil
}

// statusError maps a non-2xx response to a typed error.
func statusError(resp *http.Response, body []byte) error {
	se := &ErrStatus{Code: resp.StatusCode, Body: snippet(body)}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter(resp.Header.Get("Retry-After")), Err: se}
	case resp.StatusCode >= 500:
		return &ErrUnavailable{Err: se}
	}
	return se
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
