package assess

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/learnforge/internal/store"
)

type failingRepo struct{}

func (failingRepo) AppendCall(context.Context, store.CallEventData) error {
	return errors.New("disk full")
}

type memRepo struct {
	mu     sync.Mutex
	events []store.CallEventData
}

func (m *memRepo) AppendCall(_ context.Context, data store.CallEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
	return nil
}

func TestEventLogRecordsCalls(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer s.Close()

	mock := NewMockTransport(
		MockReply{Content: json.RawMessage(`{"correct":true,"score":80}`)},
		MockReply{Err: &ErrUnavailable{Err: &ErrStatus{Code: 503}}},
	)
	c, err := NewClient(WithEventLog(mock, s.CallEvents(), nil), Options{})
	require.NoError(t, err)

	ctx := context.Background()
	c.EvaluateAnswer(ctx, "q", "a", "", nil)
	c.EvaluateAnswer(ctx, "q", "a", "", nil)

	events, err := s.CallEvents().Query(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "evaluate", events[1].Endpoint)
	assert.Equal(t, "mock", events[1].Transport)
	assert.True(t, events[1].Success)
	assert.Equal(t, 200, events[1].StatusCode)

	assert.False(t, events[0].Success)
	assert.Equal(t, 503, events[0].StatusCode)
	assert.Contains(t, events[0].ErrorMessage, "503")
}

func TestEventLogFailureDoesNotFailCall(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mock := NewMockTransport(MockReply{Content: json.RawMessage(`{}`)})
	tr := WithEventLog(mock, failingRepo{}, zap.New(core))

	reply, err := tr.Send(context.Background(), Call{Endpoint: EndpointProviderStatus})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(reply.Content))
	assert.Equal(t, 1, logs.FilterMessage("failed to record assessment call").Len())
	assert.Equal(t, "mock", tr.Name())
}

func TestNewTransportWiresEventLog(t *testing.T) {
	_, srv := newFakeService(t)
	repo := &memRepo{}

	cfg := DefaultConfig()
	cfg.HTTP.BaseURL = srv.URL + "/api/ai"
	cfg.RateLimit = 1000
	tr, err := NewTransport(cfg, srv.Client(), repo, nil)
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), Call{Endpoint: EndpointEvaluate, Body: Evaluation{}})
	require.Error(t, err)

	require.Len(t, repo.events, 1)
	assert.Equal(t, "http", repo.events[0].Transport)
	assert.Equal(t, 404, repo.events[0].StatusCode)
	assert.False(t, repo.events[0].Success)
}

func TestNewTransportRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTP.BaseURL = "not a url"
	_, err := NewTransport(cfg, nil, nil, nil)
	assert.Error(t, err)
}
