package assess

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
)

// MockReply is a canned reply for the MockTransport.
type MockReply struct {
	Content json.RawMessage
	Err     error
}

// MockTransport is a deterministic Transport for testing.
// It returns canned replies in FIFO order and records all calls.
type MockTransport struct {
	mu      sync.Mutex
	replies []MockReply
	Calls   []Call
}

// NewMockTransport creates a MockTransport with the given canned replies.
func NewMockTransport(replies ...MockReply) *MockTransport {
	return &MockTransport{replies: replies}
}

// Send returns the next canned reply or ErrUnavailable if the queue is empty.
func (m *MockTransport) Send(_ context.Context, call Call) (*Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, call)

	if len(m.replies) == 0 {
		return nil, &ErrUnavailable{}
	}

	r := m.replies[0]
	m.replies = m.replies[1:]

	if r.Err != nil {
		return nil, r.Err
	}
	return &Reply{Content: r.Content, StatusCode: http.StatusOK}, nil
}

// Name returns "mock".
func (m *MockTransport) Name() string {
	return "mock"
}

// CallCount returns the number of Send calls made.
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
