package assess

import (
	"context"
	"encoding/json"
	"net/http"
)

// Endpoint names a remote operation. Every endpoint is rooted at the
// transport's base URL.
type Endpoint string

const (
	EndpointEvaluate       Endpoint = "evaluate"
	EndpointGenerate       Endpoint = "generate-question"
	EndpointExplain        Endpoint = "tutoring-explanation"
	EndpointConversation   Endpoint = "conversational-tutoring"
	EndpointLearningPath   Endpoint = "learning-path"
	EndpointErrorAnalysis  Endpoint = "error-analysis"
	EndpointProviderStatus Endpoint = "provider-status"
)

// Endpoints lists every remote operation.
var Endpoints = []Endpoint{
	EndpointEvaluate,
	EndpointGenerate,
	EndpointExplain,
	EndpointConversation,
	EndpointLearningPath,
	EndpointErrorAnalysis,
	EndpointProviderStatus,
}

// Method returns the HTTP method of the endpoint.
func (e Endpoint) Method() string {
	if e == EndpointProviderStatus {
		return http.MethodGet
	}
	return http.MethodPost
}

// Call is one request to the assessment service.
type Call struct {
	Endpoint Endpoint

	// Body is encoded as the JSON request body. Ignored for GET endpoints.
	Body any
}

// Reply is a successful response.
type Reply struct {
	// Content is the raw JSON body.
	Content json.RawMessage

	StatusCode int
}

// Transport carries calls to the assessment service.
type Transport interface {
	// Send performs the call. Any non-2xx status or transport failure is
	// returned as an error.
	Send(ctx context.Context, call Call) (*Reply, error)

	// Name identifies the transport in logs and events.
	Name() string
}
