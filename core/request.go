package core

import (
	"time"

	"github.com/google/uuid"
)

// Status is the enumerated outcome tag attached to every Response,
// regardless of whether the backend invocation succeeded.
type Status string

const (
	// StatusOK indicates the backend completed within budget with usable output.
	StatusOK Status = "ok"
	// StatusTimeout indicates the timeout elapsed before the backend finished.
	StatusTimeout Status = "timeout"
	// StatusError indicates the backend failed or produced unusable output.
	StatusError Status = "error"
	// StatusFallback indicates the message was produced without any backend,
	// e.g. a canned reply when no provider is configured.
	StatusFallback Status = "fallback"
)

// Request captures a single inbound message to be routed to a provider.
type Request struct {
	// ID correlates the request through logs and history. Assigned on
	// entry if empty.
	ID string `json:"id"`
	// Text is the user message. Must be non-empty.
	Text string `json:"text"`
	// Agent optionally names the agent persona that should answer.
	// Empty means detect-or-default.
	Agent string `json:"agent,omitempty"`
	// Provider optionally overrides the configured default provider.
	Provider string `json:"provider,omitempty"`
	// System optionally carries a system instruction for the backend.
	System string `json:"system,omitempty"`
}

// Response is the uniform result shape produced for every Request.
// The contract guarantees a well-formed Response in all branches: raw
// backend errors are logged, never surfaced here.
type Response struct {
	Agent     string `json:"agent"`
	Message   string `json:"message"`
	Provider  string `json:"provider"`
	Model     string `json:"model,omitempty"`
	Status    Status `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Exchange is one persisted request/response pair. History stores keep
// a bounded window of these for recent-context recall.
type Exchange struct {
	ID        string    `json:"id"`
	Agent     string    `json:"agent"`
	Message   string    `json:"message"`
	Response  Response  `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// NewID generates a new unique identifier for requests and exchanges.
func NewID() string { return uuid.NewString() }

// NewResponse constructs a Response stamped with the current UTC time.
func NewResponse(agent, message, provider, model string, status Status) Response {
	return Response{
		Agent:     agent,
		Message:   message,
		Provider:  provider,
		Model:     model,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewExchange pairs a request with its response for persistence.
func NewExchange(req Request, resp Response) Exchange {
	id := req.ID
	if id == "" {
		id = NewID()
	}
	return Exchange{
		ID:        id,
		Agent:     resp.Agent,
		Message:   req.Text,
		Response:  resp,
		Timestamp: time.Now().UTC(),
	}
}
