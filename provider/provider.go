package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/promptrelay/promptrelay/core"
)

// Info contains metadata about a provider implementation.
type Info struct {
	Name   string `json:"name"`   // registry key, e.g. "claude"
	Vendor string `json:"vendor"` // "anthropic", "openai", "cli", etc.
	Model  string `json:"model"`
}

// Provider is the minimal interface required by the router to drive
// generation. Invoke performs exactly one backend call: a subprocess
// execution or an outbound API request. Implementations must honor
// context cancellation and release the underlying resource (kill the
// process, abort the call) when the context is done.
type Provider interface {
	Invoke(ctx context.Context, req core.Request) (string, error)

	// Info returns information about the provider implementation.
	Info() Info
}

// Pinger is an optional interface for providers that support a cheap
// reachability probe. The router's health report probes providers that
// implement it; others are assumed reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MockProvider is a lightweight in-memory Provider useful for tests.
// It counts invocations so tests can assert that rejected requests
// never reach a backend.
type MockProvider struct {
	info      Info
	responses map[string]string

	mu        sync.Mutex
	calls     int
	delay     time.Duration
	err       error
	pingErr   error
	cancelled bool
}

// NewMockProvider constructs a MockProvider with the given registry key.
func NewMockProvider(name, vendor string) *MockProvider {
	return &MockProvider{
		info:      Info{Name: name, Vendor: vendor, Model: "mock-model"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockProvider) AddResponse(prompt, response string) { m.responses[prompt] = response }

// SetDelay makes every invocation block for d before responding,
// cancellable via context.
func (m *MockProvider) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetError makes every invocation fail with err.
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetPingError makes Ping report err.
func (m *MockProvider) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

// Calls returns how many times Invoke has been entered.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Cancelled reports whether an invocation observed context cancellation.
func (m *MockProvider) Cancelled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled
}

// Invoke implements Provider; returns the canned response for the
// request text, or a generic echo when none is registered.
func (m *MockProvider) Invoke(ctx context.Context, req core.Request) (string, error) {
	m.mu.Lock()
	m.calls++
	delay, invokeErr := m.delay, m.err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.cancelled = true
			m.mu.Unlock()
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	if invokeErr != nil {
		return "", invokeErr
	}
	if resp, ok := m.responses[req.Text]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", req.Text), nil
}

// Info implements Provider interface.
func (m *MockProvider) Info() Info { return m.info }

// Ping implements Pinger.
func (m *MockProvider) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}
