package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/promptrelay/promptrelay/core"
	"github.com/promptrelay/promptrelay/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, mock *provider.MockProvider, timeout time.Duration) *Router {
	t.Helper()
	r, err := New("primary", map[string]Backend{
		"primary": {Provider: mock, Timeout: timeout},
	})
	require.NoError(t, err)
	return r
}

func TestNewValidation(t *testing.T) {
	_, err := New("primary", nil)
	assert.Error(t, err, "empty backend table rejected")

	mock := provider.NewMockProvider("other", "mock")
	_, err = New("primary", map[string]Backend{"other": {Provider: mock}})
	assert.Error(t, err, "default provider must be configured")

	_, err = New("primary", map[string]Backend{"primary": {}})
	assert.Error(t, err, "nil provider rejected")
}

func TestRouteOK(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	mock.AddResponse("What is the capital of France?", "Paris.")
	r := newTestRouter(t, mock, time.Second)

	resp, err := r.Route(context.Background(), core.Request{
		Text:     "What is the capital of France?",
		Agent:    "claudia",
		Provider: "primary",
	})
	require.NoError(t, err)

	assert.Equal(t, "claudia", resp.Agent)
	assert.Equal(t, "Paris.", resp.Message)
	assert.Equal(t, core.StatusOK, resp.Status)
	assert.Equal(t, "primary", resp.Provider)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Equal(t, 1, mock.Calls())
}

func TestRouteEmptyTextRejectedBeforeDispatch(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	r := newTestRouter(t, mock, time.Second)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := r.Route(context.Background(), core.Request{Text: text})
		assert.ErrorIs(t, err, core.ErrEmptyMessage)
	}
	assert.Zero(t, mock.Calls(), "no backend invocation for rejected input")
}

func TestRouteUnknownProviderRejectedBeforeDispatch(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	r := newTestRouter(t, mock, time.Second)

	_, err := r.Route(context.Background(), core.Request{Text: "hello", Provider: "nonexistent"})
	assert.ErrorIs(t, err, core.ErrUnknownProvider)
	assert.Zero(t, mock.Calls())
}

func TestRouteDefaultProviderUsed(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	r := newTestRouter(t, mock, time.Second)

	resp, err := r.Route(context.Background(), core.Request{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Provider)
	assert.Equal(t, core.StatusOK, resp.Status)
}

func TestRouteTimeout(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	mock.SetDelay(5 * time.Second)
	r := newTestRouter(t, mock, 50*time.Millisecond)

	start := time.Now()
	resp, err := r.Route(context.Background(), core.Request{Text: "slow request"})
	elapsed := time.Since(start)

	require.NoError(t, err, "timeouts are absorbed, never surfaced as errors")
	assert.Equal(t, core.StatusTimeout, resp.Status)
	assert.Equal(t, DefaultFallbackMessage, resp.Message)
	assert.Less(t, elapsed, time.Second, "resolved near the deadline, not after the mock's full sleep")
}

func TestRouteTimeoutCancelsInvocation(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	mock.SetDelay(time.Hour)
	r := newTestRouter(t, mock, 20*time.Millisecond)

	_, err := r.Route(context.Background(), core.Request{Text: "slow request"})
	require.NoError(t, err)

	// The invocation goroutine observes cancellation shortly after the race.
	assert.Eventually(t, mock.Cancelled, time.Second, 10*time.Millisecond,
		"underlying invocation must be cancelled, not abandoned")
}

func TestRouteBackendError(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	mock.SetError(errors.New("exit status 1"))
	r := newTestRouter(t, mock, time.Second)

	resp, err := r.Route(context.Background(), core.Request{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, resp.Status)
	assert.Equal(t, DefaultFallbackMessage, resp.Message)
	assert.NotContains(t, resp.Message, "exit status", "raw backend errors never reach callers")
}

func TestRouteEmptyOutputIsError(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	mock.AddResponse("hello", "   \n")
	r := newTestRouter(t, mock, time.Second)

	resp, err := r.Route(context.Background(), core.Request{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, resp.Status)
	assert.NotEmpty(t, resp.Message)
}

func TestRouteNoRetry(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	mock.SetError(errors.New("boom"))
	r := newTestRouter(t, mock, time.Second)

	_, err := r.Route(context.Background(), core.Request{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Calls(), "a single attempt per call, no automatic retries")
}

func TestRouteStatusAlwaysTerminal(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	r := newTestRouter(t, mock, time.Second)

	resp, err := r.Route(context.Background(), core.Request{Text: "any text"})
	require.NoError(t, err)
	assert.Contains(t, []core.Status{core.StatusOK, core.StatusTimeout, core.StatusError}, resp.Status)
	assert.NotEmpty(t, resp.Message)
}

func TestHealth(t *testing.T) {
	healthy := provider.NewMockProvider("primary", "mock")
	broken := provider.NewMockProvider("backup", "mock")
	broken.SetPingError(errors.New("no API key configured"))

	r, err := New("primary", map[string]Backend{
		"primary": {Provider: healthy},
		"backup":  {Provider: broken},
	})
	require.NoError(t, err)

	results := r.Health(context.Background())
	assert.Equal(t, "ok", results["primary"])
	assert.Contains(t, results["backup"], "no API key")
}

func TestProviders(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	r := newTestRouter(t, mock, time.Second)

	infos := r.Providers()
	require.Len(t, infos, 1)
	assert.Equal(t, "primary", infos[0].Name)
	assert.Equal(t, "mock", infos[0].Vendor)
}
