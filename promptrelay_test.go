package promptrelay

import (
	"context"
	"testing"
	"time"

	"github.com/promptrelay/promptrelay/config"
	"github.com/promptrelay/promptrelay/core"
	"github.com/promptrelay/promptrelay/history"
	"github.com/promptrelay/promptrelay/provider"
	"github.com/promptrelay/promptrelay/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Addr:              ":0",
		DefaultProvider:   "primary",
		DefaultAgent:      "claudia",
		HistoryLimit:      5,
		MessageTimeout:    time.Second,
		GenerationTimeout: time.Second,
		Providers:         map[string]config.ProviderSpec{},
	}
}

func newTestRelay(t *testing.T, mock *provider.MockProvider) *Relay {
	t.Helper()
	relay, err := New(func(o *Options) {
		o.Config = testConfig()
		o.Backends = map[string]router.Backend{
			"primary": {Provider: mock, Timeout: time.Second},
		}
	})
	require.NoError(t, err)
	return relay
}

func TestSubmitRoutesToBackend(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	mock.AddResponse("What is the capital of France?", "Paris.")
	relay := newTestRelay(t, mock)

	resp, err := relay.Submit(context.Background(), core.Request{
		Text:     "What is the capital of France?",
		Provider: "primary",
	})
	require.NoError(t, err)

	assert.Equal(t, "Paris.", resp.Message)
	assert.Equal(t, core.StatusOK, resp.Status)
	assert.Equal(t, "claudia", resp.Agent, "default agent answers untagged questions")
}

func TestSubmitEmptyMessage(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	relay := newTestRelay(t, mock)

	_, err := relay.Submit(context.Background(), core.Request{Text: "  "})
	assert.ErrorIs(t, err, core.ErrEmptyMessage)
	assert.Zero(t, mock.Calls())
}

func TestSubmitUnknownAgent(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	relay := newTestRelay(t, mock)

	_, err := relay.Submit(context.Background(), core.Request{Text: "hi", Agent: "nope"})
	assert.ErrorIs(t, err, core.ErrUnknownAgent)
	assert.Zero(t, mock.Calls())
}

func TestSubmitAgentDetection(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	relay := newTestRelay(t, mock)

	resp, err := relay.Submit(context.Background(), core.Request{Text: "please research quantum computing"})
	require.NoError(t, err)
	assert.Equal(t, "kalaw", resp.Agent)
}

func TestSubmitLivenessCheckSkipsBackend(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	relay := newTestRelay(t, mock)

	resp, err := relay.Submit(context.Background(), core.Request{Text: "is this live?"})
	require.NoError(t, err)

	assert.Equal(t, core.StatusFallback, resp.Status)
	assert.Contains(t, resp.Message, "live")
	assert.Zero(t, mock.Calls(), "liveness checks never reach a backend")
}

func TestSubmitHelpRequestSkipsBackend(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	relay := newTestRelay(t, mock)

	resp, err := relay.Submit(context.Background(), core.Request{Text: "what can you do?"})
	require.NoError(t, err)
	assert.Equal(t, core.StatusFallback, resp.Status)
	assert.Zero(t, mock.Calls())
}

func TestSubmitPersistsExchange(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	store := history.NewInMemoryStore()
	relay, err := New(func(o *Options) {
		o.Config = testConfig()
		o.Backends = map[string]router.Backend{"primary": {Provider: mock}}
		o.History = store
	})
	require.NoError(t, err)

	_, err = relay.Submit(context.Background(), core.Request{Text: "remember this"})
	require.NoError(t, err)

	recent, err := relay.Recent(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "remember this", recent[0].Message)
}

func TestStatusReport(t *testing.T) {
	mock := provider.NewMockProvider("primary", "mock")
	relay := newTestRelay(t, mock)

	report := relay.Status(context.Background())
	assert.Equal(t, "primary", report.DefaultProvider)
	assert.Contains(t, report.ActiveAgents, "claudia")
	assert.Equal(t, "ok", report.Health["primary"])
	assert.NotEmpty(t, report.Timestamp)
}

func TestBuildBackends(t *testing.T) {
	cfg := testConfig()
	cfg.Providers = map[string]config.ProviderSpec{
		"claude": {Kind: config.KindAnthropic, Model: "claude-3-5-sonnet-20241022"},
		"local":  {Kind: config.KindOpenAI, Model: "llama3", BaseURL: "http://localhost:11434/v1"},
		"llmcli": {Kind: config.KindCLI, Command: "llmcli", Args: []string{"ask"}},
	}

	backends, err := BuildBackends(cfg)
	require.NoError(t, err)
	require.Len(t, backends, 3)
	assert.Equal(t, "anthropic", backends["claude"].Provider.Info().Vendor)
	assert.Equal(t, "local", backends["local"].Provider.Info().Vendor)
	assert.Equal(t, "cli", backends["llmcli"].Provider.Info().Vendor)
}

func TestBuildBackendsUnknownKind(t *testing.T) {
	cfg := testConfig()
	cfg.Providers = map[string]config.ProviderSpec{"weird": {Kind: "telepathy"}}

	_, err := BuildBackends(cfg)
	assert.Error(t, err)
}
