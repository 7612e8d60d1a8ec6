package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/promptrelay/promptrelay/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var (
	_ Provider = (*MockProvider)(nil)
	_ Pinger   = (*MockProvider)(nil)
)

func TestMockProviderCannedResponse(t *testing.T) {
	p := NewMockProvider("primary", "mock")
	p.AddResponse("What is the capital of France?", "Paris.")

	out, err := p.Invoke(context.Background(), core.Request{Text: "What is the capital of France?"})
	require.NoError(t, err)
	assert.Equal(t, "Paris.", out)
	assert.Equal(t, 1, p.Calls())
}

func TestMockProviderDefaultEcho(t *testing.T) {
	p := NewMockProvider("primary", "mock")

	out, err := p.Invoke(context.Background(), core.Request{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: hello", out)
}

func TestMockProviderError(t *testing.T) {
	p := NewMockProvider("primary", "mock")
	p.SetError(errors.New("backend exploded"))

	_, err := p.Invoke(context.Background(), core.Request{Text: "hello"})
	assert.Error(t, err)
}

func TestMockProviderDelayHonorsCancellation(t *testing.T) {
	p := NewMockProvider("primary", "mock")
	p.SetDelay(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Invoke(ctx, core.Request{Text: "slow"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second, "must return at the deadline, not after the full delay")
	assert.True(t, p.Cancelled())
}
