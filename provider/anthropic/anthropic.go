// Package anthropic provides a provider wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/promptrelay/promptrelay/core"
	"github.com/promptrelay/promptrelay/provider"
)

// Options configures the Anthropic provider adapter (registry name,
// model id, temperature, max tokens, API key). Extend via functional
// options to preserve stability.
type Options struct {
	Name        string
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Provider wraps the Anthropic Messages API behind the generic
// provider.Provider interface.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic provider using the official client.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Name:        "claude",
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Provider{
		client: &client,
		opts:   opts,
	}
}

// NewFromClient creates a new Anthropic provider from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{
		Name:        "claude",
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Provider{
		client: client,
		opts:   opts,
	}
}

// Invoke sends the request text (plus optional system instruction) to the
// Messages API and returns the concatenated text blocks of the reply.
func (p *Provider) Invoke(ctx context.Context, req core.Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       p.opts.Model,
		MaxTokens:   p.opts.MaxTokens,
		Temperature: anthropic.Float(p.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Text)),
		},
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return sb.String(), nil
}

// Ping verifies the adapter has credentials to reach the API. It does
// not perform a network round trip; a missing key is the common
// misconfiguration the health report should surface.
func (p *Provider) Ping(context.Context) error {
	if p.opts.APIKey == "" {
		return fmt.Errorf("anthropic provider %q: no API key configured", p.opts.Name)
	}
	return nil
}

// Info returns metadata describing this Anthropic provider implementation.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		Name:   p.opts.Name,
		Vendor: "anthropic",
		Model:  string(p.opts.Model),
	}
}
