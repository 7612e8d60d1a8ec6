// Package openai provides an implementation of provider.Provider using the
// OpenAI Chat Completions API. Because the wire format is the de-facto
// standard for hosted and local model servers alike, the same adapter also
// serves OpenAI-compatible backends (Mistral, DeepSeek, Ollama-style local
// endpoints) via the BaseURL option.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/promptrelay/promptrelay/core"
	"github.com/promptrelay/promptrelay/provider"
)

// Options configure the OpenAI-compatible provider adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Name                string
	Vendor              string // reported in Info; defaults to "openai"
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string // empty means the official OpenAI endpoint
}

// Provider wraps the OpenAI Chat Completions API behind the generic
// provider.Provider interface.
type Provider struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI-compatible provider using the official client.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Name:                "openai",
		Vendor:              "openai",
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(clientOpts...)
	return &Provider{client: &client, opts: opts}
}

// NewFromClient creates a new provider from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{
		Name:                "openai",
		Vendor:              "openai",
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

// Invoke sends the request as a chat completion and returns the first
// choice's message content.
func (p *Provider) Invoke(ctx context.Context, req core.Request) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Text))

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               p.opts.Model,
		Temperature:         openai.Float(p.opts.Temperature),
		MaxCompletionTokens: openai.Int(p.opts.MaxCompletionTokens),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s api error: %w", p.opts.Vendor, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s api: no choices returned", p.opts.Vendor)
	}

	return resp.Choices[0].Message.Content, nil
}

// Ping verifies the adapter is configured to reach its endpoint. Local
// OpenAI-compatible servers typically run without credentials, so a
// missing key only fails the probe when no custom BaseURL is set.
func (p *Provider) Ping(context.Context) error {
	if p.opts.APIKey == "" && p.opts.BaseURL == "" {
		return fmt.Errorf("%s provider %q: no API key configured", p.opts.Vendor, p.opts.Name)
	}
	return nil
}

// Info returns metadata describing this provider implementation.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		Name:   p.opts.Name,
		Vendor: p.opts.Vendor,
		Model:  p.opts.Model,
	}
}
