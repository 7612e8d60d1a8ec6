// Package cli provides a provider.Provider that shells out to a local
// command line tool (for example the Claude CLI), writing the prompt to
// stdin and reading the completion from stdout. Cancelling the context
// kills the subprocess, so a timed-out invocation never leaves a
// dangling process behind.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/promptrelay/promptrelay/core"
	"github.com/promptrelay/promptrelay/provider"
)

// Options configures the CLI provider adapter.
type Options struct {
	Name    string
	Command string   // binary to execute, resolved via PATH
	Args    []string // fixed arguments passed on every invocation
	Model   string   // label reported in Info; the tool picks the real model
}

// Provider executes a subprocess per invocation.
type Provider struct {
	opts Options
}

// New creates a CLI provider for the given command.
func New(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Name:    "cli",
		Command: "claude",
		Model:   "cli-default",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{opts: opts}
}

// Invoke runs the command with the prompt on stdin. The system
// instruction, when present, is prepended to the prompt separated by a
// blank line, matching how chat CLIs expect combined input.
func (p *Provider) Invoke(ctx context.Context, req core.Request) (string, error) {
	prompt := req.Text
	if req.System != "" {
		prompt = req.System + "\n\n" + req.Text
	}

	cmd := exec.CommandContext(ctx, p.opts.Command, p.opts.Args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		// The process was killed by cancellation; report the context
		// error so the router classifies this as a timeout.
		return "", ctx.Err()
	}
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("cli provider %q: %s: %w", p.opts.Name, detail, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Ping reports whether the configured command is present on PATH.
func (p *Provider) Ping(context.Context) error {
	if _, err := exec.LookPath(p.opts.Command); err != nil {
		return fmt.Errorf("cli provider %q: %w", p.opts.Name, err)
	}
	return nil
}

// Info returns metadata describing this CLI provider.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		Name:   p.opts.Name,
		Vendor: "cli",
		Model:  p.opts.Model,
	}
}
