// Package promptrelay provides a high-level façade over the provider
// router and its supporting services (agents, history, configuration &
// logging), enabling construction of an LLM relay in a few lines. Most
// applications interact with this package by:
//  1. Creating a Relay via New() (optionally overriding the defaults)
//  2. Submitting requests (Submit) and serving the responses
//  3. Exposing Status() for liveness reporting
//
// The façade delegates selection and invocation to router.Router while
// keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply
// a durable history store and a structured logger.
package promptrelay

import (
	"context"
	"fmt"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/promptrelay/promptrelay/agent"
	"github.com/promptrelay/promptrelay/config"
	"github.com/promptrelay/promptrelay/core"
	"github.com/promptrelay/promptrelay/history"
	"github.com/promptrelay/promptrelay/logging"
	"github.com/promptrelay/promptrelay/provider"
	"github.com/promptrelay/promptrelay/provider/anthropic"
	"github.com/promptrelay/promptrelay/provider/cli"
	"github.com/promptrelay/promptrelay/provider/openai"
	"github.com/promptrelay/promptrelay/router"
)

// Options configures the Relay instance.
type Options struct {
	// Config supplies the immutable process configuration. When nil it
	// is loaded from the environment.
	Config *config.Config

	// Backends overrides the provider table built from Config. Useful
	// for tests injecting mocks.
	Backends map[string]router.Backend

	// Agents overrides the default roster.
	Agents *agent.Registry

	// History stores exchanges (defaults to file-backed when Config
	// names a context directory, in-memory otherwise).
	History history.Store

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Relay is the high-level façade aggregating the router and services.
type Relay struct {
	cfg     *config.Config
	router  *router.Router
	agents  *agent.Registry
	history history.Store
	logger  logging.Logger
}

// StatusReport is the liveness snapshot served by Status().
type StatusReport struct {
	Message         string            `json:"message"`
	DefaultProvider string            `json:"llm_provider"`
	Providers       []provider.Info   `json:"providers"`
	Health          map[string]string `json:"health"`
	ActiveAgents    []string          `json:"active_agents"`
	Timestamp       string            `json:"timestamp"`
}

// New creates a new Relay with optional overrides. Any unset service is
// initialized from configuration or an in-memory implementation.
func New(optFns ...func(o *Options)) (*Relay, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		cfg = loaded
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	agents := opts.Agents
	if agents == nil {
		agents = agent.DefaultRegistry()
	}
	if _, ok := agents.Get(cfg.DefaultAgent); !ok {
		return nil, fmt.Errorf("default agent %q is not registered", cfg.DefaultAgent)
	}

	store := opts.History
	if store == nil {
		if cfg.ContextDir != "" {
			fs, err := history.NewFileStore(cfg.ContextDir)
			if err != nil {
				return nil, fmt.Errorf("open context directory: %w", err)
			}
			store = fs
		} else {
			store = history.NewInMemoryStore()
		}
	}

	backends := opts.Backends
	if backends == nil {
		built, err := BuildBackends(cfg)
		if err != nil {
			return nil, err
		}
		backends = built
	}

	rt, err := router.New(cfg.DefaultProvider, backends, func(o *router.Options) {
		o.Logger = logger
		o.DefaultTimeout = cfg.MessageTimeout
	})
	if err != nil {
		return nil, err
	}

	return &Relay{cfg: cfg, router: rt, agents: agents, history: store, logger: logger}, nil
}

// BuildBackends turns the configured provider table into router backends.
func BuildBackends(cfg *config.Config) (map[string]router.Backend, error) {
	backends := make(map[string]router.Backend, len(cfg.Providers))
	for name, spec := range cfg.Providers {
		p, err := buildProvider(name, spec)
		if err != nil {
			return nil, err
		}
		backends[name] = router.Backend{Provider: p, Timeout: spec.Timeout}
	}
	return backends, nil
}

func buildProvider(name string, spec config.ProviderSpec) (provider.Provider, error) {
	switch spec.Kind {
	case config.KindAnthropic:
		return anthropic.New(func(o *anthropic.Options) {
			o.Name = name
			if spec.Model != "" {
				o.Model = anthropicsdk.Model(spec.Model)
			}
			o.APIKey = spec.APIKey
		}), nil
	case config.KindOpenAI:
		return openai.New(func(o *openai.Options) {
			o.Name = name
			if name != "openai" {
				o.Vendor = name
			}
			if spec.Model != "" {
				o.Model = spec.Model
			}
			o.APIKey = spec.APIKey
			o.BaseURL = spec.BaseURL
		}), nil
	case config.KindCLI:
		return cli.New(func(o *cli.Options) {
			o.Name = name
			if spec.Command != "" {
				o.Command = spec.Command
			}
			o.Args = spec.Args
			if spec.Model != "" {
				o.Model = spec.Model
			}
		}), nil
	default:
		return nil, fmt.Errorf("provider %q: unknown kind %q", name, spec.Kind)
	}
}

// Submit processes one request end to end: detect the answering agent,
// handle the built-in orchestration replies, route to a backend, and
// persist the exchange. The returned error is non-nil only for client
// errors; backend failures surface as a Response with a non-ok status.
func (r *Relay) Submit(ctx context.Context, req core.Request) (core.Response, error) {
	if req.ID == "" {
		req.ID = core.NewID()
	}
	if strings.TrimSpace(req.Text) == "" {
		return core.Response{}, core.ErrEmptyMessage
	}

	selected, trigger, err := r.agents.Detect(req.Text, req.Agent)
	if err != nil {
		return core.Response{}, err
	}

	log := r.logger
	if rl, ok := log.(*logging.RelayLogger); ok {
		log = rl.WithRequest(req.ID, selected.Name)
	}

	// Orchestration questions are answered without touching a backend.
	if agent.IsLivenessCheck(req.Text) {
		resp := core.NewResponse(selected.Name, r.livenessMessage(), r.router.DefaultProvider(), "", core.StatusFallback)
		r.persist(req, resp)
		return resp, nil
	}
	if agent.IsHelpRequest(req.Text) {
		resp := core.NewResponse(selected.Name, helpMessage, r.router.DefaultProvider(), "", core.StatusFallback)
		r.persist(req, resp)
		return resp, nil
	}

	req.Agent = selected.Name
	if req.System == "" {
		req.System = selected.SystemPrompt()
	}
	log.Debug("relay.submit agent=%s trigger=%q provider=%s", selected.Name, trigger, req.Provider)

	resp, err := r.router.Route(ctx, req)
	if err != nil {
		return core.Response{}, err
	}

	r.persist(req, resp)
	return resp, nil
}

// persist appends the exchange; history is best-effort and must never
// abort the response path.
func (r *Relay) persist(req core.Request, resp core.Response) {
	if err := r.history.Append(core.NewExchange(req, resp)); err != nil {
		r.logger.Warn("relay.history append failed: %v", err)
	}
}

// Recent returns up to n stored exchanges, newest first.
func (r *Relay) Recent(n int) ([]core.Exchange, error) {
	return r.history.Recent(n)
}

// Status reports liveness: configured providers, their health probes and
// the active agent roster.
func (r *Relay) Status(ctx context.Context) StatusReport {
	return StatusReport{
		Message:         r.livenessMessage(),
		DefaultProvider: r.router.DefaultProvider(),
		Providers:       r.router.Providers(),
		Health:          r.router.Health(ctx),
		ActiveAgents:    r.agents.Names(),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}
}

// Agents exposes the roster, e.g. for the HTTP status surface.
func (r *Relay) Agents() *agent.Registry { return r.agents }

func (r *Relay) livenessMessage() string {
	return fmt.Sprintf(
		"Yes, this is live! The relay is connected and responding to requests. Currently using %s as the cognitive engine.",
		strings.ToUpper(r.router.DefaultProvider()),
	)
}

const helpMessage = "I can help with various tasks including:\n" +
	"- Orchestrating agent workflows\n" +
	"- Researching and retrieving information\n" +
	"- Designing workflows and processes\n" +
	"- Verifying and validating results\n" +
	"- Running system operations\n\n" +
	"Try asking about a specific task you need help with!"
