package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/promptrelay/promptrelay/core"
	"github.com/promptrelay/promptrelay/logging"
	"github.com/promptrelay/promptrelay/provider"
	"golang.org/x/sync/errgroup"
)

// DefaultFallbackMessage is returned to callers whenever the backend
// outcome cannot be used. Internal detail never leaks into it.
const DefaultFallbackMessage = "I'm sorry, I couldn't reach the language model just now. Please try again in a moment."

// DefaultTimeout bounds invocations whose backend carries no budget of its own.
const DefaultTimeout = 15 * time.Second

// healthProbeTimeout bounds one provider reachability probe.
const healthProbeTimeout = 5 * time.Second

var (
	routeAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptrelay_route_attempts_total",
		Help: "Backend invocation attempts by provider.",
	}, []string{"provider"})
	routeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptrelay_route_outcomes_total",
		Help: "Routing outcomes by provider and status.",
	}, []string{"provider", "status"})
)

// Backend pairs a provider with its invocation budget.
type Backend struct {
	Provider provider.Provider
	// Timeout bounds one invocation. Zero means Options.DefaultTimeout.
	Timeout time.Duration
}

// Options holds configuration overrides passed to New().
type Options struct {
	// FallbackMessage replaces backend output in non-ok branches.
	FallbackMessage string
	// DefaultTimeout applies to backends without their own budget.
	DefaultTimeout time.Duration
	// Logger receives one entry per attempt. Defaults to NoOp.
	Logger logging.Logger
}

// Router resolves requests to providers and normalizes every outcome
// into a core.Response. Safe for concurrent use: the provider table is
// immutable after construction and each request carries its own timer.
type Router struct {
	backends        map[string]Backend
	defaultProvider string
	fallbackMessage string
	defaultTimeout  time.Duration
	logger          logging.Logger
}

// New constructs a Router over an immutable backend table.
func New(defaultProvider string, backends map[string]Backend, optFns ...func(o *Options)) (*Router, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("at least one backend is required")
	}
	if _, ok := backends[defaultProvider]; !ok {
		return nil, fmt.Errorf("default provider %q is not among the configured backends", defaultProvider)
	}

	opts := Options{
		FallbackMessage: DefaultFallbackMessage,
		DefaultTimeout:  DefaultTimeout,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	// Copy so later mutation of the caller's map cannot bypass immutability.
	table := make(map[string]Backend, len(backends))
	for name, b := range backends {
		if b.Provider == nil {
			return nil, fmt.Errorf("backend %q has no provider", name)
		}
		table[name] = b
	}

	return &Router{
		backends:        table,
		defaultProvider: defaultProvider,
		fallbackMessage: opts.FallbackMessage,
		defaultTimeout:  opts.DefaultTimeout,
		logger:          opts.Logger,
	}, nil
}

// DefaultProvider returns the name used when a request carries no override.
func (r *Router) DefaultProvider() string { return r.defaultProvider }

// Providers lists the configured backends' metadata.
func (r *Router) Providers() []provider.Info {
	infos := make([]provider.Info, 0, len(r.backends))
	for name, b := range r.backends {
		info := b.Provider.Info()
		info.Name = name
		infos = append(infos, info)
	}
	return infos
}

type invokeResult struct {
	text string
	err  error
}

// Route performs the single routing attempt for req.
//
// The returned error is non-nil only for client errors (core.ErrEmptyMessage,
// core.ErrUnknownProvider); every backend outcome, including failure and
// timeout, is absorbed into the Response with the matching status.
func (r *Router) Route(ctx context.Context, req core.Request) (core.Response, error) {
	if req.ID == "" {
		req.ID = core.NewID()
	}
	if strings.TrimSpace(req.Text) == "" {
		return core.Response{}, core.ErrEmptyMessage
	}

	name := req.Provider
	if name == "" {
		name = r.defaultProvider
	}
	backend, ok := r.backends[name]
	if !ok {
		return core.Response{}, fmt.Errorf("%w: %s", core.ErrUnknownProvider, name)
	}

	timeout := backend.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}

	info := backend.Provider.Info()
	routeAttempts.WithLabelValues(name).Inc()

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resCh := make(chan invokeResult, 1)
	go func() {
		text, err := backend.Provider.Invoke(cctx, req)
		resCh <- invokeResult{text: text, err: err}
	}()

	var status core.Status
	var message string
	var attemptErr error

	select {
	case <-cctx.Done():
		// Deadline or upstream cancellation: the invocation context is
		// cancelled, killing the subprocess or aborting the call. The
		// goroutine's eventual result is discarded via the buffered channel.
		status = core.StatusTimeout
		message = r.fallbackMessage
		attemptErr = cctx.Err()
	case res := <-resCh:
		switch {
		case res.err != nil && (errors.Is(res.err, context.DeadlineExceeded) || errors.Is(res.err, context.Canceled)):
			status = core.StatusTimeout
			message = r.fallbackMessage
			attemptErr = res.err
		case res.err != nil:
			status = core.StatusError
			message = r.fallbackMessage
			attemptErr = res.err
		case strings.TrimSpace(res.text) == "":
			// Completed but produced nothing usable.
			status = core.StatusError
			message = r.fallbackMessage
			attemptErr = fmt.Errorf("provider %s returned empty output", name)
		default:
			status = core.StatusOK
			message = res.text
		}
	}

	dur := time.Since(start)
	routeOutcomes.WithLabelValues(name, string(status)).Inc()
	r.logAttempt(name, info.Model, req, status, dur, attemptErr)

	return core.NewResponse(req.Agent, message, name, info.Model, status), nil
}

// logAttempt records one attempt. The logger sink is fire-and-forget by
// interface contract, so nothing here can abort the response path.
func (r *Router) logAttempt(name, model string, req core.Request, status core.Status, dur time.Duration, err error) {
	if err != nil {
		r.logger.Error("router.route provider=%s model=%s request_id=%s status=%s duration=%s prompt=%q error=%v",
			name, model, req.ID, status, dur, logging.Truncate(req.Text, 120), err)
		return
	}
	r.logger.Info("router.route provider=%s model=%s request_id=%s status=%s duration=%s prompt=%q",
		name, model, req.ID, status, dur, logging.Truncate(req.Text, 120))
}

// Health probes all backends concurrently and reports per-provider
// reachability. Providers without a probe are assumed reachable. The
// map value is "ok" or the probe error text.
func (r *Router) Health(ctx context.Context) map[string]string {
	results := make(map[string]string, len(r.backends))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for name, backend := range r.backends {
		g.Go(func() error {
			state := "ok"
			if pinger, ok := backend.Provider.(provider.Pinger); ok {
				pctx, cancel := context.WithTimeout(gctx, healthProbeTimeout)
				defer cancel()
				if err := pinger.Ping(pctx); err != nil {
					state = err.Error()
				}
			}
			mu.Lock()
			results[name] = state
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // probes never return errors; they report through the map

	return results
}
