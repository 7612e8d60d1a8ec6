// Package server exposes the relay over HTTP. The surface is small: one
// chat endpoint, a status endpoint mirroring the relay's liveness
// report, recent history, the agent roster, and the usual health and
// metrics plumbing.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/promptrelay/promptrelay"
	"github.com/promptrelay/promptrelay/core"
	"github.com/promptrelay/promptrelay/logging"
)

const defaultHistoryLimit = 5

// Options configures the HTTP server.
type Options struct {
	// AppName shows up in the fiber banner and Server header.
	AppName string
	// AllowOrigins is the CORS allowlist. Defaults to "*".
	AllowOrigins string
	// RateLimit is requests per second per client IP; RateBurst the
	// bucket size. Zero values fall back to sensible defaults.
	RateLimit float64
	RateBurst int
	// Metrics controls the Prometheus middleware and /metrics endpoint.
	// Disabled in tests to avoid duplicate collector registration.
	Metrics bool
	// RequestLog controls the per-request access log middleware.
	RequestLog bool
	// ReadTimeout and WriteTimeout bound the HTTP exchange. They must
	// exceed the longest provider budget or responses get cut off.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Logger receives request-scoped entries. Defaults to NoOp.
	Logger logging.Logger
}

// Server wraps a fiber app around a Relay.
type Server struct {
	app    *fiber.App
	relay  *promptrelay.Relay
	logger logging.Logger
}

// New builds the app, mounts middleware and registers all routes.
func New(relay *promptrelay.Relay, optFns ...func(o *Options)) *Server {
	opts := Options{
		AppName:      "promptrelay",
		AllowOrigins: "*",
		RateLimit:    5,
		RateBurst:    10,
		Metrics:      true,
		RequestLog:   true,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	app := fiber.New(fiber.Config{
		AppName:      opts.AppName,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	app.Use(recover.New())
	if opts.RequestLog {
		app.Use(fiberlogger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	if opts.Metrics {
		prom := fiberprometheus.New(opts.AppName)
		prom.RegisterAt(app, "/metrics")
		app.Use(prom.Middleware)
	}

	s := &Server{app: app, relay: relay, logger: opts.Logger}

	app.Get("/healthz", s.handleHealthz)

	api := app.Group("/api", rateLimitMiddleware(newClientLimiter(opts.RateLimit, opts.RateBurst)))
	api.Post("/chat", s.handleChat)
	api.Get("/status", s.handleStatus)
	api.Get("/history", s.handleHistory)
	api.Get("/agents", s.handleAgents)

	return s
}

// App returns the underlying fiber application, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("server.listen addr=%s", addr)
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// chatRequest is the inbound JSON shape of POST /api/chat.
type chatRequest struct {
	Message  string `json:"message"`
	Agent    string `json:"agent,omitempty"`
	Provider string `json:"provider,omitempty"`
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var body chatRequest
	if err := c.BodyParser(&body); err != nil {
		return clientError(c, "invalid JSON body")
	}

	resp, err := s.relay.Submit(c.UserContext(), core.Request{
		Text:     body.Message,
		Agent:    body.Agent,
		Provider: body.Provider,
	})
	switch {
	case err == nil:
	case errors.Is(err, core.ErrEmptyMessage),
		errors.Is(err, core.ErrUnknownAgent),
		errors.Is(err, core.ErrUnknownProvider):
		return clientError(c, err.Error())
	default:
		s.logger.Error("server.chat unexpected error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "internal error",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"response": resp,
	})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.relay.Status(c.UserContext()))
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit <= 0 {
		return clientError(c, "limit must be positive")
	}
	exchanges, err := s.relay.Recent(limit)
	if err != nil {
		s.logger.Error("server.history read failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "history unavailable",
		})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"exchanges": exchanges,
	})
}

func (s *Server) handleAgents(c *fiber.Ctx) error {
	roster := s.relay.Agents()
	names := roster.Names()
	agents := make([]fiber.Map, 0, len(names))
	for _, name := range names {
		a, _ := roster.Get(name)
		agents = append(agents, fiber.Map{
			"name":        a.Name,
			"description": a.Description,
			"triggers":    a.Triggers,
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"default": roster.Default().Name,
		"agents":  agents,
	})
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func clientError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}
