package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/attachehq/attache/logging"
	"github.com/attachehq/attache/memory"
	"github.com/attachehq/attache/model"
	"github.com/attachehq/attache/orchestrator"
	"github.com/attachehq/attache/tool"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// DefaultChatAgent is the agent /v1/chat dispatches to.
const DefaultChatAgent = "general"

// Options configures a Server.
type Options struct {
	// Addr is the listen address. Defaults to DefaultAddr.
	Addr string

	// ChatAgent names the agent behind /v1/chat. Defaults to
	// DefaultChatAgent.
	ChatAgent string

	// Model serves direct tool invocations that are model-backed.
	Model model.Model

	// MaxModelCalls bounds model calls per direct tool invocation; 0 is
	// unlimited.
	MaxModelCalls int

	// ReadTimeout guards against slow clients. Defaults to 30s.
	ReadTimeout time.Duration

	// Logger receives request events.
	Logger logging.Logger
}

// Server is the HTTP surface over the orchestrator, memory service and
// tool registry.
type Server struct {
	app   *fiber.App
	orch  *orchestrator.Orchestrator
	mem   *memory.Service
	tools *tool.Registry

	model         model.Model
	addr          string
	chatAgent     string
	maxModelCalls int
	logger        logging.Logger
}

// New builds the server and registers its routes.
func New(orch *orchestrator.Orchestrator, mem *memory.Service, tools *tool.Registry, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:        DefaultAddr,
		ChatAgent:   DefaultChatAgent,
		ReadTimeout: 30 * time.Second,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	app := fiber.New(fiber.Config{
		AppName:               "attache",
		ReadTimeout:           opts.ReadTimeout,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:           app,
		orch:          orch,
		mem:           mem,
		tools:         tools,
		model:         opts.Model,
		addr:          opts.Addr,
		chatAgent:     opts.ChatAgent,
		maxModelCalls: opts.MaxModelCalls,
		logger:        opts.Logger,
	}

	app.Use(s.requestLogger())
	s.registerRoutes()

	return s
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Listen serves requests on the configured address and blocks until the
// server shuts down.
func (s *Server) Listen() error {
	s.logger.Info("server.listen", "addr", s.addr)

	return s.app.Listen(s.addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server.shutdown")

	return s.app.ShutdownWithContext(ctx)
}

// requestLogger emits one debug line per handled request.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		s.logger.Debug("server.request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
		)

		return err
	}
}
