package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/tool"
)

type askRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type dispatchRequest struct {
	SessionID string                 `json:"session_id"`
	Message   string                 `json:"message"`
	Tool      string                 `json:"tool"`
	Args      map[string]interface{} `json:"args"`
}

type invokeRequest struct {
	SessionID string                 `json:"session_id"`
	Args      map[string]interface{} `json:"args"`
}

type persistRequest struct {
	Text string `json:"text"`
}

func (s *Server) registerRoutes() {
	s.app.Get("/", s.handleIndex())
	s.app.Get("/healthz", s.handleHealthz())

	v1 := s.app.Group("/v1")

	v1.Post("/ask", s.handleAsk())
	v1.Post("/chat", s.handleChat())

	v1.Get("/agents", s.handleAgentCatalog())
	v1.Post("/agents/:name", s.handleAgentDispatch())

	v1.Get("/tools", s.handleToolCatalog())
	v1.Post("/tools/:name", s.handleToolInvoke())

	v1.Get("/sessions", s.handleSessionList())
	v1.Get("/sessions/:id/history", s.handleSessionHistory())
	v1.Post("/sessions/:id/compact", s.handleSessionCompact())

	v1.Get("/memory", s.handleMemoryFind())
	v1.Get("/memory/:key", s.handleMemoryLoad())
	v1.Put("/memory/:key", s.handleMemoryPersist())
	v1.Delete("/memory/:key", s.handleMemoryDelete())
}

func (s *Server) handleIndex() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "attache",
			"status":  "ok",
		})
	}
}

func (s *Server) handleHealthz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// handleAsk runs the full pipeline: classify, dispatch, respond.
func (s *Server) handleAsk() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req askRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		if req.Message == "" {
			return errorJSON(c, fiber.StatusBadRequest, "message is required")
		}

		resp, err := s.orch.Route(c.UserContext(), core.Request{
			SessionID: req.SessionID,
			Input:     req.Message,
		})
		if err != nil {
			return s.dispatchError(c, err)
		}

		return c.JSON(resp)
	}
}

// handleChat skips classification and talks to the configured chat
// agent directly.
func (s *Server) handleChat() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req askRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		if req.Message == "" {
			return errorJSON(c, fiber.StatusBadRequest, "message is required")
		}

		resp, err := s.orch.RouteTo(c.UserContext(), s.chatAgent, core.Request{
			SessionID: req.SessionID,
			Input:     req.Message,
		})
		if err != nil {
			return s.dispatchError(c, err)
		}

		return c.JSON(resp)
	}
}

func (s *Server) handleAgentCatalog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"agents": s.orch.Entries()})
	}
}

func (s *Server) handleAgentDispatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dispatchRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		if req.Message == "" && req.Tool == "" {
			return errorJSON(c, fiber.StatusBadRequest, "message or tool is required")
		}

		resp, err := s.orch.RouteTo(c.UserContext(), c.Params("name"), core.Request{
			SessionID: req.SessionID,
			Input:     req.Message,
			Tool:      req.Tool,
			Args:      req.Args,
		})
		if err != nil {
			return s.dispatchError(c, err)
		}

		return c.JSON(resp)
	}
}

func (s *Server) handleToolCatalog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"tools": s.tools.Definitions()})
	}
}

// handleToolInvoke calls one tool without going through an agent. The
// result is returned as-is: failed invocations are 200s with an error
// result, only an unknown tool name is a 404.
func (s *Server) handleToolInvoke() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req invokeRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}

		turnCtx := core.NewTurnContext(
			c.UserContext(),
			req.SessionID,
			core.AgentInfo{Name: "api", Type: "server"},
			s.maxModelCalls,
			s.logger,
		)

		result, err := s.tools.Invoke(tool.NewContext(turnCtx, s.model), c.Params("name"), req.Args)
		if err != nil {
			return s.dispatchError(c, err)
		}

		return c.JSON(result)
	}
}

func (s *Server) handleSessionList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"sessions": s.mem.Sessions()})
	}
}

func (s *Server) handleSessionHistory() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 0)

		history, err := s.mem.History(c.Params("id"), limit)
		if err != nil {
			return s.dispatchError(c, err)
		}

		return c.JSON(fiber.Map{
			"session_id": c.Params("id"),
			"messages":   history,
		})
	}
}

func (s *Server) handleSessionCompact() fiber.Handler {
	return func(c *fiber.Ctx) error {
		removed, err := s.mem.Compact(c.UserContext(), c.Params("id"))
		if err != nil {
			return s.dispatchError(c, err)
		}

		return c.JSON(fiber.Map{
			"session_id": c.Params("id"),
			"removed":    removed,
		})
	}
}

func (s *Server) handleMemoryFind() fiber.Handler {
	return func(c *fiber.Ctx) error {
		summaries, err := s.mem.FindSummaries(c.UserContext(), c.Query("q"))
		if err != nil {
			return s.dispatchError(c, err)
		}

		return c.JSON(fiber.Map{"summaries": summaries})
	}
}

func (s *Server) handleMemoryLoad() fiber.Handler {
	return func(c *fiber.Ctx) error {
		text, err := s.mem.LoadSummary(c.UserContext(), c.Params("key"))
		if err != nil {
			return s.dispatchError(c, err)
		}

		return c.JSON(fiber.Map{
			"key":  c.Params("key"),
			"text": text,
		})
	}
}

func (s *Server) handleMemoryPersist() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req persistRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		if req.Text == "" {
			return errorJSON(c, fiber.StatusBadRequest, "text is required")
		}

		if err := s.mem.PersistSummary(c.UserContext(), c.Params("key"), req.Text); err != nil {
			return s.dispatchError(c, err)
		}

		return statusJSON(c, "ok")
	}
}

func (s *Server) handleMemoryDelete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.mem.DeleteSummary(c.UserContext(), c.Params("key")); err != nil {
			return s.dispatchError(c, err)
		}

		return statusJSON(c, "deleted")
	}
}

// dispatchError maps routing and lookup failures onto HTTP statuses:
// unknown agent, session, summary and tool names are 404s, everything
// else a 500.
func (s *Server) dispatchError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, core.ErrAgentNotFound),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrSummaryNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	}

	var toolErr *tool.ToolError
	if errors.As(err, &toolErr) && toolErr.Code == tool.CodeUnknownTool {
		return errorJSON(c, fiber.StatusNotFound, toolErr.Message)
	}

	s.logger.Error("server.dispatch.error", "error", err.Error())

	return errorJSON(c, fiber.StatusInternalServerError, err.Error())
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func statusJSON(c *fiber.Ctx, status string) error {
	return c.JSON(fiber.Map{"status": status})
}
