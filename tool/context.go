package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/logging"
	"github.com/attachehq/attache/model"
)

// Context carries the per-invocation state a tool may need: the
// caller's context, the session the call belongs to, a unique call ID
// for log correlation, and mediated access to the configured model.
type Context struct {
	ctx       context.Context
	sessionID string
	callID    string
	model     model.Model
	limiter   *core.ModelLimiter
	logger    logging.Logger
}

// NewContext derives a tool context from a turn context. Each call
// gets a fresh call ID; the model-call limiter is shared with the
// owning turn so model-backed tools count against the same budget as
// the agent's own fallback calls.
func NewContext(turnCtx *core.TurnContext, m model.Model) *Context {
	return &Context{
		ctx:       turnCtx.Context,
		sessionID: turnCtx.SessionID,
		callID:    core.NewID(),
		model:     m,
		limiter:   turnCtx.Limiter,
		logger:    turnCtx.Logger(),
	}
}

// Context returns the underlying context for cancellation and deadlines.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// SessionID returns the ID of the session the call belongs to.
func (c *Context) SessionID() string {
	return c.sessionID
}

// CallID returns the unique identifier of this tool call.
func (c *Context) CallID() string {
	return c.callID
}

// Model returns the configured model, or nil when the tool runs
// without one.
func (c *Context) Model() model.Model {
	return c.model
}

// Logger returns the logger for this call.
func (c *Context) Logger() logging.Logger {
	if c.logger == nil {
		return logging.NoOpLogger{}
	}
	return c.logger
}

// Complete sends a completion request to the configured model on
// behalf of the tool. It enforces the turn's model-call limit and
// fails when no model is configured.
func (c *Context) Complete(req model.Request) (*model.Response, error) {
	if c.model == nil {
		return nil, fmt.Errorf("no model configured")
	}

	if c.limiter != nil {
		if err := c.limiter.Increment(); err != nil {
			return nil, err
		}
	}

	start := time.Now()

	resp, err := c.model.Complete(c.Context(), req)
	if err != nil {
		c.Logger().Error("model.call.error",
			"call_id", c.callID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err.Error(),
		)
		return nil, err
	}

	c.Logger().Debug("model.call.success",
		"call_id", c.callID,
		"model", resp.Model,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, nil
}
