package core

import (
	"context"

	"github.com/attachehq/attache/logging"
)

// TurnContext carries the execution scope for a single request/response turn.
// It aggregates the ambient cancellation context, identifiers (session, turn,
// agent), the shared model-call limiter, and logging helpers.
//
// A turn context is created per incoming request and passed by reference
// through orchestrator, agent and tool layers; derived contexts share the
// limiter so the per-turn budget holds across handoffs.
type TurnContext struct {
	Context   context.Context
	SessionID string
	TurnID    string
	Agent     AgentInfo
	Limiter   *ModelLimiter

	*loggerAdapter
}

// NewTurnContext constructs a turn context with a fresh turn ID. maxModelCalls
// bounds model calls for the whole turn; 0 means unlimited.
func NewTurnContext(
	ctx context.Context,
	sessionID string,
	agent AgentInfo,
	maxModelCalls int,
	logger logging.Logger,
) *TurnContext {
	if ctx == nil {
		ctx = context.Background()
	}

	return &TurnContext{
		Context:       ctx,
		SessionID:     sessionID,
		TurnID:        NewID(),
		Agent:         agent,
		Limiter:       NewModelLimiter(maxModelCalls),
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (tc *TurnContext) Done() <-chan struct{} { return tc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (tc *TurnContext) Err() error { return tc.Context.Err() }

// WithAgent derives a context for a different agent handling the same turn.
// Turn ID, limiter and logger are shared with the parent.
func (tc *TurnContext) WithAgent(agent AgentInfo) *TurnContext {
	return &TurnContext{
		Context:       tc.Context,
		SessionID:     tc.SessionID,
		TurnID:        tc.TurnID,
		Agent:         agent,
		Limiter:       tc.Limiter,
		loggerAdapter: tc.loggerAdapter,
	}
}
