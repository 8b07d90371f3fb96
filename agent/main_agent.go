package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/logging"
	"github.com/attachehq/attache/memory"
	"github.com/attachehq/attache/model"
	"github.com/attachehq/attache/tool"
)

// DefaultMaxHistory bounds the conversation window handed to the model
// fallback when MaxHistory is not set.
const DefaultMaxHistory = 20

// MainAgentOptions configures a MainAgent.
type MainAgentOptions struct {
	// Model answers inputs no matcher claims. A nil model turns unmatched
	// input into a turn error.
	Model model.Model

	// Matchers is the deterministic routing table consulted before the
	// model fallback. Defaults to tool.DefaultMatchers().
	Matchers []tool.Matcher

	// MaxHistory is the number of trailing messages sent to the model
	// fallback. Defaults to DefaultMaxHistory.
	MaxHistory int

	// Logger receives agent turn events.
	Logger logging.Logger
}

// MainAgent handles one turn at a time: it records the user message,
// routes the input to a matched tool or the model fallback, records the
// outcome and returns a tagged response. Tool failures travel inside the
// response as error results; Handle returns a non-nil error only when
// the turn itself cannot complete (unknown tool, storage failure, model
// failure, exhausted call budget).
type MainAgent struct {
	*BaseAgent

	registry   *tool.Registry
	memory     *memory.Service
	model      model.Model
	matchers   []tool.Matcher
	maxHistory int
	kind       string
	logger     logging.Logger
}

var _ core.Agent = (*MainAgent)(nil)

// NewMainAgent creates a main agent over the given tool registry and
// memory service.
func NewMainAgent(config core.AgentConfig, registry *tool.Registry, mem *memory.Service, optFns ...func(o *MainAgentOptions)) *MainAgent {
	opts := MainAgentOptions{
		Matchers:   tool.DefaultMatchers(),
		MaxHistory: DefaultMaxHistory,
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxHistory <= 0 {
		opts.MaxHistory = DefaultMaxHistory
	}

	return &MainAgent{
		BaseAgent:  NewBaseAgent(config),
		registry:   registry,
		memory:     mem,
		model:      opts.Model,
		matchers:   opts.Matchers,
		maxHistory: opts.MaxHistory,
		kind:       "main",
		logger:     opts.Logger,
	}
}

// Info returns the identifying details recorded in turn contexts and logs.
func (a *MainAgent) Info() core.AgentInfo {
	return core.AgentInfo{Name: a.Name(), Type: a.kind}
}

// Memory exposes the agent's memory service.
func (a *MainAgent) Memory() *memory.Service { return a.memory }

// Handle runs one turn. The user message is appended before routing, so
// it is part of the history even when the turn later fails.
func (a *MainAgent) Handle(turnCtx *core.TurnContext, req core.Request) (*core.Response, error) {
	input := strings.TrimSpace(req.Input)

	content := input
	if content == "" && req.Tool != "" {
		content = fmt.Sprintf("[tool:%s]", req.Tool)
	}
	if content == "" {
		return nil, fmt.Errorf("agent %s: empty request", a.Name())
	}

	start := time.Now()

	a.logger.Debug("agent.turn.start",
		"agent", a.Name(),
		"session_id", turnCtx.SessionID,
		"turn_id", turnCtx.TurnID,
	)

	if err := a.memory.Append(turnCtx.SessionID, core.NewUserMessage(content)); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	toolName, args := req.Tool, req.Args
	if toolName == "" {
		toolName, args, _ = tool.FirstMatch(a.matchers, input, a.matchFilter())
	} else if !a.allowsTool(toolName) {
		return nil, tool.NewToolError(toolName,
			fmt.Sprintf("tool not available to agent %s: %s", a.Name(), toolName),
			tool.CodeUnknownTool)
	}

	if toolName != "" {
		return a.runTool(turnCtx, toolName, args, start)
	}

	return a.runModel(turnCtx, start)
}

func (a *MainAgent) runTool(turnCtx *core.TurnContext, name string, args map[string]interface{}, start time.Time) (*core.Response, error) {
	a.logger.Debug("agent.route.tool",
		"agent", a.Name(),
		"tool", name,
		"turn_id", turnCtx.TurnID,
	)

	tctx := tool.NewContext(turnCtx, a.model)

	result, err := a.registry.Invoke(tctx, name, args)
	if err != nil {
		return nil, err
	}

	content := renderToolContent(result)
	if err := a.memory.Append(turnCtx.SessionID, core.NewToolMessage(name, content)); err != nil {
		return nil, fmt.Errorf("append tool message: %w", err)
	}

	a.logger.Info("agent.turn.complete",
		"agent", a.Name(),
		"origin", string(core.OriginTool),
		"tool", name,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &core.Response{
		Agent:      a.Name(),
		SessionID:  turnCtx.SessionID,
		Origin:     core.OriginTool,
		ToolResult: result,
		Text:       content,
	}, nil
}

func (a *MainAgent) runModel(turnCtx *core.TurnContext, start time.Time) (*core.Response, error) {
	if a.model == nil {
		return nil, fmt.Errorf("agent %s: no matcher claimed the input and no model is configured", a.Name())
	}

	a.logger.Debug("agent.route.model",
		"agent", a.Name(),
		"turn_id", turnCtx.TurnID,
	)

	history, err := a.memory.History(turnCtx.SessionID, a.maxHistory)
	if err != nil {
		return nil, err
	}

	if err := turnCtx.Limiter.Increment(); err != nil {
		return nil, err
	}

	resp, err := a.model.Complete(turnCtx.Context, model.Request{
		Instructions: a.config.Instruction,
		Messages:     history,
	})
	if err != nil {
		a.logger.Error("model.call.error",
			"agent", a.Name(),
			"turn_id", turnCtx.TurnID,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("model fallback: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if err := a.memory.Append(turnCtx.SessionID, core.NewAgentMessage(text)); err != nil {
		return nil, fmt.Errorf("append agent message: %w", err)
	}

	a.logger.Info("agent.turn.complete",
		"agent", a.Name(),
		"origin", string(core.OriginModel),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &core.Response{
		Agent:     a.Name(),
		SessionID: turnCtx.SessionID,
		Origin:    core.OriginModel,
		Text:      text,
	}, nil
}

// matchFilter restricts matcher routing to the configured tool subset.
// Nil means no restriction.
func (a *MainAgent) matchFilter() func(string) bool {
	if len(a.config.Tools) == 0 {
		return nil
	}

	return a.config.AllowsTool
}

// renderToolContent flattens a tool result into the text recorded in the
// session log. Successful payloads are JSON-encoded so the model fallback
// can read them back out of the history later.
func renderToolContent(result *core.ToolResult) string {
	if !result.OK() {
		if result.Code != "" {
			return fmt.Sprintf("tool %s failed: %s (%s)", result.ToolName, result.Error, result.Code)
		}
		return fmt.Sprintf("tool %s failed: %s", result.ToolName, result.Error)
	}

	switch p := result.Payload.(type) {
	case nil:
		return "ok"
	case string:
		return p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Sprintf("%v", p)
		}
		return string(b)
	}
}
