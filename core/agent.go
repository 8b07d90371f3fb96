package core

import "slices"

// Agent is the unit of request handling. An agent receives a request inside a
// turn context, resolves it against its allowed tools or the model fallback,
// and returns a single response.
//
// Implementations must be safe for concurrent use; per-session serialization
// is the session's job, not the agent's.
type Agent interface {
	Name() string
	Description() string
	Handle(turnCtx *TurnContext, req Request) (*Response, error)
}

// AgentInfo carries identifying details about an agent used in contexts and
// logs. Name is the external identifier; Type categorizes the implementation
// (e.g. "main", "specialized").
type AgentInfo struct{ Name, Type string }

// AgentConfig statically binds an agent identity to its allowed tool subset
// and fallback instruction. Configs are copied on construction and never
// mutated after process start.
type AgentConfig struct {
	// Name is the agent's external identifier.
	Name string

	// Description explains what the agent is for; surfaced in catalogs.
	Description string

	// Instruction is the system instruction used on the model fallback path.
	Instruction string

	// Tools lists the tool identifiers the agent may dispatch to. Order is
	// meaningful: matchers are consulted in this order.
	Tools []string
}

// Clone returns a deep copy of the config.
func (c AgentConfig) Clone() AgentConfig {
	d := c
	d.Tools = slices.Clone(c.Tools)

	return d
}

// AllowsTool reports whether the config binds the given tool identifier.
func (c AgentConfig) AllowsTool(name string) bool {
	return slices.Contains(c.Tools, name)
}

// Request is one incoming task for an agent.
//
// Tool and Args form the explicit dispatch path: when Tool names a tool
// identifier the agent routes through its dispatch table without guessing.
// When Tool is empty the agent falls back to its deterministic matchers and,
// failing those, to the model.
type Request struct {
	SessionID string         `json:"session_id"`
	Input     string         `json:"input"`
	Tool      string         `json:"tool,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
}

// Origin tags which path produced a response.
type Origin string

const (
	// OriginTool marks responses produced by a tool invocation.
	OriginTool Origin = "tool"
	// OriginModel marks responses produced by the model fallback.
	OriginModel Origin = "model"
)

// Response is the tagged outcome of one agent turn: a ToolResult when a tool
// handled the request, or model text otherwise.
type Response struct {
	Agent      string      `json:"agent"`
	SessionID  string      `json:"session_id"`
	Category   string      `json:"category,omitempty"`
	Origin     Origin      `json:"origin"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
	Text       string      `json:"text,omitempty"`
}
