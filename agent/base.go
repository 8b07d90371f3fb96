package agent

import (
	"fmt"

	"github.com/attachehq/attache/core"
)

// BaseAgent carries the identity and static configuration shared by the
// agent implementations. It embeds into concrete agents and supplies the
// Name/Description half of the core.Agent contract.
type BaseAgent struct {
	config core.AgentConfig
}

// NewBaseAgent creates a base agent from the given config. The config is
// copied on construction; later mutation by the caller has no effect.
func NewBaseAgent(config core.AgentConfig) *BaseAgent {
	c := config.Clone()
	if c.Description == "" {
		c.Description = fmt.Sprintf("Agent %s", c.Name)
	}

	return &BaseAgent{config: c}
}

// Name returns the agent's external identifier.
func (a *BaseAgent) Name() string { return a.config.Name }

// Description returns the human-readable description.
func (a *BaseAgent) Description() string { return a.config.Description }

// Config returns a copy of the agent's configuration.
func (a *BaseAgent) Config() core.AgentConfig { return a.config.Clone() }

// allowsTool reports whether the agent may dispatch the named tool. An
// empty Tools list places no restriction.
func (a *BaseAgent) allowsTool(name string) bool {
	return len(a.config.Tools) == 0 || a.config.AllowsTool(name)
}
