package tool

import (
	"fmt"
	"sync"
	"time"

	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/internal/util"
	"github.com/attachehq/attache/logging"
)

// Definition describes a registered tool for catalog listings.
type Definition struct {
	// Name is the identifier the registry dispatches on.
	Name string `json:"name"`

	// Description explains what the tool does.
	Description string `json:"description"`

	// Parameters is the JSON schema for the tool's arguments.
	Parameters map[string]interface{} `json:"parameters"`
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Logger is used for tool call logging.
	Logger logging.Logger
}

// Registry is the dispatch table mapping tool names to
// implementations. All invocations go through Invoke, which validates
// arguments against the tool's schema and wraps every outcome in a
// core.ToolResult.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	logger logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		tools:  make(map[string]Tool),
		logger: opts.Logger,
	}
}

// Register adds a tool to the registry. Registering a name twice
// replaces the earlier tool.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; exists {
		r.logger.Warn("tool.register.replaced", "tool", name)
	} else {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Definitions returns the catalog of registered tools in registration
// order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, Definition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// Invoke dispatches a call to the named tool. Tool failures, including
// argument validation, come back as a result with status "error" and a
// nil error; the returned error is non-nil only when no tool is
// registered under the given name.
func (r *Registry) Invoke(tctx *Context, name string, args map[string]interface{}) (*core.ToolResult, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, NewToolError(name, fmt.Sprintf("unknown tool: %s", name), CodeUnknownTool)
	}

	start := time.Now()

	r.logger.Debug("tool.call.start",
		"tool", name,
		"call_id", tctx.CallID(),
		"session_id", tctx.SessionID(),
	)

	if err := util.ValidateParameters(args, t.Parameters()); err != nil {
		r.logger.Warn("tool.call.validation_failed",
			"tool", name,
			"call_id", tctx.CallID(),
			"error", err.Error(),
		)
		return errorResult(name, NewToolError(name, err.Error(), CodeValidation)), nil
	}

	payload, err := t.Call(tctx, args)
	if err != nil {
		toolErr, ok := err.(*ToolError)
		if !ok {
			toolErr = NewToolError(name, err.Error(), CodeExecution)
		}

		r.logger.Error("tool.call.error",
			"tool", name,
			"call_id", tctx.CallID(),
			"code", toolErr.Code,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", toolErr.Message,
		)
		return errorResult(name, toolErr), nil
	}

	r.logger.Info("tool.call.success",
		"tool", name,
		"call_id", tctx.CallID(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return core.NewToolResult(name, payload), nil
}

// errorResult converts a ToolError into a failed result, keeping the
// code machine-readable instead of folding it into the message.
func errorResult(name string, toolErr *ToolError) *core.ToolResult {
	return &core.ToolResult{
		ToolName: name,
		Status:   core.ToolStatusError,
		Error:    toolErr.Message,
		Code:     toolErr.Code,
	}
}
