// Package tool implements the built-in tools and the registry that
// dispatches to them. Tools are identified by name, validate their
// arguments against a JSON-schema style parameter definition, and
// report failures as data rather than panics: the registry wraps every
// outcome in a core.ToolResult so callers can distinguish a tool that
// ran and failed from a tool that does not exist.
package tool

import (
	"fmt"

	"github.com/attachehq/attache/internal/util"
)

// Error codes carried by ToolError. Handlers switch on these to decide
// whether a failure was the caller's fault or the tool's.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeExecution      = "EXECUTION_ERROR"
	CodeDivisionByZero = "DIVISION_BY_ZERO"
	CodeInvalidJSON    = "INVALID_JSON"
	CodeNotFound       = "NOT_FOUND"
	CodeUnknownTool    = "UNKNOWN_TOOL"
)

// Tool is the interface implemented by all tools.
type Tool interface {
	// Name returns the unique identifier the registry dispatches on.
	Name() string

	// Description returns a human-readable description of the tool.
	Description() string

	// Parameters returns the JSON schema for the tool's arguments.
	Parameters() map[string]interface{}

	// Call executes the tool with validated arguments. A returned
	// error marks the invocation as failed; returning a *ToolError
	// preserves the code, anything else is wrapped as an execution
	// error by the registry.
	Call(tctx *Context, args map[string]interface{}) (interface{}, error)
}

// ToolError represents an error that occurred during tool execution.
type ToolError struct {
	// Tool is the name of the tool that generated the error.
	Tool string `json:"tool"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Code groups errors by kind, e.g. "VALIDATION_ERROR".
	Code string `json:"code,omitempty"`

	// Details contains additional error context.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new tool error.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// WithDetails adds detail context to the error and returns it.
func (e *ToolError) WithDetails(details map[string]interface{}) *ToolError {
	e.Details = details
	return e
}

// ValidationError is re-exported for callers that inspect schema
// validation failures directly.
type ValidationError = util.ValidationError
