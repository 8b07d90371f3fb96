package core

// ToolStatus tags a ToolResult as a success or a failure.
type ToolStatus string

const (
	// ToolStatusOK marks a successful tool invocation.
	ToolStatusOK ToolStatus = "ok"
	// ToolStatusError marks a failed tool invocation. Tool failures are data
	// returned to the caller, not process failures.
	ToolStatusError ToolStatus = "error"
)

// ToolResult is the ephemeral outcome of a single tool invocation. It lives
// for the turn that produced it; session logs record a rendered tool message
// instead of the result itself.
type ToolResult struct {
	ToolName string     `json:"tool_name"`
	Status   ToolStatus `json:"status"`
	Payload  any        `json:"payload,omitempty"`
	Error    string     `json:"error,omitempty"`

	// Code groups failures by kind, e.g. "DIVISION_BY_ZERO". Empty on
	// success.
	Code string `json:"code,omitempty"`
}

// NewToolResult creates a successful result carrying the tool's payload.
func NewToolResult(toolName string, payload any) *ToolResult {
	return &ToolResult{ToolName: toolName, Status: ToolStatusOK, Payload: payload}
}

// NewToolErrorResult creates a failed result carrying the error message.
func NewToolErrorResult(toolName string, err error) *ToolResult {
	r := &ToolResult{ToolName: toolName, Status: ToolStatusError}
	if err != nil {
		r.Error = err.Error()
	}

	return r
}

// OK reports whether the invocation succeeded.
func (r *ToolResult) OK() bool {
	return r.Status == ToolStatusOK
}
