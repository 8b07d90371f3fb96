package tool

import (
	"github.com/attachehq/attache/internal/util"
)

// Func is the signature of a function-backed tool.
type Func func(tctx *Context, args map[string]interface{}) (interface{}, error)

// FunctionTool adapts a plain Go function into a Tool. It is the
// shortest way to add a custom tool to the registry; argument
// validation happens in the registry like for any other tool.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]interface{}
	fn          Func
}

var _ Tool = (*FunctionTool)(nil)

// NewFunctionTool creates a tool from a function and a hand-written
// parameter schema.
func NewFunctionTool(name, description string, parameters map[string]interface{}, fn Func) *FunctionTool {
	if parameters == nil {
		parameters = map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		}
	}

	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct creates a tool whose parameter schema is
// derived from a struct via reflection.
func NewFunctionToolFromStruct(name, description string, paramStruct interface{}, fn Func) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(paramStruct), fn)
}

// Name returns the tool identifier.
func (t *FunctionTool) Name() string {
	return t.name
}

// Description returns what the tool does.
func (t *FunctionTool) Description() string {
	return t.description
}

// Parameters returns the argument schema.
func (t *FunctionTool) Parameters() map[string]interface{} {
	return t.parameters
}

// Call runs the wrapped function.
func (t *FunctionTool) Call(tctx *Context, args map[string]interface{}) (interface{}, error) {
	return t.fn(tctx, args)
}
