package model

import (
	"context"

	"github.com/attachehq/attache/core"
)

// Request captures the normalized model input: an optional system instruction
// plus the conversation window to complete against.
type Request struct {
	Instructions string         `json:"instructions,omitempty"`
	Messages     []core.Message `json:"messages"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed model output for a request.
type Response struct {
	Text  string      `json:"text"`
	Model string      `json:"model,omitempty"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required by agents and model-backed tools.
// The external model is a collaborator behind exactly one blocking call.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Prompt wraps a single prompt string into a one-message request, the shape
// used by model-backed tools with fixed templates.
func Prompt(instructions, prompt string) Request {
	return Request{
		Instructions: instructions,
		Messages:     []core.Message{core.NewUserMessage(prompt)},
	}
}
