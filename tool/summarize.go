package tool

import (
	"strings"

	"github.com/attachehq/attache/internal/util"
	"github.com/attachehq/attache/model"
)

const summarizeInstructions = "You are a precise assistant that writes short business summaries."

const summarizePrompt = `Summarize the following text in one concise paragraph. Keep the key figures and decisions, drop filler.

Text:
{{.text}}`

// SummaryPayload is the payload of a successful summarize_text call.
type SummaryPayload struct {
	Summary string `json:"summary"`
	Model   string `json:"model,omitempty"`
}

// SummarizeTool summarizes text by delegating to the configured model
// with a fixed prompt. There is no local summarization fallback;
// without a model the call fails.
type SummarizeTool struct {
	name        string
	description string
}

var _ Tool = (*SummarizeTool)(nil)

// NewSummarizeTool creates the summarize_text tool.
func NewSummarizeTool() *SummarizeTool {
	return &SummarizeTool{
		name:        "summarize_text",
		description: "Summarizes the given text into one concise paragraph using the configured model.",
	}
}

// Name returns the tool identifier.
func (t *SummarizeTool) Name() string {
	return t.name
}

// Description returns what the tool does.
func (t *SummarizeTool) Description() string {
	return t.description
}

// Parameters returns the argument schema.
func (t *SummarizeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "The text to summarize",
			},
		},
		"required": []string{"text"},
	}
}

// Call renders the prompt and completes it against the model.
func (t *SummarizeTool) Call(tctx *Context, args map[string]interface{}) (interface{}, error) {
	text, _ := args["text"].(string)
	if strings.TrimSpace(text) == "" {
		return nil, NewToolError(t.name, "text is empty", CodeValidation)
	}

	prompt, err := util.RenderTemplate(summarizePrompt, map[string]any{"text": text})
	if err != nil {
		return nil, NewToolError(t.name, err.Error(), CodeExecution)
	}

	resp, err := tctx.Complete(model.Prompt(summarizeInstructions, prompt))
	if err != nil {
		return nil, NewToolError(t.name, err.Error(), CodeExecution)
	}

	return &SummaryPayload{
		Summary: strings.TrimSpace(resp.Text),
		Model:   resp.Model,
	}, nil
}
