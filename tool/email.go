package tool

import (
	"strings"

	"github.com/attachehq/attache/internal/util"
	"github.com/attachehq/attache/model"
)

const emailInstructions = "You write clear, professional business emails."

const emailBodyPrompt = `Write the body of a short professional email about the following topic. Do not include a subject line, greeting, or signature.

Topic:
{{.topic}}`

const emailTemplate = `To: {{.recipient}}
Subject: {{.subject}}

{{.body}}

Regards,
{{.signature}}`

// EmailDraft is the payload of a successful draft_email call. Rendered
// is the complete draft; the other fields expose its parts.
type EmailDraft struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Rendered  string `json:"rendered"`
	Model     string `json:"model,omitempty"`
}

// EmailToolOptions configures the draft_email tool.
type EmailToolOptions struct {
	// Signature closes every draft.
	Signature string
}

// EmailTool drafts an email about a topic. The body comes from the
// configured model, the framing is a fixed template.
type EmailTool struct {
	name        string
	description string
	signature   string
}

var _ Tool = (*EmailTool)(nil)

// NewEmailTool creates the draft_email tool.
func NewEmailTool(optFns ...func(o *EmailToolOptions)) *EmailTool {
	opts := EmailToolOptions{
		Signature: "Attache",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &EmailTool{
		name:        "draft_email",
		description: "Drafts a professional email about the given topic using the configured model.",
		signature:   opts.Signature,
	}
}

// Name returns the tool identifier.
func (t *EmailTool) Name() string {
	return t.name
}

// Description returns what the tool does.
func (t *EmailTool) Description() string {
	return t.description
}

// Parameters returns the argument schema.
func (t *EmailTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"topic": map[string]interface{}{
				"type":        "string",
				"description": "What the email should be about",
			},
			"recipient": map[string]interface{}{
				"type":        "string",
				"description": "Who the email is addressed to, defaults to Team",
			},
			"subject": map[string]interface{}{
				"type":        "string",
				"description": "Subject line, defaults to Automated Business Update",
			},
		},
		"required": []string{"topic"},
	}
}

// Call generates the body via the model and assembles the draft.
func (t *EmailTool) Call(tctx *Context, args map[string]interface{}) (interface{}, error) {
	topic, _ := args["topic"].(string)
	if strings.TrimSpace(topic) == "" {
		return nil, NewToolError(t.name, "topic is empty", CodeValidation)
	}

	recipient := stringArg(args, "recipient", "Team")
	subject := stringArg(args, "subject", "Automated Business Update")

	prompt, err := util.RenderTemplate(emailBodyPrompt, map[string]any{"topic": topic})
	if err != nil {
		return nil, NewToolError(t.name, err.Error(), CodeExecution)
	}

	resp, err := tctx.Complete(model.Prompt(emailInstructions, prompt))
	if err != nil {
		return nil, NewToolError(t.name, err.Error(), CodeExecution)
	}

	body := strings.TrimSpace(resp.Text)

	rendered, err := util.RenderTemplate(emailTemplate, map[string]any{
		"recipient": recipient,
		"subject":   subject,
		"body":      body,
		"signature": t.signature,
	})
	if err != nil {
		return nil, NewToolError(t.name, err.Error(), CodeExecution)
	}

	return &EmailDraft{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Rendered:  rendered,
		Model:     resp.Model,
	}, nil
}

// stringArg returns the named string argument, or fallback when it is
// absent or blank.
func stringArg(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}

	return fallback
}
