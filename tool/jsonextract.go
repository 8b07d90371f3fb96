package tool

import (
	"encoding/json"
	"strings"
)

// JSONExtractTool pulls the first valid JSON value out of free text.
// The whole input is tried first; when that fails the text is scanned
// for balanced {...} fragments and the first one that parses wins.
type JSONExtractTool struct {
	name        string
	description string
}

var _ Tool = (*JSONExtractTool)(nil)

// NewJSONExtractTool creates the extract_json tool.
func NewJSONExtractTool() *JSONExtractTool {
	return &JSONExtractTool{
		name:        "extract_json",
		description: "Extracts an embedded JSON object from free text and returns the parsed structure.",
	}
}

// Name returns the tool identifier.
func (t *JSONExtractTool) Name() string {
	return t.name
}

// Description returns what the tool does.
func (t *JSONExtractTool) Description() string {
	return t.description
}

// Parameters returns the argument schema.
func (t *JSONExtractTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Free text that may contain a JSON fragment",
			},
		},
		"required": []string{"text"},
	}
}

// Call extracts JSON from the text argument. Text without any parseable
// fragment is an INVALID_JSON failure, not an empty success.
func (t *JSONExtractTool) Call(tctx *Context, args map[string]interface{}) (interface{}, error) {
	text, _ := args["text"].(string)

	value, ok := ExtractJSON(text)
	if !ok {
		return nil, NewToolError(t.name, "no valid JSON fragment found", CodeInvalidJSON)
	}

	return value, nil
}

// ExtractJSON parses text as a whole JSON document, and when that
// fails scans for the first balanced {...} fragment that parses as an
// object. The scanner is string-aware, so braces inside JSON string
// literals do not count toward nesting.
func ExtractJSON(text string) (interface{}, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" {
		var whole interface{}
		if err := json.Unmarshal([]byte(trimmed), &whole); err == nil {
			return whole, true
		}
	}

	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}

		end, ok := matchBrace(text, start)
		if !ok {
			continue
		}

		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err == nil {
			return obj, true
		}
	}

	return nil, false
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return 0, false
}
