package tool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON_WholeDocument(t *testing.T) {
	value, ok := ExtractJSON(`{"status": "ok", "count": 3}`)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"status": "ok", "count": 3.0}, value)
}

func TestExtractJSON_WholeArray(t *testing.T) {
	value, ok := ExtractJSON(`[1, 2, 3]`)
	assert.True(t, ok)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, value)
}

func TestExtractJSON_EmbeddedFragment(t *testing.T) {
	text := `The service reported {"status": "ok", "count": 3} at midnight.`

	value, ok := ExtractJSON(text)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"status": "ok", "count": 3.0}, value)
}

func TestExtractJSON_NestedObjects(t *testing.T) {
	text := `payload: {"outer": {"inner": [1, 2]}, "flag": true} trailing noise`

	value, ok := ExtractJSON(text)
	assert.True(t, ok)

	obj, isMap := value.(map[string]any)
	assert.True(t, isMap)
	assert.Equal(t, true, obj["flag"])
	assert.Equal(t, map[string]any{"inner": []any{1.0, 2.0}}, obj["outer"])
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	text := `note {"msg": "use {curly} braces", "quote": "she said \"hi\""} end`

	value, ok := ExtractJSON(text)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{
		"msg":   "use {curly} braces",
		"quote": `she said "hi"`,
	}, value)
}

func TestExtractJSON_FirstParseableWins(t *testing.T) {
	text := `a {"first": 1} b {"second": 2}`

	value, ok := ExtractJSON(text)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"first": 1.0}, value)
}

func TestExtractJSON_SkipsUnbalancedOpener(t *testing.T) {
	text := `{ broken { "a": 1 }`

	value, ok := ExtractJSON(text)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"a": 1.0}, value)
}

func TestExtractJSON_NoFragment(t *testing.T) {
	_, ok := ExtractJSON("nothing structured in here")
	assert.False(t, ok)

	_, ok = ExtractJSON("")
	assert.False(t, ok)

	_, ok = ExtractJSON("{not json}")
	assert.False(t, ok)
}

func TestJSONExtractTool_InvalidJSONFailure(t *testing.T) {
	r := NewRegistry()
	r.Register(NewJSONExtractTool())

	result, err := r.Invoke(testContext(nil), "extract_json", map[string]any{"text": "plain prose only"})
	assert.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, CodeInvalidJSON, result.Code)
}

func TestJSONExtractTool_RoundTrip(t *testing.T) {
	original := map[string]any{
		"project": "attache",
		"active":  true,
		"budget":  1250.5,
		"tags":    []any{"ops", "reporting"},
	}

	encoded, err := json.Marshal(original)
	assert.NoError(t, err)

	text := "Status update follows. " + string(encoded) + " End of report."

	r := NewRegistry()
	r.Register(NewJSONExtractTool())

	result, invokeErr := r.Invoke(testContext(nil), "extract_json", map[string]any{"text": text})
	assert.NoError(t, invokeErr)
	assert.True(t, result.OK())
	assert.Equal(t, original, result.Payload)
}
