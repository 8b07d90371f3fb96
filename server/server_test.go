package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attachehq/attache/agent"
	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/memory"
	"github.com/attachehq/attache/model"
	"github.com/attachehq/attache/orchestrator"
	"github.com/attachehq/attache/tool"
)

func newTestServer() (*Server, *model.MockModel, *memory.Service) {
	mock := model.NewMockModel("mock-model", "mock")

	reg := tool.NewRegistry()
	reg.Register(tool.NewKPITool())
	reg.Register(tool.NewSummarizeTool())
	reg.Register(tool.NewJSONExtractTool())
	reg.Register(tool.NewEmailTool())
	reg.Register(tool.NewFileReadTool())

	mem := memory.NewService()
	withModel := func(o *agent.MainAgentOptions) { o.Model = mock }

	orch := orchestrator.New()
	orch.Register(orchestrator.CategoryAnalytics, agent.NewBusinessAnalystAgent(reg, mem, withModel))
	orch.Register(orchestrator.CategoryDocumentation, agent.NewDocumentationAgent(reg, mem, withModel))
	orch.Register(orchestrator.CategoryCommunication, agent.NewCommunicationAgent(reg, mem, withModel))
	orch.Register(orchestrator.CategoryResearch, agent.NewResearchAgent(reg, mem, withModel))
	orch.Register(orchestrator.CategoryGeneral, agent.NewGeneralAgent(reg, mem, withModel))

	srv := New(orch, mem, reg, func(o *Options) {
		o.Model = mock
	})

	return srv, mock, mem
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded), "body: %s", data)
	}

	return resp.StatusCode, decoded
}

// -------------------- Liveness Tests --------------------

func TestServer_Healthz(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Index(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "attache", body["service"])
}

// -------------------- Ask / Chat Tests --------------------

func TestServer_AskRoutesThroughOrchestrator(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodPost, "/v1/ask", map[string]string{
		"session_id": "sess-1",
		"message":    "Compute the profit KPIs: revenue 1000, cost 600, visits 50, conversions 5",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "business_analyst", body["agent"])
	assert.Equal(t, "analytics", body["category"])
	assert.Equal(t, "tool", body["origin"])

	result, ok := body["tool_result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ok", result["status"])

	payload, ok := result["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 400.0, payload["profit"].(float64), 1e-9)
	assert.InDelta(t, 0.4, payload["margin"].(float64), 1e-9)
	assert.InDelta(t, 0.1, payload["conversion_rate"].(float64), 1e-9)
}

func TestServer_AskRequiresMessage(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodPost, "/v1/ask", map[string]string{"session_id": "sess-1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "message")
}

func TestServer_AskGeneratesSessionID(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodPost, "/v1/ask", map[string]string{"message": "hello there"})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["session_id"])
}

func TestServer_ChatUsesConfiguredAgent(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodPost, "/v1/chat", map[string]string{
		"session_id": "sess-1",
		"message":    "hello there",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "general", body["agent"])
	assert.Equal(t, "model", body["origin"])
	assert.Equal(t, "Mock response to: hello there", body["text"])
}

// -------------------- Agent Endpoint Tests --------------------

func TestServer_AgentCatalog(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodGet, "/v1/agents", nil)
	assert.Equal(t, http.StatusOK, status)

	agents, ok := body["agents"].([]interface{})
	require.True(t, ok)
	assert.Len(t, agents, 5)
}

func TestServer_AgentDispatchByName(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodPost, "/v1/agents/research", map[string]interface{}{
		"session_id": "sess-1",
		"message":    `Extract the JSON: {"region": "EMEA"}`,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "research", body["agent"])
	assert.Equal(t, "tool", body["origin"])
}

func TestServer_AgentDispatchUnknownIs404(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodPost, "/v1/agents/nope", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "agent not found")
}

func TestServer_AgentDispatchRequiresInput(t *testing.T) {
	srv, _, _ := newTestServer()

	status, _ := doJSON(t, srv, http.MethodPost, "/v1/agents/general", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
}

// -------------------- Tool Endpoint Tests --------------------

func TestServer_ToolCatalogIncludesSchemas(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodGet, "/v1/tools", nil)
	assert.Equal(t, http.StatusOK, status)

	tools, ok := body["tools"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tools, 5)

	first, ok := tools[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "compute_kpi", first["name"])
	assert.NotNil(t, first["parameters"])
}

func TestServer_ToolInvokeDirect(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodPost, "/v1/tools/compute_kpi", map[string]interface{}{
		"args": map[string]interface{}{
			"revenue":     1000,
			"cost":        600,
			"visits":      50,
			"conversions": 5,
		},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	payload, ok := body["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 400.0, payload["profit"].(float64), 1e-9)
}

func TestServer_ToolFailureRidesInA200(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodPost, "/v1/tools/compute_kpi", map[string]interface{}{
		"args": map[string]interface{}{
			"revenue":     1000,
			"cost":        600,
			"visits":      0,
			"conversions": 0,
		},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, tool.CodeDivisionByZero, body["code"])
}

func TestServer_ToolInvokeUnknownIs404(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodPost, "/v1/tools/no_such_tool", map[string]interface{}{
		"args": map[string]interface{}{},
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "unknown tool")
}

// -------------------- Session Endpoint Tests --------------------

func TestServer_SessionHistoryWithLimit(t *testing.T) {
	srv, _, mem := newTestServer()

	for _, content := range []string{"one", "two", "three"} {
		if err := mem.Append("sess-1", core.NewUserMessage(content)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	status, body := doJSON(t, srv, http.MethodGet, "/v1/sessions/sess-1/history?limit=2", nil)
	assert.Equal(t, http.StatusOK, status)

	msgs, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 2)

	last, ok := msgs[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "three", last["content"])
}

func TestServer_SessionHistoryUnknownSessionIsEmpty(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodGet, "/v1/sessions/ghost/history", nil)
	assert.Equal(t, http.StatusOK, status)

	msgs, ok := body["messages"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, msgs)
}

func TestServer_SessionCompact(t *testing.T) {
	srv, _, mem := newTestServer()

	for i := 0; i < 15; i++ {
		if err := mem.Append("sess-1", core.NewUserMessage("note")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	status, body := doJSON(t, srv, http.MethodPost, "/v1/sessions/sess-1/compact", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 5, body["removed"].(float64), 1e-9)
}

func TestServer_SessionCompactUnknownIs404(t *testing.T) {
	srv, _, _ := newTestServer()

	status, _ := doJSON(t, srv, http.MethodPost, "/v1/sessions/ghost/compact", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// -------------------- Memory Endpoint Tests --------------------

func TestServer_MemoryLifecycle(t *testing.T) {
	srv, _, _ := newTestServer()

	status, _ := doJSON(t, srv, http.MethodPut, "/v1/memory/q3-review", map[string]string{
		"text": "Q3 closed at 12% growth.",
	})
	assert.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, srv, http.MethodGet, "/v1/memory/q3-review", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Q3 closed at 12% growth.", body["text"])

	status, body = doJSON(t, srv, http.MethodGet, "/v1/memory?q=q3", nil)
	assert.Equal(t, http.StatusOK, status)
	summaries, ok := body["summaries"].([]interface{})
	require.True(t, ok)
	assert.Len(t, summaries, 1)

	status, _ = doJSON(t, srv, http.MethodDelete, "/v1/memory/q3-review", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, srv, http.MethodGet, "/v1/memory/q3-review", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_MemoryPersistRequiresText(t *testing.T) {
	srv, _, _ := newTestServer()

	status, body := doJSON(t, srv, http.MethodPut, "/v1/memory/q3-review", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "text")
}
