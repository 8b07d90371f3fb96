// Package attache provides a high-level façade over the orchestrator,
// the tool registry and the memory service, enabling rapid construction
// of a tool-first assistant. Most applications interact with this
// package by:
//  1. Creating an App via New() (optionally overriding stores, model and tools)
//  2. Sending messages with Ask (classified routing) or AskAgent (direct)
//  3. Inspecting state through History, Recall and the exposed services
//
// The façade wires the five built-in agents against a shared memory
// service and registers the bundled tools. All defaults are safe for
// local development and testing; production deployments typically
// supply a real model adapter, durable stores and a structured logger.
package attache

import (
	"context"

	"github.com/attachehq/attache/agent"
	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/logging"
	"github.com/attachehq/attache/memory"
	"github.com/attachehq/attache/model"
	"github.com/attachehq/attache/orchestrator"
	"github.com/attachehq/attache/tool"
)

// Options configures the App instance.
type Options struct {
	// Model backs the fallback path, summarize_text, draft_email and the
	// summarizer compaction strategy. Nil leaves the app tool-only:
	// unmatched input and model-backed tools fail cleanly.
	Model model.Model

	// Stores (default to in-memory implementations if not provided)
	SessionStore core.SessionStore
	Bank         core.MemoryBank

	// Strategy drives session compaction. Defaults to recency.
	Strategy memory.Strategy

	// MaxHistory bounds the history window handed to the model on the
	// fallback path. Zero selects the agent default.
	MaxHistory int

	// MaxModelCalls bounds model calls per turn; 0 is unlimited.
	MaxModelCalls int

	// FilesRoot confines read_file to a directory when set.
	FilesRoot string

	// FileMaxBytes caps read_file payloads; 0 is unlimited.
	FileMaxBytes int64

	// EmailSignature signs drafted emails.
	EmailSignature string

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// App is the high-level façade aggregating the orchestrator and services.
type App struct {
	opts  Options
	tools *tool.Registry
	mem   *memory.Service
	orch  *orchestrator.Orchestrator
}

// New creates a new App with optional overrides. Any unset service is
// initialized with an in-memory implementation, and the five built-in
// agents are registered against their categories.
func New(optFns ...func(o *Options)) *App {
	opts := Options{
		SessionStore: memory.NewInMemorySessionStore(),
		Bank:         memory.NewInMemoryBank(),
		Strategy:     memory.NewRecencyStrategy(memory.DefaultRecencyKeep),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	tools := tool.NewRegistry(func(o *tool.RegistryOptions) {
		o.Logger = opts.Logger
	})
	tools.Register(tool.NewJSONExtractTool())
	tools.Register(tool.NewKPITool())
	tools.Register(tool.NewSummarizeTool())
	tools.Register(tool.NewEmailTool(func(o *tool.EmailToolOptions) {
		if opts.EmailSignature != "" {
			o.Signature = opts.EmailSignature
		}
	}))
	tools.Register(tool.NewFileReadTool(func(o *tool.FileReadOptions) {
		o.Root = opts.FilesRoot
		o.MaxBytes = opts.FileMaxBytes
	}))

	mem := memory.NewService(func(o *memory.ServiceOptions) {
		o.Store = opts.SessionStore
		o.Bank = opts.Bank
		o.Strategy = opts.Strategy
		o.Logger = opts.Logger
	})

	agentOpts := func(o *agent.MainAgentOptions) {
		o.Model = opts.Model
		o.MaxHistory = opts.MaxHistory
		o.Logger = opts.Logger
	}

	orch := orchestrator.New(func(o *orchestrator.Options) {
		o.MaxModelCalls = opts.MaxModelCalls
		o.Logger = opts.Logger
	})
	orch.Register(orchestrator.CategoryAnalytics, agent.NewBusinessAnalystAgent(tools, mem, agentOpts))
	orch.Register(orchestrator.CategoryDocumentation, agent.NewDocumentationAgent(tools, mem, agentOpts))
	orch.Register(orchestrator.CategoryCommunication, agent.NewCommunicationAgent(tools, mem, agentOpts))
	orch.Register(orchestrator.CategoryResearch, agent.NewResearchAgent(tools, mem, agentOpts))
	orch.Register(orchestrator.CategoryGeneral, agent.NewGeneralAgent(tools, mem, agentOpts))

	return &App{opts: opts, tools: tools, mem: mem, orch: orch}
}

// Ask classifies the message and routes it to the matching agent. An
// empty sessionID starts a fresh session; the response names the
// session either way.
func (a *App) Ask(ctx context.Context, sessionID, message string) (*core.Response, error) {
	return a.orch.Route(ctx, core.Request{SessionID: sessionID, Input: message})
}

// AskAgent routes the message to a named agent, skipping classification.
func (a *App) AskAgent(ctx context.Context, agentName, sessionID, message string) (*core.Response, error) {
	return a.orch.RouteTo(ctx, agentName, core.Request{SessionID: sessionID, Input: message})
}

// InvokeTool calls a registered tool directly, outside any agent. The
// result carries tool failures; the error is reserved for unknown
// tool names.
func (a *App) InvokeTool(ctx context.Context, sessionID, name string, args map[string]any) (*core.ToolResult, error) {
	turnCtx := core.NewTurnContext(
		ctx,
		sessionID,
		core.AgentInfo{Name: "direct", Type: "facade"},
		a.opts.MaxModelCalls,
		a.opts.Logger,
	)

	return a.tools.Invoke(tool.NewContext(turnCtx, a.opts.Model), name, args)
}

// History returns the last n messages of a session in insertion order;
// n <= 0 returns everything.
func (a *App) History(sessionID string, n int) ([]core.Message, error) {
	return a.mem.History(sessionID, n)
}

// Compact shrinks a session with the configured strategy and returns
// how many messages were dropped.
func (a *App) Compact(ctx context.Context, sessionID string) (int, error) {
	return a.mem.Compact(ctx, sessionID)
}

// Remember stores a summary in the long-term bank, overwriting any
// previous value under the key.
func (a *App) Remember(ctx context.Context, key, text string) error {
	return a.mem.PersistSummary(ctx, key, text)
}

// Recall loads a summary from the long-term bank.
func (a *App) Recall(ctx context.Context, key string) (string, error) {
	return a.mem.LoadSummary(ctx, key)
}

// Tools exposes the tool registry.
func (a *App) Tools() *tool.Registry { return a.tools }

// Model exposes the configured model adapter; nil when tool-only.
func (a *App) Model() model.Model { return a.opts.Model }

// Memory exposes the memory service.
func (a *App) Memory() *memory.Service { return a.mem }

// Orchestrator exposes the agent catalog and router.
func (a *App) Orchestrator() *orchestrator.Orchestrator { return a.orch }
