package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/attachehq/attache/core"
	"github.com/attachehq/attache/logging"
)

// Options configures an Orchestrator.
type Options struct {
	// Classifier picks the category for routed requests. Defaults to the
	// built-in keyword classifier.
	Classifier *Classifier

	// MaxModelCalls bounds model calls per routed turn; 0 is unlimited.
	MaxModelCalls int

	// Logger receives routing events.
	Logger logging.Logger
}

// Entry describes a registered agent for catalog listings.
type Entry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

// Orchestrator owns the agent catalog and routes each request to
// exactly one agent. Dispatch recovers panics and hands them back as
// errors, so a broken agent never crashes the caller.
type Orchestrator struct {
	mu         sync.RWMutex
	agents     map[string]core.Agent
	order      []string
	byCategory map[Category]string

	classifier    *Classifier
	maxModelCalls int
	logger        logging.Logger
}

// New creates an empty orchestrator.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Classifier: NewClassifier(),
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		agents:        make(map[string]core.Agent),
		byCategory:    make(map[Category]string),
		classifier:    opts.Classifier,
		maxModelCalls: opts.MaxModelCalls,
		logger:        opts.Logger,
	}
}

// Register adds an agent under the given category. Registering the same
// category twice points it at the newer agent; the earlier agent stays
// reachable by name.
func (o *Orchestrator) Register(category Category, a core.Agent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	name := a.Name()
	if _, exists := o.agents[name]; !exists {
		o.order = append(o.order, name)
	}
	o.agents[name] = a
	o.byCategory[category] = name

	o.logger.Debug("orchestrator.register",
		"agent", name,
		"category", string(category),
	)
}

// Agent returns the agent registered under name.
func (o *Orchestrator) Agent(name string) (core.Agent, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	a, ok := o.agents[name]
	return a, ok
}

// Entries returns the agent catalog in registration order.
func (o *Orchestrator) Entries() []Entry {
	o.mu.RLock()
	defer o.mu.RUnlock()

	categoryOf := make(map[string]Category, len(o.byCategory))
	for cat, name := range o.byCategory {
		categoryOf[name] = cat
	}

	entries := make([]Entry, 0, len(o.order))
	for _, name := range o.order {
		a := o.agents[name]
		entries = append(entries, Entry{
			Name:        a.Name(),
			Description: a.Description(),
			Category:    categoryOf[name],
		})
	}

	return entries
}

// Route classifies the request and dispatches it to the agent
// registered for the resulting category, falling back to the general
// agent when that category has no agent. An empty session id gets a
// generated one so the response can name the session it created.
func (o *Orchestrator) Route(ctx context.Context, req core.Request) (*core.Response, error) {
	if req.SessionID == "" {
		req.SessionID = core.NewID()
	}

	category := o.classifier.Classify(req.Input)

	a, ok := o.agentForCategory(category)
	if !ok {
		return nil, fmt.Errorf("no agent registered for category %s", category)
	}

	o.logger.Info("orchestrator.route",
		"session_id", req.SessionID,
		"category", string(category),
		"agent", a.Name(),
	)

	resp, err := o.dispatch(ctx, a, req)
	if err != nil {
		return nil, err
	}

	resp.Category = string(category)
	return resp, nil
}

// RouteTo dispatches the request straight to the named agent, skipping
// classification.
func (o *Orchestrator) RouteTo(ctx context.Context, agentName string, req core.Request) (*core.Response, error) {
	a, ok := o.Agent(agentName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrAgentNotFound, agentName)
	}

	if req.SessionID == "" {
		req.SessionID = core.NewID()
	}

	o.logger.Info("orchestrator.route.direct",
		"session_id", req.SessionID,
		"agent", agentName,
	)

	return o.dispatch(ctx, a, req)
}

// agentForCategory resolves the agent for a category, falling back to
// the general registration.
func (o *Orchestrator) agentForCategory(category Category) (core.Agent, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	name, ok := o.byCategory[category]
	if !ok {
		name, ok = o.byCategory[CategoryGeneral]
		if !ok {
			return nil, false
		}
	}

	a, ok := o.agents[name]
	return a, ok
}

// infoProvider is implemented by agents that carry their own identity
// details for turn contexts.
type infoProvider interface {
	Info() core.AgentInfo
}

// dispatch runs one turn against the agent. A panicking agent is
// recovered into an error return.
func (o *Orchestrator) dispatch(ctx context.Context, a core.Agent, req core.Request) (resp *core.Response, err error) {
	info := core.AgentInfo{Name: a.Name(), Type: "agent"}
	if p, ok := a.(infoProvider); ok {
		info = p.Info()
	}

	turnCtx := core.NewTurnContext(ctx, req.SessionID, info, o.maxModelCalls, o.logger)

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("orchestrator.dispatch.panic",
				"agent", a.Name(),
				"session_id", req.SessionID,
				"panic", fmt.Sprintf("%v", r),
			)
			resp = nil
			err = fmt.Errorf("agent %s panicked: %v", a.Name(), r)
		}
	}()

	return a.Handle(turnCtx, req)
}
