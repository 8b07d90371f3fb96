package model

import (
	"context"
	"fmt"
	"sync"
)

// MockModel is a lightweight in-memory Model useful for tests, examples and
// offline runs.
type MockModel struct {
	info      Info
	responses map[string]string
	failWith  error
	requests  []Request
	mu        sync.Mutex
}

var _ Model = (*MockModel)(nil)

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
// The prompt is matched against the content of the request's last message.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[prompt] = response
}

// FailWith makes every subsequent Complete call return the given error.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failWith = err
}

// Complete implements Model, returning the canned response registered for the
// last message's content, or a generic echo when none matches.
func (m *MockModel) Complete(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.failWith != nil {
		return nil, m.failWith
	}

	var input string
	if len(req.Messages) > 0 {
		input = req.Messages[len(req.Messages)-1].Content
	}

	text := m.responses[input]
	if text == "" {
		text = fmt.Sprintf("Mock response to: %s", input)
	}

	return &Response{Text: text, Model: m.info.Name}, nil
}

// Calls returns the number of Complete invocations recorded so far.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.requests)
}

// LastRequest returns the most recent request, or false when none was made.
func (m *MockModel) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.requests) == 0 {
		return Request{}, false
	}

	return m.requests[len(m.requests)-1], true
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
