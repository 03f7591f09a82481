package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/shopguard/core"
)

// ErrUnavailable marks a model endpoint that cannot be reached, is
// unauthenticated, or timed out. The orchestrator fails fast on it and the
// HTTP layer maps it to a service-unavailable outcome; it is never masked by
// a fabricated reply.
var ErrUnavailable = errors.New("model unavailable")

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object (minimal subset).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input for one reasoning step.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt
	History      []core.ChatTurn  `json:"history"`      // Conversation incl. tool turns
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Decision is the tagged variant a model returns for one step: either a
// batch of tool calls or a final free-text answer. Providers that emit both
// tool calls and text in one message are treated as a tool step; the text is
// discarded until the model produces a pure final answer.
type Decision struct {
	ToolCalls []core.ToolCall `json:"tool_calls,omitempty"`
	Text      string          `json:"text,omitempty"`
}

// IsToolCall reports whether the decision requests tool execution.
func (d *Decision) IsToolCall() bool { return len(d.ToolCalls) > 0 }

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock"
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the orchestrator needs to drive one
// reasoning step. Decide blocks until the provider answers or ctx expires.
type Model interface {
	Decide(ctx context.Context, req Request) (*Decision, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model for tests and examples. It
// replays a scripted sequence of decisions; once the script is exhausted it
// echoes the last user message.
type MockModel struct {
	mu       sync.Mutex
	info     Info
	script   []*Decision
	failWith error
	calls    int
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(decisions ...*Decision) *MockModel {
	return &MockModel{
		info:   Info{Name: "mock", Provider: "mock", SupportsTools: true},
		script: decisions,
	}
}

// Script appends decisions to the replay queue.
func (m *MockModel) Script(decisions ...*Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, decisions...)
}

// FailWith makes every subsequent Decide call return err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Calls returns how many times Decide has been invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Decide implements Model by replaying the scripted decisions in order.
func (m *MockModel) Decide(_ context.Context, req Request) (*Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.failWith != nil {
		return nil, m.failWith
	}
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}

	last := ""
	for i := len(req.History) - 1; i >= 0; i-- {
		if req.History[i].Role == core.RoleUser {
			last = req.History[i].Content
			break
		}
	}
	return &Decision{Text: fmt.Sprintf("Mock response to: %s", last)}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
