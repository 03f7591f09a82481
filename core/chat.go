package core

import (
	"time"

	"github.com/google/uuid"
)

// Conversation roles. Tool results use RoleTool so model adapters can pair
// them with the originating assistant tool call.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall describes a tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id,omitempty"`        // Correlation id supplied by the provider
	Name      string `json:"name"`                // Registered tool name
	Arguments string `json:"arguments,omitempty"` // JSON-encoded argument payload
}

// ChatTurn is one entry of a session's ordered conversation history. After
// being appended to a session it is treated as immutable.
//
// Exactly one of the following shapes is populated:
//   - user / assistant text: Content
//   - assistant tool request: ToolCalls
//   - tool result: ToolCallID, ToolName and Content (result or error JSON)
type ChatTurn struct {
	ID         string     `json:"id"`
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
	ToolErr    bool       `json:"tool_err,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// NewUserTurn creates a user-authored text turn.
func NewUserTurn(text string) ChatTurn {
	return ChatTurn{ID: NewID(), Role: RoleUser, Content: text, Timestamp: time.Now().UTC()}
}

// NewAssistantTurn creates an assistant text turn.
func NewAssistantTurn(text string) ChatTurn {
	return ChatTurn{ID: NewID(), Role: RoleAssistant, Content: text, Timestamp: time.Now().UTC()}
}

// NewToolCallTurn records the assistant requesting one or more tool executions.
func NewToolCallTurn(calls []ToolCall) ChatTurn {
	return ChatTurn{ID: NewID(), Role: RoleAssistant, ToolCalls: calls, Timestamp: time.Now().UTC()}
}

// NewToolResultTurn records the outcome of a tool execution. A non-nil err is
// surfaced as the turn content so the model can report the rejection instead
// of the loop crashing.
func NewToolResultTurn(call ToolCall, result string, err error) ChatTurn {
	turn := ChatTurn{
		ID:         NewID(),
		Role:       RoleTool,
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Content:    result,
		Timestamp:  time.Now().UTC(),
	}
	if err != nil {
		turn.Content = err.Error()
		turn.ToolErr = true
	}
	return turn
}

// NewID generates a unique identifier for sessions and turns.
func NewID() string { return uuid.NewString() }
