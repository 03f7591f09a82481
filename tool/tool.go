// Package tool implements the capabilities the reasoning loop may invoke:
// a read-only catalog lookup and a basket total calculator. Tools form a
// closed registry; unknown names are rejected explicitly.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/shopguard/internal/util"
	"github.com/hupe1980/shopguard/model"
)

// ToolError codes used across the package.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeExecution   = "EXECUTION_ERROR"
	CodeUnknownTool = "UNKNOWN_TOOL"
)

// Tool defines a named, schema-described capability the reasoning loop may
// invoke.
//
// Implementations should:
//   - Provide clear, descriptive names and descriptions (snake_case names)
//   - Define a proper JSON schema for parameters
//   - Be safe for concurrent use
//   - Return *ToolError for failures so codes survive to the loop
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the LLM.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with already-decoded arguments.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError reports a tool argument that failed schema validation.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// IsValidation reports whether err is, or wraps, a ToolError carrying a
// validation code.
func IsValidation(err error) bool {
	var te *ToolError
	return errors.As(err, &te) && te.Code == CodeValidation
}

// Registry is the closed set of named capabilities exposed to the reasoning
// loop. The set is fixed at construction; lookup of an unknown name fails
// with an UNKNOWN_TOOL error rather than being ignored.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from the given tools. Duplicate names panic:
// the tool set is program configuration, not runtime input.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; exists {
			panic(fmt.Sprintf("duplicate tool name %q", t.Name()))
		}
		r.tools[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns the model-facing schema for every registered tool.
func (r *Registry) Definitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// Execute decodes argsJSON, validates it against the tool's schema and runs
// the tool. An unknown name yields an UNKNOWN_TOOL error; validation and
// execution failures surface as *ToolError so the loop can distinguish
// recoverable rejections from fatal dispatch errors.
func (r *Registry) Execute(ctx context.Context, name, argsJSON string) (any, error) {
	impl, ok := r.tools[name]
	if !ok {
		return nil, NewToolError(name, "tool is not registered", CodeUnknownTool)
	}

	args := map[string]any{}
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return nil, &ToolError{
				Tool:    name,
				Message: fmt.Sprintf("arguments are not valid JSON: %v", err),
				Code:    CodeValidation,
			}
		}
	}

	if err := util.ValidateParameters(args, impl.Parameters()); err != nil {
		return nil, &ToolError{
			Tool:    name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	result, err := impl.Call(ctx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return nil, toolErr
		}
		return nil, &ToolError{Tool: name, Message: err.Error(), Code: CodeExecution}
	}
	return result, nil
}
