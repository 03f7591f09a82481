// Package agent implements the bounded tool-calling reasoning loop driving
// one conversational turn.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/shopguard/core"
	"github.com/hupe1980/shopguard/logging"
	"github.com/hupe1980/shopguard/model"
	"github.com/hupe1980/shopguard/observability"
	"github.com/hupe1980/shopguard/tool"
)

// DefaultMaxSteps bounds the reasoning loop when no budget is configured.
// Each step is one model call, so the budget bounds worst-case latency and
// cost per turn.
const DefaultMaxSteps = 5

// BudgetFallbackReply is the deterministic answer emitted when the step
// budget is exhausted without a final answer. The condition is reported, not
// fatal.
const BudgetFallbackReply = "I was not able to finish working on that request. Could you simplify it or try again?"

// ErrUnknownTool marks a model selecting a tool name outside the registry.
// The loop aborts; the pipeline substitutes a generic failure reply.
var ErrUnknownTool = errors.New("unknown tool requested")

// ToolTrace records one tool execution performed during a turn, for
// downstream reconciliation and observability.
type ToolTrace struct {
	Name   string
	Result any
	Err    error
}

// Outcome is the product of one orchestrator invocation: the candidate
// reply plus the turns generated along the way. Turns are handed back to
// the pipeline, which is the sole writer of session history.
type Outcome struct {
	Reply      string
	Source     core.Source
	Steps      int
	Turns      []core.ChatTurn
	ToolTraces []ToolTrace
}

// Options configures an Orchestrator.
type Options struct {
	MaxSteps     int
	Instructions string
	Logger       logging.Logger
	Metrics      *observability.Metrics
}

// Orchestrator runs the ReAct-style loop: on each step the model either
// selects tools (whose results are appended to history for the next step)
// or emits a final answer. The loop is synchronous within one request;
// suspension happens only inside model and tool calls.
type Orchestrator struct {
	model        model.Model
	registry     *tool.Registry
	maxSteps     int
	instructions string
	logger       logging.Logger
	metrics      *observability.Metrics
}

// New constructs an orchestrator with optional overrides.
func New(m model.Model, registry *tool.Registry, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxSteps:     DefaultMaxSteps,
		Instructions: DefaultInstructions,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &Orchestrator{
		model:        m,
		registry:     registry,
		maxSteps:     opts.MaxSteps,
		instructions: opts.Instructions,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
}

// DefaultInstructions is the system prompt for the shopping assistant.
const DefaultInstructions = `You are Checkout Charlie, a careful e-commerce assistant.
Answer the customer's shopping questions helpfully and concisely.
If the customer asks about the catalog, call lookup_products.
If the customer asks for a total or checkout summary, call compute_basket_total.
Only state prices you obtained from tool results.`

// RunTurn executes the loop over the given conversation history and returns
// the outcome.
//
// Failure handling:
//   - model errors fail fast, wrapped as model.ErrUnavailable
//   - an unknown tool name aborts with ErrUnknownTool
//   - tool validation/execution errors become tool-result turns so the
//     model can report the rejection to the user
//   - an exhausted step budget yields the deterministic fallback reply
func (o *Orchestrator) RunTurn(ctx context.Context, history []core.ChatTurn) (*Outcome, error) {
	outcome := &Outcome{Source: core.SourceAgent}
	working := make([]core.ChatTurn, len(history))
	copy(working, history)

	for step := 0; step < o.maxSteps; step++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("turn cancelled: %v: %w", ctx.Err(), model.ErrUnavailable)
		default:
		}

		outcome.Steps++
		decision, err := o.decide(ctx, working)
		if err != nil {
			if errors.Is(err, model.ErrUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("model step failed: %v: %w", err, model.ErrUnavailable)
		}

		if !decision.IsToolCall() {
			outcome.Reply = decision.Text
			outcome.Turns = append(outcome.Turns, core.NewAssistantTurn(decision.Text))
			return outcome, nil
		}

		callTurn := core.NewToolCallTurn(decision.ToolCalls)
		outcome.Turns = append(outcome.Turns, callTurn)
		working = append(working, callTurn)

		for _, call := range decision.ToolCalls {
			resultTurn, trace, err := o.executeCall(ctx, call)
			if err != nil {
				return nil, err
			}
			outcome.ToolTraces = append(outcome.ToolTraces, trace)
			outcome.Turns = append(outcome.Turns, resultTurn)
			working = append(working, resultTurn)
		}
	}

	o.logger.Warn("agent.step_budget.exhausted", "max_steps", o.maxSteps)
	outcome.Reply = BudgetFallbackReply
	outcome.Source = core.SourceFallback
	outcome.Turns = append(outcome.Turns, core.NewAssistantTurn(BudgetFallbackReply))
	return outcome, nil
}

func (o *Orchestrator) decide(ctx context.Context, history []core.ChatTurn) (*model.Decision, error) {
	start := time.Now()
	decision, err := o.model.Decide(ctx, model.Request{
		Instructions: o.instructions,
		History:      history,
		Tools:        o.registry.Definitions(),
	})
	o.metrics.ObserveModelLatency(time.Since(start).Seconds())
	o.logger.Debug("agent.model.step",
		"model", o.model.Info().Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)
	return decision, err
}

// executeCall runs one tool call. Unknown tool names are fatal for the
// loop; tool validation and execution failures are folded into the
// conversation as tool-result turns so the model can recover.
func (o *Orchestrator) executeCall(ctx context.Context, call core.ToolCall) (core.ChatTurn, ToolTrace, error) {
	start := time.Now()
	result, err := o.registry.Execute(ctx, call.Name, call.Arguments)
	dur := time.Since(start)

	var toolErr *tool.ToolError
	if errors.As(err, &toolErr) && toolErr.Code == tool.CodeUnknownTool {
		o.logger.Error("agent.tool.unknown", "tool", call.Name)
		return core.ChatTurn{}, ToolTrace{}, fmt.Errorf("tool %q: %w", call.Name, ErrUnknownTool)
	}

	o.logger.Info("agent.tool.executed",
		"tool", call.Name,
		"duration_ms", dur.Milliseconds(),
		"error", err != nil,
	)

	trace := ToolTrace{Name: call.Name, Result: result, Err: err}
	if err != nil {
		return core.NewToolResultTurn(call, "", err), trace, nil
	}

	payload, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return core.NewToolResultTurn(call, "", fmt.Errorf("encoding tool result: %w", marshalErr)), trace, nil
	}
	return core.NewToolResultTurn(call, string(payload), nil), trace, nil
}
