// Package pipeline wires the guarded turn flow: prompt guard, agent loop,
// response guard, catalog integrity reconciliation, and relevance guard
// with a single retry.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/shopguard/agent"
	"github.com/hupe1980/shopguard/core"
	"github.com/hupe1980/shopguard/logging"
	"github.com/hupe1980/shopguard/model"
	"github.com/hupe1980/shopguard/observability"
	"github.com/hupe1980/shopguard/tool"
)

func isUnavailable(err error) bool { return errors.Is(err, model.ErrUnavailable) }

// Fixed replies returned when a guard blocks a turn or the pipeline fails
// internally. They are deliberately uninformative so that nothing about the
// blocked content leaks back to the user.
const (
	BlockedReply      = "I am sorry but I cannot engage in this type of behavior."
	DifficultiesReply = "I am sorry but I am experiencing some difficulties."
)

// nudgeInstruction is appended to the conversation when the relevance guard
// misses, prompting one corrective attempt.
const nudgeInstruction = "Your previous answer did not address the customer's question. Answer the question below directly: "

// Request is one inbound user message. An empty SessionID starts a new
// conversation.
type Request struct {
	SessionID string
	Message   string
}

// Response carries the session identifier (possibly freshly minted) and the
// turn result.
type Response struct {
	SessionID string
	Result    core.TurnResult
}

// PromptGuard screens the inbound user message before any model call.
type PromptGuard interface {
	Evaluate(ctx context.Context, userMessage string, history []core.ChatTurn) (core.GuardVerdict, error)
}

// ResponseGuard screens a candidate reply before it reaches the user.
type ResponseGuard interface {
	Evaluate(ctx context.Context, candidate string) (core.GuardVerdict, error)
}

// RelevanceGuard judges whether a candidate reply addresses the user's
// question.
type RelevanceGuard interface {
	Evaluate(ctx context.Context, candidate, latestUserMessage string) (core.GuardVerdict, error)
}

// IntegrityChecker reconciles dollar figures in a reply against the
// catalog.
type IntegrityChecker interface {
	Reconcile(ctx context.Context, reply string, basketPriced bool) (core.GuardVerdict, error)
}

// Orchestrator runs the agent loop for one turn.
type Orchestrator interface {
	RunTurn(ctx context.Context, history []core.ChatTurn) (*agent.Outcome, error)
}

// Options configures a Pipeline.
type Options struct {
	PromptGuard    PromptGuard
	ResponseGuard  ResponseGuard
	RelevanceGuard RelevanceGuard
	Integrity      IntegrityChecker
	Metrics        *observability.Metrics
	Logger         logging.Logger
}

// Pipeline executes guarded turns against a session store. All guard and
// model failures degrade to fixed fallback replies; only model
// unavailability propagates as an error so the transport can signal it.
type Pipeline struct {
	sessions     core.SessionStore
	orchestrator Orchestrator
	promptGuard  PromptGuard
	responseGd   ResponseGuard
	relevanceGd  RelevanceGuard
	integrity    IntegrityChecker
	metrics      *observability.Metrics
	logger       logging.Logger
}

// New constructs a pipeline. Guards left unset are skipped.
func New(sessions core.SessionStore, orchestrator Orchestrator, optFns ...func(o *Options)) *Pipeline {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Pipeline{
		sessions:     sessions,
		orchestrator: orchestrator,
		promptGuard:  opts.PromptGuard,
		responseGd:   opts.ResponseGuard,
		relevanceGd:  opts.RelevanceGuard,
		integrity:    opts.Integrity,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}
}

// RunTurn processes one user message through the full guard chain and
// returns the reply to show the user. The user turn and the final assistant
// turn are always persisted, including blocked turns, so that follow-up
// turns see the full conversation.
func (p *Pipeline) RunTurn(ctx context.Context, req Request) (*Response, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = core.NewID()
	}
	log := p.logger

	session, err := p.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}

	userTurn := core.NewUserTurn(req.Message)
	if err := p.sessions.AppendTurn(sessionID, userTurn); err != nil {
		return nil, fmt.Errorf("appending user turn: %w", err)
	}
	history := append(session.History(), userTurn)

	var applied []core.GuardVerdict
	record := func(v core.GuardVerdict) {
		if v.Clean() {
			return
		}
		applied = append(applied, v)
		p.metrics.ObserveGuard(v.Guard)
	}

	// Inbound screening. A classifier failure fails closed.
	if p.promptGuard != nil {
		verdict, err := p.promptGuard.Evaluate(ctx, req.Message, history)
		if err != nil {
			log.Error("pipeline.prompt_guard.failed", "session_id", sessionID, "error", err)
			return p.finish(sessionID, DifficultiesReply, core.SourceFallback, applied)
		}
		if !verdict.Passed {
			record(verdict)
			log.Info("pipeline.prompt_guard.blocked", "session_id", sessionID, "reason", verdict.Reason)
			return p.finish(sessionID, BlockedReply, core.SourceFallback, applied)
		}
	}

	outcome, err := p.runAgent(ctx, sessionID, history)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return p.finish(sessionID, DifficultiesReply, core.SourceFallback, applied)
	}
	if outcome.Source == core.SourceFallback {
		return p.finish(sessionID, outcome.Reply, core.SourceFallback, applied)
	}

	reply, blocked, err := p.screenReply(ctx, sessionID, outcome.Reply, pricedBasket(outcome), record)
	if err != nil {
		return p.finish(sessionID, DifficultiesReply, core.SourceFallback, applied)
	}
	if blocked {
		return p.finish(sessionID, BlockedReply, core.SourceFallback, applied)
	}

	// Relevance check with at most one corrective attempt. The retry's
	// answer is accepted regardless of its own relevance, but the verdict
	// stays on the record.
	if p.relevanceGd != nil {
		verdict, err := p.relevanceGd.Evaluate(ctx, reply, req.Message)
		if err != nil {
			log.Error("pipeline.relevance_guard.failed", "session_id", sessionID, "error", err)
			return p.finish(sessionID, DifficultiesReply, core.SourceFallback, applied)
		}
		if !verdict.Passed {
			record(verdict)
			log.Info("pipeline.relevance_guard.retry", "session_id", sessionID, "reason", verdict.Reason)

			retryHistory := append(history, outcome.Turns...)
			retryHistory = append(retryHistory, core.NewUserTurn(nudgeInstruction+req.Message))

			retry, err := p.runAgent(ctx, sessionID, retryHistory)
			if err != nil {
				return nil, err
			}
			if retry != nil && retry.Source == core.SourceAgent {
				retried, blocked, err := p.screenReply(ctx, sessionID, retry.Reply, pricedBasket(retry), record)
				if err != nil {
					return p.finish(sessionID, DifficultiesReply, core.SourceFallback, applied)
				}
				if blocked {
					return p.finish(sessionID, BlockedReply, core.SourceFallback, applied)
				}
				reply = retried
			}
		}
	}

	return p.finish(sessionID, reply, core.SourceAgent, applied)
}

// runAgent invokes the orchestrator and maps its failure modes. Model
// unavailability propagates; every other failure is logged and degraded to
// a nil outcome, which the caller turns into the difficulties reply.
func (p *Pipeline) runAgent(ctx context.Context, sessionID string, history []core.ChatTurn) (*agent.Outcome, error) {
	outcome, err := p.orchestrator.RunTurn(ctx, history)
	if err != nil {
		if isUnavailable(err) {
			return nil, err
		}
		p.logger.Error("pipeline.agent.failed", "session_id", sessionID, "error", err)
		return nil, nil
	}
	for _, trace := range outcome.ToolTraces {
		p.metrics.ObserveToolCall(trace.Name, trace.Err)
	}
	return outcome, nil
}

// pricedBasket reports whether the turn successfully computed a basket
// total, which licenses quantity line totals in the reply.
func pricedBasket(outcome *agent.Outcome) bool {
	for _, trace := range outcome.ToolTraces {
		if trace.Name == tool.BasketToolName && trace.Err == nil {
			return true
		}
	}
	return false
}

// screenReply applies the response guard and integrity checker to a
// candidate reply. It returns the possibly rewritten reply, whether the
// reply was blocked outright, and any guard infrastructure error.
func (p *Pipeline) screenReply(ctx context.Context, sessionID, candidate string, basketPriced bool, record func(core.GuardVerdict)) (string, bool, error) {
	reply := candidate

	if p.responseGd != nil {
		verdict, err := p.responseGd.Evaluate(ctx, reply)
		if err != nil {
			p.logger.Error("pipeline.response_guard.failed", "session_id", sessionID, "error", err)
			return "", false, err
		}
		if !verdict.Passed {
			record(verdict)
			return "", true, nil
		}
		if verdict.RewrittenContent != "" {
			record(verdict)
			reply = verdict.RewrittenContent
		}
	}

	if p.integrity != nil {
		verdict, err := p.integrity.Reconcile(ctx, reply, basketPriced)
		if err != nil {
			p.logger.Error("pipeline.integrity.failed", "session_id", sessionID, "error", err)
			return "", false, err
		}
		if verdict.RewrittenContent != "" {
			record(verdict)
			reply = verdict.RewrittenContent
		}
	}

	return reply, false, nil
}

// finish persists the assistant turn, records metrics, and assembles the
// response.
func (p *Pipeline) finish(sessionID, reply string, source core.Source, applied []core.GuardVerdict) (*Response, error) {
	if err := p.sessions.AppendTurn(sessionID, core.NewAssistantTurn(reply)); err != nil {
		return nil, fmt.Errorf("appending assistant turn: %w", err)
	}
	p.metrics.ObserveTurn(string(source))
	p.logger.Info("pipeline.turn.completed",
		"session_id", sessionID,
		"source", string(source),
		"guards_applied", len(applied),
	)
	return &Response{
		SessionID: sessionID,
		Result: core.TurnResult{
			Reply:             reply,
			GuardrailsApplied: applied,
			Source:            source,
		},
	}, nil
}
