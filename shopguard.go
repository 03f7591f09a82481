// Package shopguard provides a high-level façade over the guarded chat
// pipeline. Most applications interact with this package by:
//  1. Creating a ShopGuard via New() with a model implementation
//  2. Calling Chat() for each user message
//
// Defaults are safe for local development and testing: an in-memory session
// store, the seeded demo catalog, lexicon-backed prompt and response
// guards, a model-backed relevance judge, and the catalog integrity
// checker. Production deployments typically supply a structured logger and
// Prometheus metrics.
package shopguard

import (
	"context"

	"github.com/hupe1980/shopguard/agent"
	"github.com/hupe1980/shopguard/catalog"
	"github.com/hupe1980/shopguard/core"
	"github.com/hupe1980/shopguard/guard"
	"github.com/hupe1980/shopguard/logging"
	"github.com/hupe1980/shopguard/model"
	"github.com/hupe1980/shopguard/observability"
	"github.com/hupe1980/shopguard/pipeline"
	"github.com/hupe1980/shopguard/session"
	"github.com/hupe1980/shopguard/tool"
)

// Options configures the ShopGuard instance.
type Options struct {
	// SessionStore holds conversation history (defaults to in-memory).
	SessionStore core.SessionStore

	// Catalog is the product store backing the tools and the integrity
	// checker (defaults to the seeded demo catalog).
	Catalog *catalog.Store

	// MaxSteps bounds the agent loop per turn.
	MaxSteps int

	// MaxBasketQuantity bounds a single basket line.
	MaxBasketQuantity int

	// Instructions overrides the assistant system prompt.
	Instructions string

	// ResponseStrictness selects reject or rewrite handling for flagged
	// replies.
	ResponseStrictness guard.Strictness

	// RelevanceJudge overrides the default model-backed judge. Setting it
	// to a stub keeps tests hermetic.
	RelevanceJudge guard.Judge

	// Metrics enables Prometheus instrumentation (nil records nothing).
	Metrics *observability.Metrics

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// ShopGuard aggregates the pipeline and its collaborators.
type ShopGuard struct {
	pipeline *pipeline.Pipeline
	catalog  *catalog.Store
}

// New creates a ShopGuard instance backed by the given model, with optional
// overrides. Any unset collaborator is initialized with its default.
func New(m model.Model, optFns ...func(o *Options)) *ShopGuard {
	opts := Options{
		SessionStore:       session.NewInMemoryStore(),
		Catalog:            catalog.NewStore(catalog.SeedProducts()...),
		MaxSteps:           agent.DefaultMaxSteps,
		MaxBasketQuantity:  tool.DefaultMaxQuantity,
		Instructions:       agent.DefaultInstructions,
		ResponseStrictness: guard.StrictnessReject,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry := tool.NewRegistry(
		tool.NewLookupTool(opts.Catalog),
		tool.NewBasketTool(opts.Catalog, opts.MaxBasketQuantity),
	)

	orchestrator := agent.New(m, registry, func(o *agent.Options) {
		o.MaxSteps = opts.MaxSteps
		o.Instructions = opts.Instructions
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	judge := opts.RelevanceJudge
	if judge == nil {
		judge = guard.NewLLMJudge(m)
	}

	p := pipeline.New(opts.SessionStore, orchestrator, func(o *pipeline.Options) {
		o.PromptGuard = guard.NewDefaultPromptGuard()
		o.ResponseGuard = guard.NewDefaultResponseGuard(opts.ResponseStrictness)
		o.RelevanceGuard = guard.NewRelevanceGuard(judge)
		o.Integrity = guard.NewIntegrityChecker(opts.Catalog)
		o.Metrics = opts.Metrics
		o.Logger = opts.Logger
	})

	return &ShopGuard{pipeline: p, catalog: opts.Catalog}
}

// Chat runs one guarded turn. An empty sessionID starts a new conversation;
// the returned response carries the identifier to reuse.
func (sg *ShopGuard) Chat(ctx context.Context, sessionID, message string) (*pipeline.Response, error) {
	return sg.pipeline.RunTurn(ctx, pipeline.Request{SessionID: sessionID, Message: message})
}

// Pipeline exposes the underlying pipeline, for mounting behind a server.
func (sg *ShopGuard) Pipeline() *pipeline.Pipeline { return sg.pipeline }

// Catalog exposes the product store backing the tools.
func (sg *ShopGuard) Catalog() *catalog.Store { return sg.catalog }
