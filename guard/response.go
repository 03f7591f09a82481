package guard

import (
	"context"
	"fmt"

	"github.com/hupe1980/shopguard/core"
)

// Strictness selects how the response guard handles a tone violation.
type Strictness string

const (
	// StrictnessReject discards the candidate; the pipeline substitutes an
	// apologetic fallback.
	StrictnessReject Strictness = "reject"
	// StrictnessRewrite redacts the offending terms and lets the turn
	// continue with the sanitized reply.
	StrictnessRewrite Strictness = "rewrite"
)

// Redactor pairs classification with the ability to produce a sanitized
// rendition of flagged text. *LexiconClassifier satisfies it.
type Redactor interface {
	Classifier
	Redact(text string) string
}

// ResponseGuard applies the tone policy to a candidate reply produced by
// the reasoning loop. It runs after the orchestrator and before the
// relevance guard.
type ResponseGuard struct {
	toxic      Redactor
	strictness Strictness
}

// NewResponseGuard builds a response guard. An unrecognized strictness
// falls back to reject, the safer of the two behaviors.
func NewResponseGuard(toxic Redactor, strictness Strictness) *ResponseGuard {
	if strictness != StrictnessRewrite {
		strictness = StrictnessReject
	}
	return &ResponseGuard{toxic: toxic, strictness: strictness}
}

// NewDefaultResponseGuard builds a response guard with the built-in toxic
// language lexicon.
func NewDefaultResponseGuard(strictness Strictness) *ResponseGuard {
	return NewResponseGuard(DefaultToxicLanguage(), strictness)
}

// Evaluate checks the candidate reply for tone violations. Depending on
// strictness a violation either rejects the candidate or returns a
// sanitized rewrite. A returned error means the classifier itself failed.
func (g *ResponseGuard) Evaluate(ctx context.Context, candidate string) (core.GuardVerdict, error) {
	label, err := g.toxic.Classify(ctx, candidate)
	if err != nil {
		return reject(core.GuardResponse, "response classifier unavailable"), fmt.Errorf("response guard classifier: %w", err)
	}
	if !label.Flagged {
		return pass(core.GuardResponse), nil
	}

	if g.strictness == StrictnessRewrite {
		return rewrite(core.GuardResponse, label.Reason, g.toxic.Redact(candidate)), nil
	}
	return reject(core.GuardResponse, label.Reason), nil
}
