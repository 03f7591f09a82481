package guard

import (
	"context"
	"fmt"

	"github.com/hupe1980/shopguard/core"
)

// PromptGuard screens an inbound user message before the reasoning loop
// runs. It applies two independent checks: a sensitive-topic classifier and
// a toxic-language classifier. Either failing blocks the turn.
type PromptGuard struct {
	sensitive Classifier
	toxic     Classifier
}

// NewPromptGuard builds a prompt guard from explicit classifiers, allowing
// tests to stub them.
func NewPromptGuard(sensitive, toxic Classifier) *PromptGuard {
	return &PromptGuard{sensitive: sensitive, toxic: toxic}
}

// NewDefaultPromptGuard builds a prompt guard with the built-in lexicon
// classifiers.
func NewDefaultPromptGuard() *PromptGuard {
	return NewPromptGuard(DefaultSensitiveTopics(), DefaultToxicLanguage())
}

// Evaluate classifies the user message against both policy categories. The
// session history parameter is part of the contract for classifiers that
// weigh context; the built-in lexicons ignore it. A returned error means a
// classifier itself failed and the caller must fail closed.
func (g *PromptGuard) Evaluate(ctx context.Context, userMessage string, _ []core.ChatTurn) (core.GuardVerdict, error) {
	for _, c := range []Classifier{g.sensitive, g.toxic} {
		label, err := c.Classify(ctx, userMessage)
		if err != nil {
			return reject(core.GuardPrompt, "prompt classifier unavailable"), fmt.Errorf("prompt guard classifier: %w", err)
		}
		if label.Flagged {
			return reject(core.GuardPrompt, label.Reason), nil
		}
	}
	return pass(core.GuardPrompt), nil
}
