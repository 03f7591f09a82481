package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/shopguard/core"
	"github.com/hupe1980/shopguard/model"
)

// Judge scores whether an answer addresses a question. Implementations may
// use an LLM or any equivalent semantic judgment; tests stub it.
type Judge interface {
	Judge(ctx context.Context, question, answer string) (relevant bool, reason string, err error)
}

// RelevanceGuard decides whether a candidate reply addresses the latest
// user request. On a miss the pipeline issues exactly one nudge retry and
// accepts the second attempt unconditionally to guarantee termination.
type RelevanceGuard struct {
	judge Judge
}

// NewRelevanceGuard builds a relevance guard around the given judge.
func NewRelevanceGuard(judge Judge) *RelevanceGuard {
	return &RelevanceGuard{judge: judge}
}

// Evaluate scores the candidate against the latest user message. A returned
// error means the judge itself failed and the caller must fail closed.
func (g *RelevanceGuard) Evaluate(ctx context.Context, candidate, latestUserMessage string) (core.GuardVerdict, error) {
	relevant, reason, err := g.judge.Judge(ctx, latestUserMessage, candidate)
	if err != nil {
		return reject(core.GuardRelevance, "relevance judge unavailable"), fmt.Errorf("relevance guard judge: %w", err)
	}
	if relevant {
		return pass(core.GuardRelevance), nil
	}
	if reason == "" {
		reason = "reply does not address the user's request"
	}
	return reject(core.GuardRelevance, reason), nil
}

const judgeInstructions = `You are a strict relevance judge for a shopping assistant.
Given a customer question and an assistant answer, decide whether the answer addresses the question.
Respond with a single word: YES if the answer addresses the question, NO otherwise.`

// LLMJudge implements Judge via a model acting as a yes/no relevance
// classifier.
type LLMJudge struct {
	model model.Model
}

// NewLLMJudge builds a judge over the given model.
func NewLLMJudge(m model.Model) *LLMJudge {
	return &LLMJudge{model: m}
}

// Judge implements the Judge interface. The model is asked for a bare
// YES/NO; anything that does not start with YES counts as a miss, so an
// equivocating judge fails toward a nudge retry rather than a silent pass.
func (j *LLMJudge) Judge(ctx context.Context, question, answer string) (bool, string, error) {
	prompt := fmt.Sprintf("Question:\n%s\n\nAnswer:\n%s", question, answer)
	decision, err := j.model.Decide(ctx, model.Request{
		Instructions: judgeInstructions,
		History:      []core.ChatTurn{core.NewUserTurn(prompt)},
	})
	if err != nil {
		return false, "", err
	}

	verdict := strings.ToUpper(strings.TrimSpace(decision.Text))
	if strings.HasPrefix(verdict, "YES") {
		return true, "", nil
	}
	return false, "reply judged off-topic for the user's request", nil
}
