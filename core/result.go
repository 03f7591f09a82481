package core

// Guard names as reported in GuardVerdict / guardrails_applied.
const (
	GuardPrompt    = "prompt_guard"
	GuardResponse  = "response_guard"
	GuardRelevance = "relevance_guard"
	GuardIntegrity = "integrity_check"
)

// GuardVerdict is the result of one guard evaluation. Guards that sanitize
// rather than reject populate RewrittenContent and the pipeline carries the
// rewritten text forward.
type GuardVerdict struct {
	Guard            string `json:"guard"`
	Passed           bool   `json:"passed"`
	Reason           string `json:"reason,omitempty"`
	RewrittenContent string `json:"rewritten_content,omitempty"`
}

// Clean reports whether the verdict is a clean pass that callers never see.
func (v GuardVerdict) Clean() bool { return v.Passed && v.RewrittenContent == "" }

// Source tags how the reply text of a TurnResult was produced.
type Source string

const (
	// SourceAgent marks a reply produced by the reasoning loop.
	SourceAgent Source = "agent"
	// SourceFallback marks a fixed substitute reply (policy block, step
	// budget exhaustion, unrecoverable tool dispatch).
	SourceFallback Source = "fallback"
)

// TurnResult is the outcome of one full pipeline transaction.
// GuardrailsApplied holds only verdicts that were not a clean pass, so a
// fully clean turn serializes without the field.
type TurnResult struct {
	Reply             string         `json:"reply"`
	GuardrailsApplied []GuardVerdict `json:"guardrails_applied,omitempty"`
	Source            Source         `json:"source"`
}
