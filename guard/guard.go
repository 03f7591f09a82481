// Package guard implements the policy classifiers and transformers applied
// around the reasoning loop: prompt screening, reply tone enforcement,
// semantic relevance judgment and price integrity reconciliation.
//
// Every guard returns a core.GuardVerdict plus an error. The error channel
// is reserved for infrastructure failures of the guard itself (an
// unreachable judge, a broken classifier); the pipeline fails closed on it,
// treating the turn as blocked rather than silently passing.
package guard

import "github.com/hupe1980/shopguard/core"

// pass builds a clean verdict for the named guard.
func pass(guardName string) core.GuardVerdict {
	return core.GuardVerdict{Guard: guardName, Passed: true}
}

// reject builds a failing verdict with a human-readable reason.
func reject(guardName, reason string) core.GuardVerdict {
	return core.GuardVerdict{Guard: guardName, Passed: false, Reason: reason}
}

// rewrite builds a sanitizing verdict: the turn continues with the
// rewritten content and the verdict is reported to the caller.
func rewrite(guardName, reason, content string) core.GuardVerdict {
	return core.GuardVerdict{Guard: guardName, Passed: true, Reason: reason, RewrittenContent: content}
}
