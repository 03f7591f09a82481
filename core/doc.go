// Package core defines the shared domain types of the turn pipeline:
// conversation turns, sessions and their store contract, guard verdicts and
// the final TurnResult handed back to callers.
package core
