package guard

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Label is the outcome of a single policy classification.
type Label struct {
	Flagged  bool
	Category string
	Reason   string
}

// Classifier decides whether a piece of text violates one policy category.
// Implementations must be deterministic for identical input given a fixed
// pattern or model version, so guard behavior is reproducible in tests.
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}

// LexiconClassifier flags text matching any of a compiled regex pattern set.
// It doubles as a redactor for guards that sanitize instead of rejecting.
type LexiconClassifier struct {
	category string
	patterns []*regexp.Regexp
}

// NewLexiconClassifier compiles the given patterns for one policy category.
// Patterns are matched case-insensitively on word boundaries.
func NewLexiconClassifier(category string, terms []string) (*LexiconClassifier, error) {
	c := &LexiconClassifier{category: category, patterns: make([]*regexp.Regexp, 0, len(terms))}
	for _, term := range terms {
		re, err := regexp.Compile(`(?i)\b` + term + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q for category %s: %w", term, category, err)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// MustLexiconClassifier is NewLexiconClassifier panicking on bad patterns.
// The built-in term lists are program constants, not runtime input.
func MustLexiconClassifier(category string, terms []string) *LexiconClassifier {
	c, err := NewLexiconClassifier(category, terms)
	if err != nil {
		panic(err)
	}
	return c
}

// Category returns the policy category this classifier enforces.
func (c *LexiconClassifier) Category() string { return c.category }

// Classify implements Classifier.
func (c *LexiconClassifier) Classify(_ context.Context, text string) (Label, error) {
	for _, re := range c.patterns {
		if match := re.FindString(text); match != "" {
			return Label{
				Flagged:  true,
				Category: c.category,
				Reason:   fmt.Sprintf("%s content detected (matched %q)", c.category, strings.ToLower(match)),
			}, nil
		}
	}
	return Label{}, nil
}

// Redact replaces every pattern match with asterisks of equal length,
// preserving surrounding text.
func (c *LexiconClassifier) Redact(text string) string {
	for _, re := range c.patterns {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			return strings.Repeat("*", len(match))
		})
	}
	return text
}

// DefaultToxicLanguage returns the built-in insult/profanity classifier used
// by both the prompt and response tone checks.
func DefaultToxicLanguage() *LexiconClassifier {
	return MustLexiconClassifier("toxic-language", []string{
		"stupid", "idiot", "idiotic", "moron", "moronic", "dumb", "dumbass",
		"useless", "worthless", "pathetic", "garbage", "trash",
		"shut up", "screw you", "damn", "crap", "suck", "sucks",
		"hate you", "loser", "jerk",
	})
}

// DefaultSensitiveTopics returns the built-in sensitive-topic classifier.
// The policy scope is political content, matching the deployed guard
// configuration.
func DefaultSensitiveTopics() *LexiconClassifier {
	return MustLexiconClassifier("sensitive-topic", []string{
		"politic", "politics", "political", "politician",
		"election", "elections", "vote for", "voting", "ballot",
		"president", "prime minister", "government", "parliament", "congress",
		"democrat", "democrats", "republican", "republicans",
		"left[- ]wing", "right[- ]wing", "campaign rally",
	})
}
