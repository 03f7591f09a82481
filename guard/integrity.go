package guard

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hupe1980/shopguard/catalog"
	"github.com/hupe1980/shopguard/core"
)

// priceTolerance absorbs formatting differences like "$79" vs "$79.00".
const priceTolerance = 0.005

var pricePattern = regexp.MustCompile(`\$\s?(\d+(?:,\d{3})*(?:\.\d{1,2})?)`)

// IntegrityChecker reconciles price figures a candidate reply asserts about
// catalog products against the live catalog. A model-asserted price never
// overrides catalog truth: mismatches are rewritten to the verified price
// and reported in the verdict.
type IntegrityChecker struct {
	catalog *catalog.Store
}

// NewIntegrityChecker builds the checker over the given catalog.
func NewIntegrityChecker(store *catalog.Store) *IntegrityChecker {
	return &IntegrityChecker{catalog: store}
}

// Reconcile scans the reply sentence by sentence. In a sentence that
// mentions exactly one catalog product, every dollar figure must equal the
// product's unit price; anything else is rewritten to the verified unit
// price. When basketPriced is true the turn computed a basket total, which
// additionally licenses whole multiples of the unit price (line totals).
// Sentences mentioning no or several products are left alone rather than
// guessed at.
func (c *IntegrityChecker) Reconcile(_ context.Context, reply string, basketPriced bool) (core.GuardVerdict, error) {
	var corrections []string
	out := reply

	for _, sentence := range splitSentences(reply) {
		product, unique := c.singleProductIn(sentence)
		if !unique {
			continue
		}
		fixed := pricePattern.ReplaceAllStringFunc(sentence, func(assertion string) string {
			amount, ok := parsePrice(assertion)
			if !ok || priceConsistent(amount, product.Price, basketPriced) {
				return assertion
			}
			verified := formatPrice(product.Price)
			corrections = append(corrections, fmt.Sprintf(
				"price for %s (%s) corrected from %s to %s",
				product.Name, product.SKU, strings.TrimSpace(assertion), verified,
			))
			return verified
		})
		if fixed != sentence {
			out = strings.Replace(out, sentence, fixed, 1)
		}
	}

	if len(corrections) == 0 {
		return pass(core.GuardIntegrity), nil
	}
	return rewrite(core.GuardIntegrity, strings.Join(corrections, "; "), out), nil
}

// singleProductIn returns the catalog product mentioned in the sentence,
// and whether exactly one is mentioned.
func (c *IntegrityChecker) singleProductIn(sentence string) (catalog.Product, bool) {
	lower := strings.ToLower(sentence)
	var found catalog.Product
	count := 0
	for _, p := range c.catalog.All() {
		if strings.Contains(lower, strings.ToLower(p.Name)) || strings.Contains(lower, strings.ToLower(p.SKU)) {
			found = p
			count++
		}
	}
	return found, count == 1
}

// priceConsistent accepts the exact unit price, plus whole multiples of it
// (quantity-priced line totals) when the turn computed a basket.
func priceConsistent(asserted, unit float64, allowMultiples bool) bool {
	if unit <= 0 {
		return true
	}
	if !allowMultiples {
		return diff(asserted, unit) < priceTolerance
	}
	ratio := asserted / unit
	rounded := float64(int(ratio + 0.5))
	return rounded >= 1 && diff(asserted, rounded*unit) < priceTolerance
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func parsePrice(assertion string) (float64, bool) {
	m := pricePattern.FindStringSubmatch(assertion)
	if len(m) < 2 {
		return 0, false
	}
	var amount float64
	if _, err := fmt.Sscanf(strings.ReplaceAll(m[1], ",", ""), "%f", &amount); err != nil {
		return 0, false
	}
	return amount, true
}

func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

// splitSentences is a pragmatic splitter on terminal punctuation; replies
// are short assistant prose, not arbitrary documents. A '.' terminates a
// sentence only when followed by whitespace or end of text, so the decimal
// point inside a price like $79.99 never splits an assertion.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '!', '?', '\n':
		case '.':
			if i+1 < len(text) && !isSpace(text[i+1]) {
				continue
			}
		default:
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
