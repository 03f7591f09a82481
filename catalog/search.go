package catalog

import (
	"fmt"
	"strings"
)

// Search returns the public projection of every product whose public fields
// match any of the comma separated keywords in query. An empty query returns
// the whole catalog. Matching is intentionally restricted to the public
// projection: a keyword occurring only in RestrictedNotes never matches, so
// probing queries cannot reveal which records carry restricted metadata.
func (s *Store) Search(query string) []PublicProduct {
	keywords := splitKeywords(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PublicProduct, 0, len(s.order))
	for _, sku := range s.order {
		pub := s.products[sku].Public()
		if len(keywords) == 0 || matches(pub, keywords) {
			out = append(out, pub)
		}
	}
	return out
}

func splitKeywords(query string) []string {
	var keywords []string
	for _, part := range strings.Split(query, ",") {
		if kw := strings.ToLower(strings.TrimSpace(part)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

func matches(p PublicProduct, keywords []string) bool {
	haystack := strings.ToLower(fmt.Sprintf("%s %s %s %g %s", p.SKU, p.Name, p.Category, p.Price, p.Currency))
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
