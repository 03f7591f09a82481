// Package catalog implements the product catalog store. Records carry
// restricted metadata that must never cross the store's public boundary:
// every outbound path (lookup, search) projects to PublicProduct first.
package catalog

import "sync"

// Product is a full catalog record including restricted metadata.
// RestrictedNotes holds non-public data (discount codes, internal remarks)
// and is deliberately absent from every JSON tag so an accidental
// serialization of the full record still does not leak it.
type Product struct {
	SKU             string  `json:"sku"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	Inventory       int     `json:"inventory"`
	RestrictedNotes string  `json:"-"`
}

// PublicProduct is the outward projection of a Product: the only shape that
// leaves the catalog boundary via tools or replies.
type PublicProduct struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Inventory int     `json:"inventory"`
}

// Public returns the public projection of the record.
func (p Product) Public() PublicProduct {
	return PublicProduct{
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Currency:  p.Currency,
		Inventory: p.Inventory,
	}
}

// Store is an immutable-per-request product catalog keyed by SKU. Reads are
// safe for concurrent use; the record set is fixed at construction.
type Store struct {
	mu       sync.RWMutex
	products map[string]Product
	order    []string
}

// NewStore builds a catalog store from the given records. Later duplicates
// of a SKU replace earlier ones.
func NewStore(products ...Product) *Store {
	s := &Store{products: make(map[string]Product, len(products))}
	for _, p := range products {
		if _, exists := s.products[p.SKU]; !exists {
			s.order = append(s.order, p.SKU)
		}
		s.products[p.SKU] = p
	}
	return s
}

// Get returns the full record for a SKU. Callers inside the tool boundary
// use it for price ground truth; it must not be serialized outward.
func (s *Store) Get(sku string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[sku]
	return p, ok
}

// All returns every record in insertion order.
func (s *Store) All() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.order))
	for _, sku := range s.order {
		out = append(out, s.products[sku])
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}
