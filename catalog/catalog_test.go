package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- Projection Tests --------------------

func TestProduct_PublicDropsRestrictedNotes(t *testing.T) {
	p := Product{
		SKU:             "SKU-001",
		Name:            "Smart Speaker",
		Category:        "home-audio",
		Price:           79.0,
		Currency:        "USD",
		Inventory:       24,
		RestrictedNotes: "VIP discount code: vip-secret-50",
	}

	pub := p.Public()
	assert.Equal(t, p.SKU, pub.SKU)
	assert.Equal(t, p.Price, pub.Price)

	raw, err := json.Marshal(pub)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "vip-secret-50")
}

func TestProduct_FullRecordJSONOmitsRestrictedNotes(t *testing.T) {
	// Even serializing the full record must not leak: the field has no
	// JSON tag on purpose.
	raw, err := json.Marshal(SeedProducts())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "vip-secret-50")
	assert.NotContains(t, string(raw), "RestrictedNotes")
}

// -------------------- Store Tests --------------------

func TestStore_GetAndLen(t *testing.T) {
	store := NewStore(SeedProducts()...)
	assert.Equal(t, 4, store.Len())

	p, ok := store.Get("SKU-002")
	require.True(t, ok)
	assert.Equal(t, "Productivity Laptop", p.Name)
	assert.Equal(t, 1299.0, p.Price)

	_, ok = store.Get("SKU-999")
	assert.False(t, ok)
}

func TestStore_AllPreservesInsertionOrder(t *testing.T) {
	store := NewStore(SeedProducts()...)
	all := store.All()
	require.Len(t, all, 4)
	assert.Equal(t, "SKU-001", all[0].SKU)
	assert.Equal(t, "SKU-004", all[3].SKU)
}

// -------------------- Search Tests --------------------

func TestStore_SearchByKeyword(t *testing.T) {
	store := NewStore(SeedProducts()...)

	results := store.Search("laptop")
	require.Len(t, results, 1)
	assert.Equal(t, "SKU-002", results[0].SKU)

	results = store.Search("home-audio")
	assert.Len(t, results, 2)
}

func TestStore_SearchCommaSeparatedKeywords(t *testing.T) {
	store := NewStore(SeedProducts()...)

	results := store.Search("laptop, hub")
	require.Len(t, results, 2)
	assert.Equal(t, "SKU-002", results[0].SKU)
	assert.Equal(t, "SKU-004", results[1].SKU)
}

func TestStore_SearchEmptyQueryReturnsAll(t *testing.T) {
	store := NewStore(SeedProducts()...)
	assert.Len(t, store.Search(""), 4)
	assert.Len(t, store.Search(" , "), 4)
}

func TestStore_SearchNeverMatchesRestrictedNotes(t *testing.T) {
	store := NewStore(SeedProducts()...)

	// Probing with terms that only occur in restricted metadata must come
	// back empty.
	for _, probe := range []string{"vip-secret-50", "vip", "debug firmware", "email list"} {
		assert.Empty(t, store.Search(probe), "probe %q must not match", probe)
	}
}

func TestSeedProducts_RestrictedNotesPresentOnFullRecords(t *testing.T) {
	// Guard tests depend on the notes being unmistakably sensitive.
	for _, p := range SeedProducts() {
		assert.True(t, strings.TrimSpace(p.RestrictedNotes) != "", "seed %s needs restricted notes", p.SKU)
	}
}
