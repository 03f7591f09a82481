package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/shopguard/catalog"
)

func demoCatalog() *catalog.Store {
	return catalog.NewStore(catalog.SeedProducts()...)
}

// -------------------- Registry Tests --------------------

func TestRegistry_NamesAndDefinitions(t *testing.T) {
	store := demoCatalog()
	r := NewRegistry(NewLookupTool(store), NewBasketTool(store, 0))

	assert.Equal(t, []string{LookupToolName, BasketToolName}, r.Names())

	lookup, ok := r.Get(LookupToolName)
	require.True(t, ok)
	assert.Equal(t, LookupToolName, lookup.Name())
	_, ok = r.Get("missing")
	assert.False(t, ok)

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, LookupToolName, defs[0].Name)
	assert.NotEmpty(t, defs[0].Description)
	assert.NotNil(t, defs[1].Parameters)
}

func TestRegistry_DuplicateNamePanics(t *testing.T) {
	store := demoCatalog()
	assert.Panics(t, func() {
		NewRegistry(NewLookupTool(store), NewLookupTool(store))
	})
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	r := NewRegistry(NewLookupTool(demoCatalog()))

	_, err := r.Execute(context.Background(), "delete_everything", "{}")
	require.Error(t, err)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeUnknownTool, toolErr.Code)
}

func TestRegistry_ExecuteInvalidJSON(t *testing.T) {
	r := NewRegistry(NewLookupTool(demoCatalog()))

	_, err := r.Execute(context.Background(), LookupToolName, "{not json")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestRegistry_ExecuteSchemaValidation(t *testing.T) {
	r := NewRegistry(NewBasketTool(demoCatalog(), 0))

	// items is required by the basket schema.
	_, err := r.Execute(context.Background(), BasketToolName, "{}")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestIsValidation_SeesThroughWrapping(t *testing.T) {
	base := NewToolError(BasketToolName, "quantity must be positive", CodeValidation)
	wrapped := fmt.Errorf("dispatching basket call: %w", base)

	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsValidation(fmt.Errorf("plain failure")))
}

// -------------------- Lookup Tool Tests --------------------

func TestLookupTool_Search(t *testing.T) {
	r := NewRegistry(NewLookupTool(demoCatalog()))

	result, err := r.Execute(context.Background(), LookupToolName, `{"query":"laptop"}`)
	require.NoError(t, err)

	products, ok := result.([]catalog.PublicProduct)
	require.True(t, ok)
	require.Len(t, products, 1)
	assert.Equal(t, "SKU-002", products[0].SKU)
}

func TestLookupTool_EmptyQueryReturnsFullCatalog(t *testing.T) {
	lookup := NewLookupTool(demoCatalog())

	result, err := lookup.Call(context.Background(), map[string]any{})
	require.NoError(t, err)

	products, ok := result.([]catalog.PublicProduct)
	require.True(t, ok)
	assert.Len(t, products, 4)
}

func TestLookupTool_NeverSerializesRestrictedNotes(t *testing.T) {
	lookup := NewLookupTool(demoCatalog())

	result, err := lookup.Call(context.Background(), map[string]any{"query": ""})
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "vip-secret-50")
	assert.NotContains(t, string(raw), "debug firmware")
}

// -------------------- Basket Tool Tests --------------------

func TestBasketTool_ComputeTotal(t *testing.T) {
	basket := NewBasketTool(demoCatalog(), 0)

	total, err := basket.Compute([]BasketItem{
		{SKU: "SKU-001", Quantity: 2},
		{SKU: "SKU-004", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, total.Lines, 2)
	assert.Equal(t, 79.0*2, total.Lines[0].LineTotal)
	assert.Equal(t, 149.0, total.Lines[1].LineTotal)
	assert.Equal(t, 79.0*2+149.0, total.GrandTotal)
	assert.Equal(t, "USD", total.Currency)
}

func TestBasketTool_ComputeIsIdempotent(t *testing.T) {
	basket := NewBasketTool(demoCatalog(), 0)
	items := []BasketItem{{SKU: "SKU-003", Quantity: 3}}

	first, err := basket.Compute(items)
	require.NoError(t, err)
	second, err := basket.Compute(items)
	require.NoError(t, err)
	assert.Equal(t, first.GrandTotal, second.GrandTotal)
}

func TestBasketTool_RejectsInvalidBaskets(t *testing.T) {
	basket := NewBasketTool(demoCatalog(), 10)

	cases := []struct {
		name  string
		items []BasketItem
	}{
		{"empty basket", nil},
		{"unknown sku", []BasketItem{{SKU: "SKU-999", Quantity: 1}}},
		{"zero quantity", []BasketItem{{SKU: "SKU-001", Quantity: 0}}},
		{"negative quantity", []BasketItem{{SKU: "SKU-001", Quantity: -5}}},
		{"over maximum", []BasketItem{{SKU: "SKU-001", Quantity: 11}}},
		{"negative line in mixed basket", []BasketItem{
			{SKU: "SKU-004", Quantity: 1},
			{SKU: "SKU-004", Quantity: -5},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total, err := basket.Compute(tc.items)
			require.Error(t, err)
			assert.Nil(t, total, "no partial total on rejection")
			assert.True(t, IsValidation(err))
		})
	}
}

func TestBasketTool_RejectsFractionalQuantity(t *testing.T) {
	r := NewRegistry(NewBasketTool(demoCatalog(), 0))

	_, err := r.Execute(context.Background(), BasketToolName,
		`{"items":[{"sku":"SKU-001","quantity":1.5}]}`)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestBasketTool_ExecuteViaRegistry(t *testing.T) {
	r := NewRegistry(NewBasketTool(demoCatalog(), 0))

	result, err := r.Execute(context.Background(), BasketToolName,
		`{"items":[{"sku":"SKU-002","quantity":1}]}`)
	require.NoError(t, err)

	total, ok := result.(*BasketTotal)
	require.True(t, ok)
	assert.Equal(t, 1299.0, total.GrandTotal)
}
