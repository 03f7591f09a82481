package tool

import (
	"context"

	"github.com/hupe1980/shopguard/catalog"
)

// LookupToolName is the registered name of the catalog lookup capability.
const LookupToolName = "lookup_products"

// LookupTool is the read-only catalog query exposed to the reasoning loop.
// Results are projected to public fields at this boundary, so the model
// never receives restricted metadata as tool output regardless of any later
// guard.
type LookupTool struct {
	catalog *catalog.Store
}

// NewLookupTool constructs the lookup tool over the given catalog.
func NewLookupTool(store *catalog.Store) *LookupTool {
	return &LookupTool{catalog: store}
}

// Name returns the registered tool name.
func (t *LookupTool) Name() string { return LookupToolName }

// Description returns the model-facing description.
func (t *LookupTool) Description() string {
	return "Search the product catalog. Returns matching products with sku, name, category, price, currency and inventory. An empty query returns the full catalog."
}

// Parameters returns the argument schema.
func (t *LookupTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Comma separated keywords matched against public product fields",
			},
		},
	}
}

// Call executes the lookup. The returned slice contains only PublicProduct
// projections.
func (t *LookupTool) Call(_ context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	return t.catalog.Search(query), nil
}
