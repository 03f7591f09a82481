package tool

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/shopguard/catalog"
)

// BasketToolName is the registered name of the basket total capability.
const BasketToolName = "compute_basket_total"

// DefaultMaxQuantity bounds a single basket line when no limit is configured.
const DefaultMaxQuantity = 100

// BasketItem is one requested basket line. Quantity must be a positive
// integer; validation rejects rather than coerces.
type BasketItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// BasketLine is one priced line of a computed total.
type BasketLine struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// BasketTotal is the derived checkout summary. It is recomputed from the
// live catalog on every call and never cached across requests.
type BasketTotal struct {
	Lines      []BasketLine `json:"lines"`
	GrandTotal float64      `json:"grand_total"`
	Currency   string       `json:"currency"`
}

// BasketTool computes basket totals from catalog ground truth. It is the
// canonical enforcement point for checkout integrity: unknown SKUs, zero or
// negative quantities and quantities above the configured maximum fail with
// a validation error instead of being clamped, and prices supplied by the
// caller or the reasoning loop are ignored entirely.
type BasketTool struct {
	catalog     *catalog.Store
	maxQuantity int
}

// NewBasketTool constructs the basket tool. maxQuantity <= 0 selects
// DefaultMaxQuantity.
func NewBasketTool(store *catalog.Store, maxQuantity int) *BasketTool {
	if maxQuantity <= 0 {
		maxQuantity = DefaultMaxQuantity
	}
	return &BasketTool{catalog: store, maxQuantity: maxQuantity}
}

// Name returns the registered tool name.
func (t *BasketTool) Name() string { return BasketToolName }

// Description returns the model-facing description.
func (t *BasketTool) Description() string {
	return "Compute the priced total for a basket of items. Each item needs a catalog sku and a positive integer quantity. Prices always come from the catalog."
}

// Parameters returns the argument schema.
func (t *BasketTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type":        "array",
				"description": "Basket lines to price",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"sku":      map[string]any{"type": "string", "description": "Catalog SKU"},
						"quantity": map[string]any{"type": "integer", "description": "Units requested, positive integer"},
					},
					"required": []string{"sku", "quantity"},
				},
			},
		},
		"required": []string{"items"},
	}
}

// Call decodes and validates the basket then computes the total.
func (t *BasketTool) Call(_ context.Context, args map[string]any) (any, error) {
	items, err := t.decodeItems(args)
	if err != nil {
		return nil, err
	}
	return t.Compute(items)
}

// Compute prices the basket against the live catalog. All lines are
// validated before any arithmetic so a rejected basket produces no partial
// total.
func (t *BasketTool) Compute(items []BasketItem) (*BasketTotal, error) {
	if len(items) == 0 {
		return nil, t.validationError("basket is empty")
	}

	for _, item := range items {
		if _, ok := t.catalog.Get(item.SKU); !ok {
			return nil, t.validationError(fmt.Sprintf("unknown SKU %q", item.SKU))
		}
		if item.Quantity <= 0 {
			return nil, t.validationError(fmt.Sprintf("quantity %d for SKU %q must be a positive integer", item.Quantity, item.SKU))
		}
		if item.Quantity > t.maxQuantity {
			return nil, t.validationError(fmt.Sprintf("quantity %d for SKU %q exceeds the maximum of %d", item.Quantity, item.SKU, t.maxQuantity))
		}
	}

	total := &BasketTotal{Lines: make([]BasketLine, 0, len(items))}
	for _, item := range items {
		product, _ := t.catalog.Get(item.SKU)
		line := BasketLine{
			SKU:       product.SKU,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: product.Price * float64(item.Quantity),
		}
		total.Lines = append(total.Lines, line)
		total.GrandTotal += line.LineTotal
		if total.Currency == "" {
			total.Currency = product.Currency
		}
	}
	return total, nil
}

// decodeItems converts the schema-validated args map into typed basket
// items, enforcing that quantities are integers (JSON numbers arrive as
// float64).
func (t *BasketTool) decodeItems(args map[string]any) ([]BasketItem, error) {
	rawItems, ok := args["items"].([]any)
	if !ok {
		return nil, t.validationError("items must be an array")
	}

	items := make([]BasketItem, 0, len(rawItems))
	for i, raw := range rawItems {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, t.validationError(fmt.Sprintf("item %d is not an object", i))
		}
		sku, ok := entry["sku"].(string)
		if !ok || sku == "" {
			return nil, t.validationError(fmt.Sprintf("item %d is missing a sku", i))
		}
		qty, err := intQuantity(entry["quantity"])
		if err != nil {
			return nil, t.validationError(fmt.Sprintf("item %d (%s): %v", i, sku, err))
		}
		items = append(items, BasketItem{SKU: sku, Quantity: qty})
	}
	return items, nil
}

func intQuantity(v any) (int, error) {
	switch q := v.(type) {
	case int:
		return q, nil
	case float64:
		if q != math.Trunc(q) {
			return 0, fmt.Errorf("quantity %v is not an integer", q)
		}
		return int(q), nil
	default:
		return 0, fmt.Errorf("quantity is missing or not a number")
	}
}

func (t *BasketTool) validationError(msg string) *ToolError {
	return NewToolError(BasketToolName, msg, CodeValidation)
}
