package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers, the way the storefront client sends them
	decimal.MarshalJSONWithoutQuotes = true
}

// LineItem is one product+variant row of a cart. Price, name and image are
// snapshotted from the catalog when the row is created.
type LineItem struct {
	ProductID string          `json:"productId"`
	Variant   *string         `json:"variant"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Name      string          `json:"name,omitempty"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

// UnmarshalJSON accepts any unitPrice shape; anything that is not a valid
// number decodes to zero instead of failing the whole payload.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	type alias LineItem
	var raw struct {
		alias
		UnitPrice json.RawMessage `json:"unitPrice"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*li = LineItem(raw.alias)
	li.UnitPrice = lenientDecimal(raw.UnitPrice)
	li.Variant = NormalizeVariant(li.Variant)
	return nil
}

func lenientDecimal(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero
	}
	return d
}

// NormalizeVariant maps every spelling of "no variant" (nil, empty, blank)
// to nil so that add and remove agree on row identity.
func NormalizeVariant(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// ItemKey identifies a cart row.
type ItemKey struct {
	ProductID  string
	Variant    string
	HasVariant bool
}

func KeyOf(productID string, variant *string) ItemKey {
	v := NormalizeVariant(variant)
	if v == nil {
		return ItemKey{ProductID: productID}
	}
	return ItemKey{ProductID: productID, Variant: *v, HasVariant: true}
}

func (li LineItem) Key() ItemKey {
	return KeyOf(li.ProductID, li.Variant)
}

// VariantValue returns the variant or "" when the row has none.
func (li LineItem) VariantValue() string {
	if li.Variant == nil {
		return ""
	}
	return *li.Variant
}

// Variant is a small helper for building variant pointers.
func Variant(s string) *string {
	return NormalizeVariant(&s)
}
