// Package models defines the shared counting vocabulary: categories, match
// statuses, catalog products and the filters that narrow a lookup.
//
// Wire names follow the upstream counting API, which speaks Turkish field
// names; Go names are English.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Category is a product workspace code.
type Category string

const (
	CategoryFrame      Category = "OF"
	CategorySunglasses Category = "GN"
	CategoryLens       Category = "LN"
)

// DefaultCategory is used when a deployment does not pin one.
const DefaultCategory = CategoryFrame

var categoryNames = map[Category]string{
	CategoryFrame:      "Optik Çerçeve",
	CategorySunglasses: "Güneş Gözlüğü",
	CategoryLens:       "Lens",
}

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{CategoryFrame, CategorySunglasses, CategoryLens}
}

// ParseCategory normalizes a category code. Empty input is an error.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

// Valid reports whether c is one of the known codes.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// DisplayName returns the operator-facing name, falling back to the code.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	if c == "" {
		return "-"
	}
	return string(c)
}

// MatchStatus is the eslesme_durumu value recorded with a count.
type MatchStatus string

const (
	// MatchDirect is a scanned barcode confirmed by the oracle.
	MatchDirect MatchStatus = "Direkt"
	// MatchManual is a typed term confirmed by a human.
	MatchManual MatchStatus = "Manuel"
	// MatchAmbiguous is one of several candidates picked by a human.
	MatchAmbiguous MatchStatus = "Belirsiz"
	// MatchNotFound records an input nothing matched.
	MatchNotFound MatchStatus = "Bulunamadı"
)

// BridgeWidth is the ekartman value in millimetres. The catalog sends it as
// a number, a numeric string or an empty string when unknown.
type BridgeWidth int

func (b *BridgeWidth) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*b = 0
			return nil
		}
		data = []byte(raw)
	}
	value, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid ekartman %q", string(data))
	}
	*b = BridgeWidth(int(value))
	return nil
}

// String renders the width for display ("52 mm" or "-").
func (b BridgeWidth) String() string {
	if b <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d mm", int(b))
}

// Product is a catalog item as the upstream store represents it.
type Product struct {
	ID          string      `json:"id"`
	SKU         string      `json:"sku"`
	Brand       string      `json:"marka"`
	Category    Category    `json:"kategori"`
	ModelCode   string      `json:"model_kodu"`
	ModelName   string      `json:"model_adi"`
	ColorCode   string      `json:"renk_kodu"`
	ColorName   string      `json:"renk_adi"`
	BridgeWidth BridgeWidth `json:"ekartman"`
	UnitPrice   float64     `json:"birim_fiyat,omitempty"`
	Status      string      `json:"durum,omitempty"`
}

// Candidate is one entry of an ambiguous resolution.
type Candidate struct {
	SKUID            string  `json:"sku_id"`
	Product          Product `json:"product"`
	SupplierRecordID *string `json:"tedarikci_kaydi_id,omitempty"`
}

// Brand is an entry of the brand vocabulary.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"ad"`
	Code string `json:"kod"`
}

// Stats are the daily aggregate counters for one category.
type Stats struct {
	Total       int     `json:"total"`
	Direct      int     `json:"direkt"`
	Ambiguous   int     `json:"belirsiz,omitempty"`
	NotFound    int     `json:"bulunamadi,omitempty"`
	DirectRatio float64 `json:"direkt_oran"`
}

// SearchContext narrows lookups by brand and category. Nil fields are unset.
type SearchContext struct {
	Brand    *string   `json:"brand,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// IsZero reports whether no filter is set.
func (c SearchContext) IsZero() bool {
	return c.Brand == nil && c.Category == nil
}
