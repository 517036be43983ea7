package variant

import (
	"encoding/json"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// newVariant builds an active variant. Strings are stored verbatim as the raw
// option column; anything else is JSON encoded once.
func newVariant(id string, options any, price string) model.ProductVariant {
	var raw []byte
	switch o := options.(type) {
	case string:
		raw = []byte(o)
	case nil:
	default:
		raw, _ = json.Marshal(o)
	}
	return model.ProductVariant{
		BaseModel:         model.BaseModel{ID: id},
		Title:             "Variant " + id,
		Price:             decimal.RequireFromString(price),
		SKU:               "SKU-" + id,
		InventoryQuantity: 5,
		VariantOptions:    types.JSONText(raw),
		IsActive:          true,
	}
}

func inactive(v model.ProductVariant) model.ProductVariant {
	v.IsActive = false
	return v
}

// encode stringifies v as JSON the given number of times.
func encode(v any, times int) string {
	b, _ := json.Marshal(v)
	s := string(b)
	for i := 1; i < times; i++ {
		b, _ = json.Marshal(s)
		s = string(b)
	}
	return s
}
