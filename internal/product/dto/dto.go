package dto

import (
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/variant"
	"github.com/shopspring/decimal"
)

// VariantView is everything the selector UI needs for one product.
type VariantView struct {
	Product     *model.Product            `json:"product"`
	Attributes  []variant.AttributeValues `json:"attributes"`
	PriceMatrix variant.PriceMatrix       `json:"price_matrix"`
}

// CachedView is the cached part of a VariantView.
type CachedView struct {
	Attributes  []variant.AttributeValues `json:"attributes"`
	PriceMatrix variant.PriceMatrix       `json:"price_matrix"`
}

type DuplicateReport struct {
	ProductID  string   `json:"product_id"`
	Slug       string   `json:"slug"`
	Key        string   `json:"key"`
	VariantIDs []string `json:"variant_ids"`
}

// FacetDocument is indexed per product for faceted storefront search.
type FacetDocument struct {
	ProductID  string                    `json:"product_id"`
	Slug       string                    `json:"slug"`
	Name       string                    `json:"name"`
	Attributes []variant.AttributeValues `json:"attributes"`
	MinPrice   *decimal.Decimal          `json:"min_price,omitempty"`
	MaxPrice   *decimal.Decimal          `json:"max_price,omitempty"`
	InStock    bool                      `json:"in_stock"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}
