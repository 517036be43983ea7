package model

import (
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

const (
	ProductTypeSimple   = "simple"
	ProductTypeGroup    = "group"
	ProductTypeVariable = "variable"
)

type Product struct {
	BaseModel
	Slug        string  `db:"slug" json:"slug"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
	ProductType string  `db:"product_type" json:"product_type"`
	// Raw declared attribute names, e.g. ["Size","Scent"]. May be re-encoded like variant options.
	VariationAttributes types.JSONText   `db:"variation_attributes" json:"-"`
	IsActive            bool             `db:"is_active" json:"is_active"`
	Variants            []ProductVariant `db:"-" json:"variants,omitempty"` // Loaded separately
}

func (p *Product) HasVariants() bool {
	return p.ProductType == ProductTypeVariable
}

type ProductVariant struct {
	BaseModel
	ProductID         string              `db:"product_id" json:"product_id"`
	Title             string              `db:"title" json:"title"`
	Price             decimal.Decimal     `db:"price" json:"price"`
	ComparePrice      decimal.NullDecimal `db:"compare_price" json:"compare_price"`
	CostPrice         decimal.NullDecimal `db:"cost_price" json:"-"`
	SKU               string              `db:"sku" json:"sku"`
	InventoryQuantity int                 `db:"inventory_quantity" json:"inventory_quantity"`
	VariantOptions    types.JSONText      `db:"variant_options" json:"-"` // Raw, possibly re-encoded JSON
	IsActive          bool                `db:"is_active" json:"is_active"`
}

func (v *ProductVariant) InStock() bool {
	return v.InventoryQuantity > 0
}
