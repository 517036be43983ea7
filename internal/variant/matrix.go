package variant

import (
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/shopspring/decimal"
)

const (
	KeyDelimiter  = "|"
	pairSeparator = ":"
)

// DuplicatePolicy decides which variant a price matrix keeps when two active
// variants normalize to the same combination.
type DuplicatePolicy int

const (
	LastWins DuplicatePolicy = iota
	FirstWins
)

func (p DuplicatePolicy) String() string {
	if p == FirstWins {
		return "first"
	}
	return "last"
}

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return FirstWins, nil
	case "last":
		return LastWins, nil
	}
	return LastWins, fmt.Errorf("unknown duplicate policy %q", s)
}

// PriceMatrixEntry is the part of a variant the storefront needs to show a price.
type PriceMatrixEntry struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Price             decimal.Decimal     `json:"price"`
	ComparePrice      decimal.NullDecimal `json:"compare_price"`
	SKU               string              `json:"sku"`
	InventoryQuantity int                 `json:"inventory_quantity"`
}

func EntryOf(v model.ProductVariant) PriceMatrixEntry {
	return PriceMatrixEntry{
		ID:                v.ID,
		Title:             v.Title,
		Price:             v.Price,
		ComparePrice:      v.ComparePrice,
		SKU:               v.SKU,
		InventoryQuantity: v.InventoryQuantity,
	}
}

// PriceMatrix maps canonical combination keys to price entries.
type PriceMatrix map[string]PriceMatrixEntry

// Lookup resolves a selection by recomputing its canonical key. Values must be
// spelled exactly as stored; this is the precomputed path, not the fuzzy one.
func (m PriceMatrix) Lookup(sel Selection) (PriceMatrixEntry, bool) {
	e, ok := m[SelectionKey(sel)]
	return e, ok
}

// CanonicalKey joins name:value pairs sorted by name, e.g. "Scent:EDP|Size:50ml".
func CanonicalKey(opts Options) string {
	return canonicalKey(opts.Map())
}

func SelectionKey(sel Selection) string {
	return canonicalKey(sel)
}

func canonicalKey(m map[string]string) string {
	names := sortedKeys(m)
	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + pairSeparator + m[name]
	}
	return strings.Join(pairs, KeyDelimiter)
}

type matrixConfig struct {
	policy DuplicatePolicy
}

type MatrixOption func(*matrixConfig)

func WithDuplicatePolicy(p DuplicatePolicy) MatrixOption {
	return func(c *matrixConfig) {
		c.policy = p
	}
}

// BuildMatrix indexes active variants by canonical key. By default a later
// duplicate overwrites an earlier one.
func BuildMatrix(variants []model.ProductVariant, opts ...MatrixOption) PriceMatrix {
	cfg := matrixConfig{policy: LastWins}
	for _, opt := range opts {
		opt(&cfg)
	}

	matrix := make(PriceMatrix, len(variants))
	for _, v := range variants {
		if !v.IsActive {
			continue
		}
		key := CanonicalKey(OptionsOf(v))
		if _, exists := matrix[key]; exists && cfg.policy == FirstWins {
			continue
		}
		matrix[key] = EntryOf(v)
	}
	return matrix
}

// DuplicateCombination lists active variants sharing one canonical key, in input order.
type DuplicateCombination struct {
	Key        string   `json:"key"`
	VariantIDs []string `json:"variant_ids"`
}

// FindDuplicates reports combinations claimed by more than one active variant,
// ordered by where each combination first appears.
func FindDuplicates(variants []model.ProductVariant) []DuplicateCombination {
	var order []string
	seen := make(map[string][]string)
	for _, v := range variants {
		if !v.IsActive {
			continue
		}
		key := CanonicalKey(OptionsOf(v))
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = append(seen[key], v.ID)
	}

	var dups []DuplicateCombination
	for _, key := range order {
		if ids := seen[key]; len(ids) > 1 {
			dups = append(dups, DuplicateCombination{Key: key, VariantIDs: ids})
		}
	}
	return dups
}

// PriceRange returns the lowest and highest price among active variants.
func PriceRange(variants []model.ProductVariant) (lo, hi decimal.Decimal, ok bool) {
	for _, v := range variants {
		if !v.IsActive {
			continue
		}
		if !ok {
			lo, hi, ok = v.Price, v.Price, true
			continue
		}
		if v.Price.LessThan(lo) {
			lo = v.Price
		}
		if v.Price.GreaterThan(hi) {
			hi = v.Price
		}
	}
	return lo, hi, ok
}
