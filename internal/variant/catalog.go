package variant

import (
	"sort"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

// AttributeValues lists the distinct values offered for one attribute.
type AttributeValues struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type catalogConfig struct {
	declared []string
}

type CatalogOption func(*catalogConfig)

// WithDeclaredOrder puts the given names first, in the given order. Names no
// variant carries are skipped; undeclared names follow in observed order.
func WithDeclaredOrder(names []string) CatalogOption {
	return func(c *catalogConfig) {
		c.declared = names
	}
}

// BuildCatalog collects the distinct values of every attribute across active
// variants. Values are sorted; attributes appear in the order they were first
// observed unless WithDeclaredOrder says otherwise.
func BuildCatalog(variants []model.ProductVariant, opts ...CatalogOption) []AttributeValues {
	var cfg catalogConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var observed []string
	sets := make(map[string]map[string]struct{})
	for _, v := range variants {
		if !v.IsActive {
			continue
		}
		o := OptionsOf(v)
		for _, name := range o.Names() {
			set, ok := sets[name]
			if !ok {
				set = make(map[string]struct{})
				sets[name] = set
				observed = append(observed, name)
			}
			value, _ := o.Get(name)
			set[value] = struct{}{}
		}
	}

	catalog := make([]AttributeValues, 0, len(observed))
	for _, name := range orderNames(observed, cfg.declared) {
		catalog = append(catalog, AttributeValues{Name: name, Values: sortedValues(sets[name])})
	}
	return catalog
}

func orderNames(observed, declared []string) []string {
	if len(declared) == 0 {
		return observed
	}

	present := make(map[string]bool, len(observed))
	for _, name := range observed {
		present[name] = true
	}

	ordered := make([]string, 0, len(observed))
	placed := make(map[string]bool, len(observed))
	for _, name := range declared {
		if present[name] && !placed[name] {
			ordered = append(ordered, name)
			placed[name] = true
		}
	}
	for _, name := range observed {
		if !placed[name] {
			ordered = append(ordered, name)
		}
	}
	return ordered
}

func sortedValues(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
