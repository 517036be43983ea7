package variant

import (
	"sort"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

// Selection maps attribute names to the values a customer picked.
type Selection map[string]string

// NewSelection coerces raw selection values to strings with the same rules the
// normalizer applies to stored values. Nil values are treated as unselected.
func NewSelection(raw map[string]any) Selection {
	sel := make(Selection, len(raw))
	for name, value := range raw {
		if s, ok := StringifyValue(value); ok {
			sel[name] = s
		}
	}
	return sel
}

// Names returns the selected attribute names sorted ascending.
func (s Selection) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValuesEqual compares a selected value with a stored one: exact, then
// case-insensitive, then after trimming surrounding whitespace.
func ValuesEqual(selected, stored string) bool {
	if selected == stored {
		return true
	}
	if strings.EqualFold(selected, stored) {
		return true
	}
	return strings.TrimSpace(selected) == strings.TrimSpace(stored)
}

// Matches reports whether every selected attribute is present in opts with an
// equal value. Attributes the selection does not mention are ignored.
func Matches(opts Options, sel Selection) bool {
	for name, want := range sel {
		got, ok := opts.Get(name)
		if !ok || !ValuesEqual(want, got) {
			return false
		}
	}
	return true
}

// Match returns the first variant, in input order, whose options satisfy sel.
// Callers pass only the target product's active variants. An empty selection
// matches the first variant. When several variants share a combination the
// earliest one wins.
func Match(variants []model.ProductVariant, sel Selection) (*model.ProductVariant, bool) {
	for i := range variants {
		if Matches(OptionsOf(variants[i]), sel) {
			return &variants[i], true
		}
	}
	return nil, false
}
