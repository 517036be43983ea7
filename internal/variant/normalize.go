// Package variant resolves a customer's attribute selection against a product's
// stored variants. Everything here is a pure function of its inputs; callers
// fetch the variant rows and own any caching.
package variant

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

// MaxUnwrap bounds how many JSON string layers are peeled off a stored value.
const MaxUnwrap = 4

// Options is a normalized attribute map that remembers the order in which
// attribute names were first seen.
type Options struct {
	names  []string
	values map[string]string
}

func (o Options) Get(name string) (string, bool) {
	v, ok := o.values[name]
	return v, ok
}

func (o Options) Len() int {
	return len(o.names)
}

// Names returns attribute names in observed order.
func (o Options) Names() []string {
	return append([]string(nil), o.names...)
}

func (o Options) Map() map[string]string {
	m := make(map[string]string, len(o.names))
	for _, name := range o.names {
		m[name] = o.values[name]
	}
	return m
}

func (o *Options) set(name, value string) {
	if o.values == nil {
		o.values = make(map[string]string)
	}
	if _, ok := o.values[name]; !ok {
		o.names = append(o.names, name)
	}
	o.values[name] = value
}

// MarshalJSON writes the options as an object, keys in observed order.
func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range o.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Options) UnmarshalJSON(data []byte) error {
	*o = Normalize(data)
	return nil
}

// Normalize recovers an attribute map from a stored value. The value may be a
// Go map, a JSON object, or a JSON object that was stringified again one or
// more times. Anything that does not end up as an object yields empty Options.
func Normalize(raw any) Options {
	switch v := raw.(type) {
	case nil:
		return Options{}
	case Options:
		return v
	case map[string]string:
		var opts Options
		for _, name := range sortedKeys(v) {
			opts.set(name, v[name])
		}
		return opts
	case map[string]any:
		var opts Options
		for _, name := range sortedKeys(v) {
			if s, ok := StringifyValue(v[name]); ok {
				opts.set(name, s)
			}
		}
		return opts
	case string:
		return normalizeText(v)
	case []byte:
		return normalizeText(string(v))
	case json.RawMessage:
		return normalizeText(string(v))
	}
	return Options{}
}

// OptionsOf normalizes the stored options of a variant.
func OptionsOf(v model.ProductVariant) Options {
	return Normalize([]byte(v.VariantOptions))
}

func normalizeText(s string) Options {
	text, ok := unwrapJSON(s)
	if !ok || text[0] != '{' {
		return Options{}
	}
	return decodeObject(text)
}

// unwrapJSON peels JSON string layers until it reaches a non-string JSON value
// and returns that value's text.
func unwrapJSON(s string) (string, bool) {
	for i := 0; i < MaxUnwrap; i++ {
		text := strings.TrimSpace(s)
		if text == "" || !json.Valid([]byte(text)) {
			return "", false
		}
		if text[0] != '"' {
			return text, true
		}
		var inner string
		if err := json.Unmarshal([]byte(text), &inner); err != nil {
			return "", false
		}
		s = inner
	}
	return "", false
}

func decodeObject(text string) Options {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return Options{}
	}

	var opts Options
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Options{}
		}
		name, ok := tok.(string)
		if !ok {
			return Options{}
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return Options{}
		}
		if s, ok := StringifyValue(value); ok {
			opts.set(name, s)
		}
	}
	return opts
}

// StringifyValue renders an attribute value as a string. Numbers use their
// shortest decimal form. It reports false for nil, which callers treat as an
// absent attribute.
func StringifyValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return formatNumber(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return n.String()
}

// DeclaredAttributes decodes a product's declared attribute list. Entries may be
// plain names or objects carrying a "name" field. Bad data yields nil.
func DeclaredAttributes(raw []byte) []string {
	text, ok := unwrapJSON(string(raw))
	if !ok || text[0] != '[' {
		return nil
	}

	var items []any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			names = append(names, t)
		case map[string]any:
			if name, ok := t["name"].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
