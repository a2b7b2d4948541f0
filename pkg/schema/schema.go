// Package schema defines the canonical product schema and performs alignment
// of raw source records onto it: alias resolution, type coercion, and the
// per-source alignment statistics that feed the confidence scorer.
package schema

import (
	"sort"
	"strings"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/records"
)

// Kind is the expected value kind of a canonical field.
type Kind string

// Supported canonical value kinds.
const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindBool       Kind = "bool"
	KindStringList Kind = "string_list"
	KindGroup      Kind = "group"
)

// Valid reports whether the kind is one of the supported values.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindBool, KindStringList, KindGroup:
		return true
	default:
		return false
	}
}

// Field is a named, possibly nested path into the product schema with an
// expected value kind and the raw key variants that map onto it.
type Field struct {
	Path    string   `yaml:"path" json:"path"`       // e.g. "battery.capacity"
	Kind    Kind     `yaml:"kind" json:"kind"`       // expected value kind
	Aliases []string `yaml:"aliases" json:"aliases"` // raw key variants
}

// Schema is the fixed canonical field set for one product type, plus the
// alias index used during alignment. Schemas are configuration, not runtime
// data: build one at startup and treat it as read-only.
type Schema struct {
	productType records.ProductType
	fields      map[string]Field  // keyed by canonical path
	aliases     map[string]string // normalized raw key -> canonical path
}

// New builds a Schema from a field list, validating kinds and alias
// uniqueness.
func New(productType records.ProductType, fields []Field) (*Schema, error) {
	if !productType.Valid() {
		return nil, errors.NewConfigError("schema", "invalid product type "+productType.String(), nil)
	}

	s := &Schema{
		productType: productType,
		fields:      make(map[string]Field, len(fields)),
		aliases:     make(map[string]string),
	}

	for _, f := range fields {
		if f.Path == "" {
			return nil, errors.NewConfigError("schema", "field with empty path", nil)
		}
		if !f.Kind.Valid() {
			return nil, errors.NewConfigError("schema", "field "+f.Path+" has unknown kind "+string(f.Kind), nil)
		}
		if _, dup := s.fields[f.Path]; dup {
			return nil, errors.NewConfigError("schema", "duplicate field path "+f.Path, nil)
		}
		s.fields[f.Path] = f

		// A field's own path always resolves to itself.
		keys := append([]string{f.Path}, f.Aliases...)
		for _, alias := range keys {
			norm := NormalizeKey(alias)
			if existing, ok := s.aliases[norm]; ok && existing != f.Path {
				return nil, errors.NewConfigError("schema",
					"alias "+alias+" maps to both "+existing+" and "+f.Path, nil)
			}
			s.aliases[norm] = f.Path
		}
	}

	return s, nil
}

// ProductType returns the product type the schema describes.
func (s *Schema) ProductType() records.ProductType {
	return s.productType
}

// Lookup resolves a raw key to its canonical field. The raw key is
// normalized before matching.
func (s *Schema) Lookup(rawKey string) (Field, bool) {
	path, ok := s.aliases[NormalizeKey(rawKey)]
	if !ok {
		return Field{}, false
	}
	return s.fields[path], true
}

// Has reports whether a canonical path belongs to the schema.
func (s *Schema) Has(path string) bool {
	_, ok := s.fields[path]
	return ok
}

// Fields returns the schema's fields sorted by path.
func (s *Schema) Fields() []Field {
	out := make([]Field, 0, len(s.fields))
	for _, f := range s.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of canonical fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// NormalizeKey unifies raw key casing and separators: lowercase, trimmed,
// spaces and hyphens replaced with underscores. Dots are preserved so
// already-canonical paths pass through unchanged.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}
	return key
}
