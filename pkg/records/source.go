package records

import (
	"time"
)

// SourceRecord is one source's contribution to one product. It is immutable
// once created: the constructor deep-copies the field mapping and accessors
// return copies, so a record handed to the pipeline cannot change under it.
type SourceRecord struct {
	sourceID    SourceID
	productType ProductType
	collectedAt time.Time
	fields      map[string]any
}

// NewSourceRecord creates a SourceRecord, deep-copying the field mapping.
func NewSourceRecord(sourceID SourceID, productType ProductType, collectedAt time.Time, fields map[string]any) *SourceRecord {
	return &SourceRecord{
		sourceID:    sourceID,
		productType: productType,
		collectedAt: collectedAt,
		fields:      copyFieldMap(fields),
	}
}

// SourceID returns the originating source identifier.
func (r *SourceRecord) SourceID() SourceID {
	return r.sourceID
}

// ProductType returns the product type the record describes.
func (r *SourceRecord) ProductType() ProductType {
	return r.productType
}

// CollectedAt returns the timestamp of the ingestion run that produced the record.
func (r *SourceRecord) CollectedAt() time.Time {
	return r.collectedAt
}

// Fields returns a deep copy of the raw field mapping.
func (r *SourceRecord) Fields() map[string]any {
	return copyFieldMap(r.fields)
}

// Field returns a single raw value and whether it was present.
func (r *SourceRecord) Field(key string) (any, bool) {
	v, ok := r.fields[key]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// FieldCount returns the number of raw fields pre-alignment.
// Nested mappings count as one field each, matching how the original
// field count feeds the retention ratio.
func (r *SourceRecord) FieldCount() int {
	return len(r.fields)
}

// FieldCandidate is a resolved (source, canonical field, value) triple
// produced by schema alignment.
type FieldCandidate struct {
	Source SourceID
	Field  string // canonical field path, e.g. "battery.capacity"
	Value  any
	RawKey string // original key before alias resolution
}

// copyFieldMap deep-copies a raw field mapping.
func copyFieldMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

// copyValue deep-copies the value shapes a raw payload may carry:
// scalars, ordered lists, and nested mappings.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyFieldMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
