// Package adapters normalizes each source's raw output into a SourceRecord:
// scraped marketplace JSON, internal CSV rows, PDF-extracted mappings, and
// LLM-normalized JSON each get their own adapter. Adapters perform only
// structural normalization (unwrapping vendor nesting, trimming whitespace,
// unifying key casing) and never guess field meaning or reconcile across
// sources.
package adapters

import (
	"strings"
	"time"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/records"
)

// Adapter converts one source kind's raw payload into a SourceRecord.
type Adapter interface {
	// SourceID returns the source identity stamped on adapted records.
	SourceID() records.SourceID

	// Adapt normalizes a raw payload. Returns MalformedSourceError when the
	// payload is not a mapping or is empty; the caller decides whether to
	// skip the source or abort the run.
	Adapt(payload map[string]any, productType records.ProductType, collectedAt time.Time) (*records.SourceRecord, error)
}

// For returns the adapter for a source ID. Marketplace sources share the
// scraped-JSON adapter; unknown source IDs default to it as well, since
// new marketplaces are added through configuration, not code.
func For(sourceID records.SourceID) Adapter {
	switch sourceID {
	case records.SourceInternalCSV:
		return NewCSV()
	case records.SourcePDFExtract:
		return NewPDF()
	case records.SourceLLMNormalized:
		return NewLLM()
	default:
		return NewScraped(sourceID)
	}
}

// normalizeKeys returns a copy of the mapping with unified key casing at
// every level and string values trimmed.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[normalizeKey(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		return normalizeKeys(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// normalizeKey unifies raw key casing and separators the same way the
// schema's alias index does, so adapter output lines up with alias lookups.
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}
	return key
}

// validate applies the shared malformed-payload checks.
func validate(sourceID records.SourceID, payload map[string]any) error {
	if payload == nil {
		return errors.NewMalformedSourceError(sourceID.String(), "payload is not a mapping", nil)
	}
	if len(payload) == 0 {
		return errors.NewMalformedSourceError(sourceID.String(), "payload is empty", nil)
	}
	return nil
}
