package adapters

import (
	"time"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/records"
)

// Scraped adapts marketplace scrape output. Scrapers emit either a flat
// label/value mapping or a list of {"label": ..., "value": ...} entries,
// sometimes wrapped in a single-key vendor envelope such as
// {"technical_details": {...}}.
type Scraped struct {
	sourceID records.SourceID
}

// NewScraped creates an adapter for a scraped marketplace source.
func NewScraped(sourceID records.SourceID) *Scraped {
	return &Scraped{sourceID: sourceID}
}

// SourceID returns the marketplace source identity.
func (a *Scraped) SourceID() records.SourceID {
	return a.sourceID
}

// Adapt normalizes a scraped payload into a SourceRecord.
func (a *Scraped) Adapt(payload map[string]any, productType records.ProductType, collectedAt time.Time) (*records.SourceRecord, error) {
	if err := validate(a.sourceID, payload); err != nil {
		return nil, err
	}

	fields := unwrapEnvelope(payload)

	// A nested entry list ({"specs": [{label, value}, ...]}) becomes part
	// of the flat mapping; remaining vendor nesting flattens to dotted keys.
	flat := make(map[string]any, len(fields))
	for key, value := range fields {
		if entries, ok := labelValueEntries(value); ok {
			for label, v := range entries {
				flat[label] = v
			}
			continue
		}
		flat[key] = value
	}

	flat = Flatten(normalizeKeys(flat))
	if len(flat) == 0 {
		return nil, errors.NewMalformedSourceError(a.sourceID.String(), "payload has no usable fields", nil)
	}

	return records.NewSourceRecord(a.sourceID, productType, collectedAt, flat), nil
}

// unwrapEnvelope strips single-key vendor wrapper levels: a mapping whose
// only entry is itself a mapping carries no information of its own.
func unwrapEnvelope(m map[string]any) map[string]any {
	for len(m) == 1 {
		var inner map[string]any
		for _, v := range m {
			nested, ok := v.(map[string]any)
			if !ok {
				return m
			}
			inner = nested
		}
		m = inner
	}
	return m
}

// labelValueEntries converts a list of {"label": ..., "value": ...} entries
// into a mapping. Returns false when the value is not such a list.
func labelValueEntries(v any) (map[string]any, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}

	out := make(map[string]any, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		label, ok := entry["label"].(string)
		if !ok || label == "" {
			return nil, false
		}
		out[label] = entry["value"]
	}
	return out, true
}
