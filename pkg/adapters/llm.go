package adapters

import (
	"strings"
	"time"

	"github.com/specfuse/specfuse/pkg/records"
)

// LLM adapts the output of the LLM normalization pass. Its payload is
// already shaped like a SourceRecord's fields: keys are canonical-or-near
// field paths and nested groups arrive as mappings, so nesting is preserved
// rather than flattened. The LLM is just another prioritized source; its
// trust level comes from reconciler configuration, never from code.
type LLM struct{}

// NewLLM creates the LLM-normalized adapter.
func NewLLM() *LLM {
	return &LLM{}
}

// SourceID returns the LLM-normalized source identity.
func (a *LLM) SourceID() records.SourceID {
	return records.SourceLLMNormalized
}

// Adapt normalizes an LLM-normalized mapping into a SourceRecord. Metadata
// blocks the normalization step appends for its own bookkeeping (keys with
// a leading underscore) are stripped: they are not product fields.
func (a *LLM) Adapt(payload map[string]any, productType records.ProductType, collectedAt time.Time) (*records.SourceRecord, error) {
	if err := validate(a.SourceID(), payload); err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(payload))
	for key, value := range normalizeKeys(payload) {
		if strings.HasPrefix(key, "_") {
			continue
		}
		fields[key] = value
	}
	if err := validate(a.SourceID(), fields); err != nil {
		return nil, err
	}

	return records.NewSourceRecord(a.SourceID(), productType, collectedAt, fields), nil
}
