package adapters

import (
	"time"

	"github.com/specfuse/specfuse/pkg/records"
)

// PDF adapts mappings extracted from internal brochures and spec sheets.
// Extraction upstream already yields flat key/value pairs; the adapter only
// unifies casing and trims values.
type PDF struct{}

// NewPDF creates the PDF-extract adapter.
func NewPDF() *PDF {
	return &PDF{}
}

// SourceID returns the PDF-extract source identity.
func (a *PDF) SourceID() records.SourceID {
	return records.SourcePDFExtract
}

// Adapt normalizes a PDF-extracted mapping into a SourceRecord.
func (a *PDF) Adapt(payload map[string]any, productType records.ProductType, collectedAt time.Time) (*records.SourceRecord, error) {
	if err := validate(a.SourceID(), payload); err != nil {
		return nil, err
	}
	return records.NewSourceRecord(a.SourceID(), productType, collectedAt, Flatten(normalizeKeys(payload))), nil
}
