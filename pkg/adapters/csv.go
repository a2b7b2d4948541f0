package adapters

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/records"
)

// CSV adapts internal CSV exports. The export format is one row per
// attribute with an optional variant column:
//
//	Attribute,Variant,Value
//	Weight,All,167 g
//	Color,256GB,Titanium Gray
//
// Attributes with a single variant (or variant "All") flatten to a scalar;
// attributes with multiple variants keep a {variant: value} mapping.
type CSV struct{}

// NewCSV creates the internal-CSV adapter.
func NewCSV() *CSV {
	return &CSV{}
}

// SourceID returns the internal CSV source identity.
func (a *CSV) SourceID() records.SourceID {
	return records.SourceInternalCSV
}

// Adapt normalizes an already-flattened row mapping into a SourceRecord.
func (a *CSV) Adapt(payload map[string]any, productType records.ProductType, collectedAt time.Time) (*records.SourceRecord, error) {
	if err := validate(a.SourceID(), payload); err != nil {
		return nil, err
	}
	return records.NewSourceRecord(a.SourceID(), productType, collectedAt, normalizeKeys(payload)), nil
}

// specRow is one attribute row of an internal CSV export.
type specRow struct {
	Attribute string `csv:"Attribute"`
	Variant   string `csv:"Variant"`
	Value     string `csv:"Value"`
}

// AdaptRows decodes raw CSV bytes in the internal export format and adapts
// the resulting attribute mapping.
func (a *CSV) AdaptRows(data []byte, productType records.ProductType, collectedAt time.Time) (*records.SourceRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		return nil, errors.NewMalformedSourceError(a.SourceID().String(), "cannot read CSV header", err)
	}

	grouped := make(map[string]map[string]string) // attribute -> variant -> value
	order := make([]string, 0)

	for {
		var row specRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.NewMalformedSourceError(a.SourceID().String(), "cannot decode CSV row", err)
		}

		attr := strings.TrimSpace(row.Attribute)
		value := strings.TrimSpace(row.Value)
		if attr == "" || value == "" {
			continue
		}

		variant := strings.TrimSpace(row.Variant)
		if variant == "" {
			variant = "All"
		}

		if _, ok := grouped[attr]; !ok {
			grouped[attr] = make(map[string]string)
			order = append(order, attr)
		}
		grouped[attr][variant] = value
	}

	if len(grouped) == 0 {
		return nil, errors.NewMalformedSourceError(a.SourceID().String(), "payload is empty", nil)
	}

	fields := make(map[string]any, len(grouped))
	for _, attr := range order {
		variants := grouped[attr]
		if v, all := variants["All"]; all && len(variants) == 1 {
			fields[attr] = v
			continue
		}
		if len(variants) == 1 {
			for _, v := range variants {
				fields[attr] = v
			}
			continue
		}
		byVariant := make(map[string]any, len(variants))
		for variant, v := range variants {
			byVariant[variant] = v
		}
		fields[attr] = byVariant
	}

	return a.Adapt(fields, productType, collectedAt)
}
