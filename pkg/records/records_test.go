package records_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfuse/specfuse/pkg/records"
)

func TestParseProductType(t *testing.T) {
	tests := []struct {
		input   string
		want    records.ProductType
		wantErr bool
	}{
		{"phones", records.ProductTypePhones, false},
		{"tv", records.ProductTypeTV, false},
		{"watch", records.ProductTypeWatch, false},
		{"  Phones ", records.ProductTypePhones, false},
		{"laptop", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := records.ParseProductType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := records.ParseDate("20250601")
		require.NoError(t, err)
		assert.Equal(t, records.Date("20250601"), d)
		assert.True(t, d.Valid())
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := records.ParseDate("2025061")
		assert.Error(t, err)
	})

	t.Run("not a date", func(t *testing.T) {
		_, err := records.ParseDate("20251345")
		assert.Error(t, err)
	})

	t.Run("ordering is lexicographic", func(t *testing.T) {
		a := records.Date("20250601")
		b := records.Date("20250602")
		assert.True(t, a.Before(b))
		assert.False(t, b.Before(a))
	})
}

func TestSourceRecordImmutability(t *testing.T) {
	fields := map[string]any{
		"weight":   "167 g",
		"features": []any{"5G", "IP68"},
		"display":  map[string]any{"size": "6.2 inch"},
	}
	rec := records.NewSourceRecord(records.SourceAmazon, records.ProductTypePhones, time.Now(), fields)

	// Mutating the input after construction must not leak into the record.
	fields["weight"] = "tampered"
	fields["features"].([]any)[0] = "tampered"

	got := rec.Fields()
	assert.Equal(t, "167 g", got["weight"])
	assert.Equal(t, "5G", got["features"].([]any)[0])

	// Mutating a returned copy must not affect later reads.
	got["weight"] = "tampered again"
	v, ok := rec.Field("weight")
	require.True(t, ok)
	assert.Equal(t, "167 g", v)

	assert.Equal(t, 3, rec.FieldCount())
}

func TestReconciledRecordKey(t *testing.T) {
	rec := &records.ReconciledRecord{
		ProductType: records.ProductTypePhones,
		Date:        "20250601",
	}
	assert.Equal(t, "phones/20250601", rec.Key())
}

func TestReconciledRecordCopy(t *testing.T) {
	rec := &records.ReconciledRecord{
		ProductType: records.ProductTypeTV,
		Date:        "20250601",
		Fields:      map[string]any{"display.size": "55 inch"},
		Provenance:  map[string][]records.SourceID{"display.size": {records.SourceAmazon}},
		Metadata: records.NormalizationMetadata{
			OriginalFieldCount:   10,
			NormalizedFieldCount: 1,
			FieldRetentionRatio:  0.1,
			SourceCounts:         map[records.SourceID]int{records.SourceAmazon: 1},
			Sources:              []records.SourceID{records.SourceAmazon},
		},
	}

	cp := rec.Copy()
	cp.Fields["display.size"] = "65 inch"
	cp.Provenance["display.size"][0] = records.SourceFlipkart
	cp.Metadata.SourceCounts[records.SourceAmazon] = 99

	assert.Equal(t, "55 inch", rec.Fields["display.size"])
	assert.Equal(t, records.SourceAmazon, rec.Provenance["display.size"][0])
	assert.Equal(t, 1, rec.Metadata.SourceCounts[records.SourceAmazon])
}

func TestReconciledRecordJSON(t *testing.T) {
	rec := &records.ReconciledRecord{
		ProductType: records.ProductTypePhones,
		Date:        "20250601",
		Fields:      map[string]any{"weight.verified": "167 g"},
		Provenance:  map[string][]records.SourceID{"weight.verified": {records.SourceInternalCSV, records.SourceAmazon}},
		Metadata: records.NormalizationMetadata{
			OriginalFieldCount:   4,
			NormalizedFieldCount: 1,
			FieldRetentionRatio:  0.25,
			SourceCounts:         map[records.SourceID]int{records.SourceInternalCSV: 1},
			Sources:              []records.SourceID{records.SourceAmazon, records.SourceInternalCSV},
		},
		Images: []string{"phones_amazon_20250601_a1b2c3d4e5f60708.jpg"},
	}

	data, err := rec.MarshalIndented()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "_normalization_metadata")
	assert.Contains(t, decoded, "_images")
	meta := decoded["_normalization_metadata"].(map[string]any)
	assert.Equal(t, float64(4), meta["original_field_count"])
	assert.Equal(t, 0.25, meta["field_retention_ratio"])
}

func TestImagesOmittedWhenEmpty(t *testing.T) {
	rec := &records.ReconciledRecord{ProductType: records.ProductTypeTV, Date: "20250601"}
	data, err := rec.MarshalIndented()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "_images")
}

func TestParseImageName(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		name, err := records.ParseImageName("phones_amazon_20250601_a1b2c3d4e5f60708.jpg")
		require.NoError(t, err)
		assert.Equal(t, records.ProductTypePhones, name.ProductType)
		assert.Equal(t, records.SourceAmazon, name.Source)
		assert.Equal(t, records.Date("20250601"), name.Date)
		assert.Equal(t, "jpg", name.Ext)
	})

	t.Run("round trip", func(t *testing.T) {
		orig := records.ImageName{
			ProductType: records.ProductTypeWatch,
			Source:      records.SourceFlipkart,
			Date:        "20250602",
			Hash:        records.ImageHash("https://example.com/watch.png"),
			Ext:         "png",
		}
		parsed, err := records.ParseImageName(orig.String())
		require.NoError(t, err)
		assert.Equal(t, orig, parsed)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := records.ParseImageName("notanimage.jpg")
		assert.Error(t, err)
	})
}

func TestParseScrapeName(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		name, err := records.ParseScrapeName("tv_flipkart_20250601_050408.json")
		require.NoError(t, err)
		assert.Equal(t, records.ProductTypeTV, name.ProductType)
		assert.Equal(t, records.SourceFlipkart, name.Source)
		assert.Equal(t, records.Date("20250601"), name.Date)
		assert.Equal(t, "050408", name.Time)
		assert.Equal(t, "json", name.Ext)
	})

	t.Run("csv payload", func(t *testing.T) {
		name, err := records.ParseScrapeName("phones_internal_csv_20250601_080000.csv")
		require.NoError(t, err)
		assert.Equal(t, records.SourceInternalCSV, name.Source)
		assert.Equal(t, "csv", name.Ext)
	})

	t.Run("bad product type", func(t *testing.T) {
		_, err := records.ParseScrapeName("laptop_amazon_20250601_050408.json")
		assert.Error(t, err)
	})

	t.Run("missing time part", func(t *testing.T) {
		_, err := records.ParseScrapeName("phones_amazon_20250601.json")
		assert.Error(t, err)
	})
}
