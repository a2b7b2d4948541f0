package adapters_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfuse/specfuse/pkg/adapters"
	pkgerrors "github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/records"
)

var collectedAt = time.Date(2025, 6, 1, 5, 4, 8, 0, time.UTC)

func TestFor(t *testing.T) {
	assert.Equal(t, records.SourceInternalCSV, adapters.For(records.SourceInternalCSV).SourceID())
	assert.Equal(t, records.SourcePDFExtract, adapters.For(records.SourcePDFExtract).SourceID())
	assert.Equal(t, records.SourceLLMNormalized, adapters.For(records.SourceLLMNormalized).SourceID())
	assert.Equal(t, records.SourceAmazon, adapters.For(records.SourceAmazon).SourceID())

	// Unknown marketplaces fall back to the scraped adapter.
	assert.Equal(t, records.SourceID("croma"), adapters.For("croma").SourceID())
}

func TestFlatten(t *testing.T) {
	got := adapters.Flatten(map[string]any{
		"brand": "Samsung",
		"display": map[string]any{
			"size": "6.2 inch",
			"panel": map[string]any{
				"type": "AMOLED",
			},
		},
		"features": []any{"5G"},
	})

	assert.Equal(t, map[string]any{
		"brand":              "Samsung",
		"display.size":       "6.2 inch",
		"display.panel.type": "AMOLED",
		"features":           []any{"5G"},
	}, got)
}

func TestScrapedAdapter(t *testing.T) {
	a := adapters.NewScraped(records.SourceAmazon)

	t.Run("flat mapping", func(t *testing.T) {
		rec, err := a.Adapt(map[string]any{
			"Item Weight":      " 167 g ",
			"Battery Capacity": "5000 mAh",
		}, records.ProductTypePhones, collectedAt)
		require.NoError(t, err)

		fields := rec.Fields()
		assert.Equal(t, "167 g", fields["item_weight"])
		assert.Equal(t, "5000 mAh", fields["battery_capacity"])
		assert.Equal(t, records.SourceAmazon, rec.SourceID())
		assert.Equal(t, records.ProductTypePhones, rec.ProductType())
		assert.Equal(t, collectedAt, rec.CollectedAt())
	})

	t.Run("label value entry list", func(t *testing.T) {
		rec, err := a.Adapt(map[string]any{
			"specs": []any{
				map[string]any{"label": "Item Weight", "value": "167 g"},
				map[string]any{"label": "Colour", "value": "Onyx Black"},
			},
		}, records.ProductTypePhones, collectedAt)
		require.NoError(t, err)

		fields := rec.Fields()
		assert.Equal(t, "167 g", fields["item_weight"])
		assert.Equal(t, "Onyx Black", fields["colour"])
	})

	t.Run("vendor envelope unwraps", func(t *testing.T) {
		rec, err := a.Adapt(map[string]any{
			"technical_details": map[string]any{
				"Item Weight": "167 g",
				"OS":          "Android 14",
			},
		}, records.ProductTypePhones, collectedAt)
		require.NoError(t, err)

		fields := rec.Fields()
		assert.Equal(t, "167 g", fields["item_weight"])
		assert.Equal(t, "Android 14", fields["os"])
	})

	t.Run("nested vendor structure flattens", func(t *testing.T) {
		rec, err := a.Adapt(map[string]any{
			"brand": "Samsung",
			"display": map[string]any{
				"size": "6.2 inch",
			},
		}, records.ProductTypePhones, collectedAt)
		require.NoError(t, err)
		assert.Equal(t, "6.2 inch", rec.Fields()["display.size"])
	})

	t.Run("nil payload", func(t *testing.T) {
		_, err := a.Adapt(nil, records.ProductTypePhones, collectedAt)
		assert.True(t, pkgerrors.IsMalformedSource(err))
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := a.Adapt(map[string]any{}, records.ProductTypePhones, collectedAt)
		assert.True(t, pkgerrors.IsMalformedSource(err))
	})
}

func TestCSVAdapter(t *testing.T) {
	a := adapters.NewCSV()

	t.Run("flat mapping", func(t *testing.T) {
		rec, err := a.Adapt(map[string]any{
			"Weight": "167 g",
		}, records.ProductTypePhones, collectedAt)
		require.NoError(t, err)
		assert.Equal(t, "167 g", rec.Fields()["weight"])
		assert.Equal(t, records.SourceInternalCSV, rec.SourceID())
	})

	t.Run("rows with variants", func(t *testing.T) {
		data := []byte("Attribute,Variant,Value\n" +
			"Weight,All,167 g\n" +
			"Color,256GB,Titanium Gray\n" +
			"Color,512GB,Titanium Black\n" +
			"Battery Capacity,,5000 mAh\n")

		rec, err := a.AdaptRows(data, records.ProductTypePhones, collectedAt)
		require.NoError(t, err)

		fields := rec.Fields()
		assert.Equal(t, "167 g", fields["weight"])
		assert.Equal(t, "5000 mAh", fields["battery_capacity"])

		variants, ok := fields["color"].(map[string]any)
		require.True(t, ok, "multi-variant attribute keeps variant mapping")
		assert.Equal(t, "Titanium Gray", variants["256gb"])
		assert.Equal(t, "Titanium Black", variants["512gb"])
	})

	t.Run("rows skip empty values", func(t *testing.T) {
		data := []byte("Attribute,Variant,Value\nWeight,All,167 g\nColor,All,\n")
		rec, err := a.AdaptRows(data, records.ProductTypePhones, collectedAt)
		require.NoError(t, err)
		_, ok := rec.Field("color")
		assert.False(t, ok)
	})

	t.Run("rows with no usable data", func(t *testing.T) {
		data := []byte("Attribute,Variant,Value\n")
		_, err := a.AdaptRows(data, records.ProductTypePhones, collectedAt)
		assert.True(t, pkgerrors.IsMalformedSource(err))
	})
}

func TestPDFAdapter(t *testing.T) {
	a := adapters.NewPDF()

	rec, err := a.Adapt(map[string]any{
		"Display Size":     "6.2 inch",
		"Water-Resistance": "IP68",
	}, records.ProductTypePhones, collectedAt)
	require.NoError(t, err)

	fields := rec.Fields()
	assert.Equal(t, "6.2 inch", fields["display_size"])
	assert.Equal(t, "IP68", fields["water_resistance"])
	assert.Equal(t, records.SourcePDFExtract, rec.SourceID())
}

func TestLLMAdapter(t *testing.T) {
	a := adapters.NewLLM()

	t.Run("preserves nesting and strips metadata", func(t *testing.T) {
		rec, err := a.Adapt(map[string]any{
			"weight": "167 g",
			"camera": map[string]any{
				"rear":  "50 MP",
				"front": "12 MP",
			},
			"_normalization_metadata": map[string]any{"original_fields": 40},
		}, records.ProductTypePhones, collectedAt)
		require.NoError(t, err)

		fields := rec.Fields()
		assert.Equal(t, "167 g", fields["weight"])
		camera, ok := fields["camera"].(map[string]any)
		require.True(t, ok, "nested groups pass through unflattened")
		assert.Equal(t, "50 MP", camera["rear"])
		_, hasMeta := fields["_normalization_metadata"]
		assert.False(t, hasMeta)
	})

	t.Run("metadata-only payload is malformed", func(t *testing.T) {
		_, err := a.Adapt(map[string]any{
			"_normalization_metadata": map[string]any{},
		}, records.ProductTypePhones, collectedAt)
		assert.True(t, pkgerrors.IsMalformedSource(err))
	})
}
