package pipeline

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfuse/specfuse/internal/store/memory"
	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/reconcile"
	"github.com/specfuse/specfuse/pkg/records"
)

var collectedAt = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func phoneInputs() []Input {
	return []Input{
		{
			Source:      records.SourceAmazon,
			ProductType: records.ProductTypePhones,
			Date:        "20250601",
			CollectedAt: collectedAt,
			Payload: map[string]any{
				"Brand":            "Samsung",
				"Item Weight":      "165 g",
				"Special Features": []any{"5G"},
			},
		},
		{
			Source:      records.SourceFlipkart,
			ProductType: records.ProductTypePhones,
			Date:        "20250601",
			CollectedAt: collectedAt,
			Payload: map[string]any{
				"brand":    "Samsung",
				"features": []any{"5g", "IP68"},
			},
		},
		{
			Source:      records.SourceInternalCSV,
			ProductType: records.ProductTypePhones,
			Date:        "20250601",
			CollectedAt: collectedAt,
			Payload: map[string]any{
				"weight": "167 g",
			},
		},
	}
}

func TestRunReconcilesUnit(t *testing.T) {
	s := memory.New()
	p := New(s)

	result, err := p.Run(context.Background(), phoneInputs())
	require.NoError(t, err)
	require.Len(t, result.Units, 1)

	record := result.Units[0].Record
	require.NotNil(t, record)
	assert.Equal(t, records.ProductTypePhones, record.ProductType)
	assert.Equal(t, records.Date("20250601"), record.Date)

	assert.Equal(t, "Samsung", record.Fields["brand"])
	assert.Equal(t, "167 g", record.Fields["weight"])
	assert.Equal(t, []records.SourceID{records.SourceInternalCSV, records.SourceAmazon}, record.Provenance["weight"])
	assert.Equal(t, []string{"5G", "IP68"}, record.Fields["special_features"])

	assert.Equal(t, 3, len(record.Metadata.Sources))
	assert.Equal(t, "20250601", record.Metadata.AggregationDate)

	stored, err := s.Get(context.Background(), records.ProductTypePhones, "20250601")
	require.NoError(t, err)
	assert.Equal(t, record.Fields["weight"], stored.Fields["weight"])
}

func TestRunSkipsMalformedSource(t *testing.T) {
	s := memory.New()
	p := New(s)

	inputs := append(phoneInputs(), Input{
		Source:      records.SourcePDFExtract,
		ProductType: records.ProductTypePhones,
		Date:        "20250601",
		CollectedAt: collectedAt,
		Payload:     map[string]any{},
	})

	result, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, result.Units, 1)

	unit := result.Units[0]
	require.Len(t, unit.Skipped, 1)
	assert.Equal(t, records.SourcePDFExtract, unit.Skipped[0].Source)
	assert.NotEmpty(t, unit.Warnings)

	// The skipped source never shows up in source counts.
	assert.NotContains(t, unit.Record.Metadata.SourceCounts, records.SourcePDFExtract)
	assert.Contains(t, unit.Record.Metadata.SourceCounts, records.SourceAmazon)
}

func TestRunRejectsUnknownProductType(t *testing.T) {
	s := memory.New()
	p := New(s)

	_, err := p.Run(context.Background(), []Input{{
		Source:      records.SourceAmazon,
		ProductType: "laptop",
		Date:        "20250601",
		CollectedAt: collectedAt,
		Payload:     map[string]any{"Brand": "Dell"},
	}})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedSource(err))
}

func TestRunRejectsInvalidDate(t *testing.T) {
	s := memory.New()
	p := New(s)

	_, err := p.Run(context.Background(), []Input{{
		Source:      records.SourceAmazon,
		ProductType: records.ProductTypePhones,
		Date:        "2025-06-01",
		CollectedAt: collectedAt,
		Payload:     map[string]any{"Brand": "Samsung"},
	}})
	require.Error(t, err)
}

func TestRunFailsWhenNoSourceSurvives(t *testing.T) {
	s := memory.New()
	p := New(s)

	_, err := p.Run(context.Background(), []Input{{
		Source:      records.SourceAmazon,
		ProductType: records.ProductTypePhones,
		Date:        "20250601",
		CollectedAt: collectedAt,
		Payload:     nil,
	}})
	require.Error(t, err)
}

func TestRunMultipleUnits(t *testing.T) {
	s := memory.New()
	p := New(s, WithWorkers(2))

	inputs := append(phoneInputs(),
		Input{
			Source:      records.SourceAmazon,
			ProductType: records.ProductTypeTV,
			Date:        "20250601",
			CollectedAt: collectedAt,
			Payload:     map[string]any{"Brand": "LG"},
		},
		Input{
			Source:      records.SourceAmazon,
			ProductType: records.ProductTypePhones,
			Date:        "20250602",
			CollectedAt: collectedAt,
			Payload:     map[string]any{"Brand": "Samsung"},
		},
	)

	result, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, result.Units, 3)

	// Units come back ordered by product type then date.
	assert.Equal(t, records.ProductTypePhones, result.Units[0].Record.ProductType)
	assert.Equal(t, records.Date("20250601"), result.Units[0].Record.Date)
	assert.Equal(t, records.Date("20250602"), result.Units[1].Record.Date)
	assert.Equal(t, records.ProductTypeTV, result.Units[2].Record.ProductType)

	latest, err := s.Latest(context.Background(), records.ProductTypePhones)
	require.NoError(t, err)
	assert.Equal(t, records.Date("20250602"), latest.Date)
}

func TestRunDeterministicUnderInputPermutation(t *testing.T) {
	baselineStore := memory.New()
	baseline, err := New(baselineStore).Run(context.Background(), phoneInputs())
	require.NoError(t, err)
	baselineBytes, err := baseline.Units[0].Record.MarshalIndented()
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		inputs := phoneInputs()
		rng.Shuffle(len(inputs), func(a, b int) {
			inputs[a], inputs[b] = inputs[b], inputs[a]
		})

		result, err := New(memory.New()).Run(context.Background(), inputs)
		require.NoError(t, err)
		got, err := result.Units[0].Record.MarshalIndented()
		require.NoError(t, err)

		if diff := cmp.Diff(string(baselineBytes), string(got)); diff != "" {
			t.Fatalf("record differs under input permutation (-want +got):\n%s", diff)
		}
	}
}

func TestRunEchoesImages(t *testing.T) {
	inputs := phoneInputs()
	inputs[0].Images = []string{"phones_amazon_20250601_a1b2c3d4.jpg"}
	inputs[1].Images = []string{"phones_flipkart_20250601_ffee0011.png", "phones_amazon_20250601_a1b2c3d4.jpg"}

	result, err := New(memory.New()).Run(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"phones_amazon_20250601_a1b2c3d4.jpg",
		"phones_flipkart_20250601_ffee0011.png",
	}, result.Units[0].Record.Images)
}

func TestRunPerProductTypeReconcilers(t *testing.T) {
	// TV priorities put amazon on top; phones keep the defaults. The
	// same conflicting values must resolve differently per type.
	tvReconciler := reconcile.New(reconcile.WithRanks([]reconcile.Rank{
		{Source: records.SourceAmazon, Priority: 100},
		{Source: records.SourceInternalCSV, Priority: 50},
	}))
	defaultReconciler := reconcile.New()

	p := New(memory.New(), WithReconcilers(func(productType records.ProductType) *reconcile.Reconciler {
		if productType == records.ProductTypeTV {
			return tvReconciler
		}
		return defaultReconciler
	}))

	inputs := []Input{
		{
			Source: records.SourceAmazon, ProductType: records.ProductTypeTV,
			Date: "20250601", CollectedAt: collectedAt,
			Payload: map[string]any{"brand": "Amazon Basics"},
		},
		{
			Source: records.SourceInternalCSV, ProductType: records.ProductTypeTV,
			Date: "20250601", CollectedAt: collectedAt,
			Payload: map[string]any{"brand": "LG"},
		},
		{
			Source: records.SourceAmazon, ProductType: records.ProductTypePhones,
			Date: "20250601", CollectedAt: collectedAt,
			Payload: map[string]any{"brand": "Samsung"},
		},
		{
			Source: records.SourceInternalCSV, ProductType: records.ProductTypePhones,
			Date: "20250601", CollectedAt: collectedAt,
			Payload: map[string]any{"brand": "Galaxy"},
		},
	}

	result, err := p.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, result.Units, 2)

	assert.Equal(t, "Galaxy", result.Units[0].Record.Fields["brand"])
	assert.Equal(t, "Amazon Basics", result.Units[1].Record.Fields["brand"])
}

func TestRunCSVInput(t *testing.T) {
	csv := "Attribute,Variant,Value\nBrand,All,Samsung\nWeight,All,167 g\n"
	inputs := append(phoneInputs(), Input{
		Source:      records.SourceInternalCSV,
		ProductType: records.ProductTypePhones,
		Date:        "20250602",
		CollectedAt: collectedAt,
		CSV:         []byte(csv),
	})

	result, err := New(memory.New()).Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, result.Units, 2)

	record := result.Units[1].Record
	assert.Equal(t, records.Date("20250602"), record.Date)
	assert.Equal(t, "Samsung", record.Fields["brand"])
	assert.Equal(t, "167 g", record.Fields["weight"])
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(memory.New()).Run(ctx, phoneInputs())
	require.Error(t, err)
}
