package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specfuse/specfuse/pkg/records"
)

func TestRelevance(t *testing.T) {
	record := &records.ReconciledRecord{
		ProductType: records.ProductTypePhones,
		Date:        "20250601",
		Fields: map[string]any{
			"brand":            "Samsung",
			"model.name":       "Samsung Galaxy S25",
			"special_features": []string{"5G", "Samsung DeX"},
			"camera":           map[string]any{"rear": "50 MP Samsung sensor"},
		},
	}

	assert.Equal(t, 4, Relevance(record, "samsung"))
	assert.Equal(t, 1, Relevance(record, "galaxy"))
	assert.Equal(t, 0, Relevance(record, "pixel"))
	assert.Equal(t, 0, Relevance(record, "  "))
}

func TestRelevanceMatchesFieldPaths(t *testing.T) {
	record := &records.ReconciledRecord{
		Fields: map[string]any{"battery.capacity": float64(5000)},
	}

	assert.Equal(t, 1, Relevance(record, "battery"))
}

func TestSortMatches(t *testing.T) {
	phones := &records.ReconciledRecord{ProductType: records.ProductTypePhones, Date: "20250601"}
	tv := &records.ReconciledRecord{ProductType: records.ProductTypeTV, Date: "20250601"}
	watch := &records.ReconciledRecord{ProductType: records.ProductTypeWatch, Date: "20250601"}

	matches := []Match{
		{Record: watch, Relevance: 1},
		{Record: tv, Relevance: 3},
		{Record: phones, Relevance: 1},
	}
	SortMatches(matches)

	assert.Equal(t, records.ProductTypeTV, matches[0].Record.ProductType)
	assert.Equal(t, records.ProductTypePhones, matches[1].Record.ProductType)
	assert.Equal(t, records.ProductTypeWatch, matches[2].Record.ProductType)
}
