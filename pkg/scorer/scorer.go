// Package scorer computes the per-record quality metrics attached to each
// reconciled record as normalization metadata.
package scorer

import (
	"sort"

	"github.com/specfuse/specfuse/pkg/records"
)

// Score derives NormalizationMetadata from one reconciliation unit.
//
// The original field count sums the raw field counts of every adapted
// source record, pre-alignment. Source counts tally how many final
// fields each source's candidates survived into: a source that lost
// every conflict still appears with a count of 0, while a source whose
// payload never adapted is absent entirely. Score reads its inputs and
// nothing else, so re-running it on the same inputs yields identical
// metadata.
func Score(sourceRecords []*records.SourceRecord, fields map[string]any, provenance map[string][]records.SourceID, date records.Date) records.NormalizationMetadata {
	original := 0
	counts := make(map[records.SourceID]int, len(sourceRecords))
	for _, rec := range sourceRecords {
		original += rec.FieldCount()
		if _, ok := counts[rec.SourceID()]; !ok {
			counts[rec.SourceID()] = 0
		}
	}

	for _, srcs := range provenance {
		for _, id := range srcs {
			counts[id]++
		}
	}

	sources := make([]records.SourceID, 0, len(counts))
	for id := range counts {
		sources = append(sources, id)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	normalized := len(fields)
	ratio := 0.0
	if original > 0 {
		ratio = float64(normalized) / float64(original)
		if ratio > 1 {
			ratio = 1
		}
	}

	return records.NormalizationMetadata{
		OriginalFieldCount:   original,
		NormalizedFieldCount: normalized,
		FieldRetentionRatio:  ratio,
		SourceCounts:         counts,
		Sources:              sources,
		AggregationDate:      date.String(),
	}
}
