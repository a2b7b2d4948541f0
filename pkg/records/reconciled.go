package records

import (
	"encoding/json"
	"fmt"
	"sort"
)

// NormalizationMetadata carries the per-record quality metrics computed by
// the confidence scorer. Field names mirror the `_normalization_metadata`
// block of the serialized record.
type NormalizationMetadata struct {
	OriginalFieldCount   int              `json:"original_field_count" yaml:"original_field_count"`
	NormalizedFieldCount int              `json:"normalized_field_count" yaml:"normalized_field_count"`
	FieldRetentionRatio  float64          `json:"field_retention_ratio" yaml:"field_retention_ratio"`
	SourceCounts         map[SourceID]int `json:"source_counts" yaml:"source_counts"`
	Sources              []SourceID       `json:"sources" yaml:"sources"`
	AggregationDate      string           `json:"aggregation_date" yaml:"aggregation_date"`
}

// ReconciledRecord is the merged master record for one product_type + date.
// Created once per pipeline run per unit of work and never mutated; a re-run
// for the same date produces a new record that replaces the prior one in the
// version store.
type ReconciledRecord struct {
	ProductType ProductType           `json:"product_type"`
	Date        Date                  `json:"date"`
	Fields      map[string]any        `json:"fields"`
	Provenance  map[string][]SourceID `json:"field_provenance"`
	Metadata    NormalizationMetadata `json:"_normalization_metadata"`

	// Images is an optional list of image filenames supplied by the caller,
	// echoed into the serialized output. Image discovery is external.
	Images []string `json:"_images,omitempty"`
}

// Key returns the store key "{product_type}/{date}".
func (r *ReconciledRecord) Key() string {
	return fmt.Sprintf("%s/%s", r.ProductType, r.Date)
}

// FieldPaths returns the record's canonical field paths in sorted order.
func (r *ReconciledRecord) FieldPaths() []string {
	paths := make([]string, 0, len(r.Fields))
	for path := range r.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Sources returns the provenance sources for a field path, or nil when the
// field is absent.
func (r *ReconciledRecord) FieldSources(path string) []SourceID {
	srcs := r.Provenance[path]
	if srcs == nil {
		return nil
	}
	out := make([]SourceID, len(srcs))
	copy(out, srcs)
	return out
}

// Copy returns a deep copy of the record.
func (r *ReconciledRecord) Copy() *ReconciledRecord {
	out := &ReconciledRecord{
		ProductType: r.ProductType,
		Date:        r.Date,
		Fields:      copyFieldMap(r.Fields),
		Metadata:    r.Metadata,
	}
	if r.Provenance != nil {
		out.Provenance = make(map[string][]SourceID, len(r.Provenance))
		for path, srcs := range r.Provenance {
			cp := make([]SourceID, len(srcs))
			copy(cp, srcs)
			out.Provenance[path] = cp
		}
	}
	if r.Metadata.SourceCounts != nil {
		counts := make(map[SourceID]int, len(r.Metadata.SourceCounts))
		for src, n := range r.Metadata.SourceCounts {
			counts[src] = n
		}
		out.Metadata.SourceCounts = counts
	}
	if r.Metadata.Sources != nil {
		srcs := make([]SourceID, len(r.Metadata.Sources))
		copy(srcs, r.Metadata.Sources)
		out.Metadata.Sources = srcs
	}
	if r.Images != nil {
		imgs := make([]string, len(r.Images))
		copy(imgs, r.Images)
		out.Images = imgs
	}
	return out
}

// MarshalIndented serializes the record as indented JSON, the on-disk and
// serving representation.
func (r *ReconciledRecord) MarshalIndented() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
