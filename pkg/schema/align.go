package schema

import (
	"sort"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/logging"
	"github.com/specfuse/specfuse/pkg/records"
)

// Warning records a non-fatal alignment problem: a mapped key whose value
// failed coercion. Unmappable keys are dropped silently and do not warn.
type Warning struct {
	Source records.SourceID
	RawKey string
	Field  string
	Err    error
}

// AlignStats counts how a source record fared during alignment. The counts
// feed the confidence scorer: OriginalFields contributes to
// original_field_count regardless of how many keys survived.
type AlignStats struct {
	Source          records.SourceID
	OriginalFields  int
	AlignedFields   int
	DroppedKeys     int // unmappable raw keys, dropped silently
	FailedCoercions int // mapped keys whose value failed coercion
}

// Align maps a source record's raw fields onto the canonical schema,
// producing one FieldCandidate per successfully aligned key. Raw keys are
// visited in sorted order so the candidate sequence is deterministic across
// runs. Source noise never fails the record: unmappable keys drop silently,
// uncoercible values drop with a warning.
func (s *Schema) Align(rec *records.SourceRecord) ([]records.FieldCandidate, AlignStats, []Warning) {
	fields := rec.Fields()
	stats := AlignStats{
		Source:         rec.SourceID(),
		OriginalFields: len(fields),
	}

	rawKeys := make([]string, 0, len(fields))
	for key := range fields {
		rawKeys = append(rawKeys, key)
	}
	sort.Strings(rawKeys)

	var candidates []records.FieldCandidate
	var warnings []Warning
	seen := make(map[string]string) // canonical path -> raw key that claimed it

	for _, rawKey := range rawKeys {
		field, ok := s.Lookup(rawKey)
		if !ok {
			stats.DroppedKeys++
			logging.Debug().
				Str("source_id", rec.SourceID().String()).
				Str("raw_key", rawKey).
				Msg("dropping unmappable raw key")
			continue
		}

		// Two raw keys resolving to the same canonical path within one
		// source: the first in sorted order wins.
		if prior, claimed := seen[field.Path]; claimed {
			stats.DroppedKeys++
			logging.Debug().
				Str("source_id", rec.SourceID().String()).
				Str("raw_key", rawKey).
				Str("prior_key", prior).
				Str("field_path", field.Path).
				Msg("dropping duplicate alias for canonical field")
			continue
		}

		value, err := Coerce(fields[rawKey], field.Kind)
		if err != nil {
			stats.FailedCoercions++
			mismatch := errors.NewSchemaMismatchError(field.Path, string(field.Kind), fields[rawKey], rec.SourceID().String(), err)
			warnings = append(warnings, Warning{
				Source: rec.SourceID(),
				RawKey: rawKey,
				Field:  field.Path,
				Err:    mismatch,
			})
			logging.Warn().
				Str("source_id", rec.SourceID().String()).
				Str("raw_key", rawKey).
				Str("field_path", field.Path).
				Str("kind", string(field.Kind)).
				Err(err).
				Msg("dropping field that failed coercion")
			continue
		}

		seen[field.Path] = rawKey
		stats.AlignedFields++
		candidates = append(candidates, records.FieldCandidate{
			Source: rec.SourceID(),
			Field:  field.Path,
			Value:  value,
			RawKey: rawKey,
		})
	}

	return candidates, stats, warnings
}
