// Package reconcile merges aligned field candidates from multiple
// sources into a single set of field values with per-field provenance.
//
// Reconciliation is field by field: when every source agrees a value is
// adopted directly, and when sources disagree a Strategy picks the
// winner. String-list fields are never voted on; they union across all
// contributing sources instead. Every decision records which sources
// contributed, winner first.
package reconcile

import (
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/cases"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/logging"
	"github.com/specfuse/specfuse/pkg/records"
	"github.com/specfuse/specfuse/pkg/schema"
)

// Warning reports a field the reconciler could not settle. The field is
// omitted from the output rather than guessed at.
type Warning struct {
	Field string
	Err   error
}

// Result is the outcome of reconciling one product's candidates.
type Result struct {
	// Fields maps canonical field paths to their reconciled values.
	Fields map[string]any

	// Provenance maps each emitted field path to the sources that
	// contributed it, winning source first, remaining contributors in
	// priority order.
	Provenance map[string][]records.SourceID

	// Warnings lists fields dropped during reconciliation.
	Warnings []Warning
}

// Reconciler merges field candidates using a conflict strategy and a
// source priority order.
type Reconciler struct {
	strategy Strategy
	ranks    []Rank
	order    *SourceOrderStrategy
	folder   cases.Caser
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithRanks sets the source priority order.
func WithRanks(ranks []Rank) Option {
	return func(r *Reconciler) {
		r.ranks = ranks
	}
}

// WithStrategy overrides the conflict resolution strategy.
func WithStrategy(s Strategy) Option {
	return func(r *Reconciler) {
		r.strategy = s
	}
}

// New returns a Reconciler. Without options it uses DefaultRanks and
// the source-order strategy.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		ranks:  DefaultRanks(),
		folder: cases.Fold(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.order = NewSourceOrderStrategy(r.ranks)
	if r.strategy == nil {
		r.strategy = r.order
	}
	return r
}

// Strategy returns the active conflict strategy.
func (r *Reconciler) Strategy() Strategy {
	return r.strategy
}

// Reconcile merges candidates into field values with provenance.
// Candidates whose field is not part of the schema are dropped with a
// warning. The result is deterministic: fields are processed in sorted
// path order and sources in priority order, so permuting the input
// never changes the output.
func (r *Reconciler) Reconcile(s *schema.Schema, candidates []records.FieldCandidate) *Result {
	var warnings []Warning
	byField := make(map[string]map[records.SourceID]any)
	for _, c := range candidates {
		if !s.Has(c.Field) {
			warnings = append(warnings, Warning{
				Field: c.Field,
				Err:   errors.NewValidationError(c.Field, c.Value, "field not in "+s.ProductType().String()+" schema"),
			})
			continue
		}
		values, ok := byField[c.Field]
		if !ok {
			values = make(map[records.SourceID]any)
			byField[c.Field] = values
		}
		// One candidate per field per source survives alignment; keep
		// the first if a caller hands us duplicates anyway.
		if _, ok := values[c.Source]; !ok {
			values[c.Source] = c.Value
		}
	}

	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	result := &Result{
		Fields:     make(map[string]any, len(byField)),
		Provenance: make(map[string][]records.SourceID, len(byField)),
		Warnings:   warnings,
	}

	for _, field := range fields {
		values := byField[field]
		def, _ := s.Lookup(field)

		sources := make([]records.SourceID, 0, len(values))
		for id := range values {
			sources = append(sources, id)
		}
		r.order.Sort(sources)

		if def.Kind == schema.KindStringList {
			merged, contributors := r.unionLists(sources, values)
			if len(merged) == 0 {
				continue
			}
			result.Fields[field] = merged
			result.Provenance[field] = contributors
			continue
		}

		distinct := distinctValues(values)
		if len(distinct) == 1 {
			result.Fields[field] = values[sources[0]]
			result.Provenance[field] = sources
			continue
		}

		value, winner, reason, err := r.strategy.ResolveConflict(field, values)
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{Field: field, Err: err})
			logging.Warn().
				Str("field", field).
				Str("strategy", r.strategy.Name()).
				Err(err).
				Msg("field dropped during reconciliation")
			continue
		}

		logging.Debug().
			Str("field", field).
			Str("winner", winner.String()).
			Str("reason", reason).
			Int("candidates", len(distinct)).
			Msg("conflict resolved")

		result.Fields[field] = value
		result.Provenance[field] = orderProvenance(winner, sources)
	}

	return result
}

// unionLists merges string-list values from the given sources, which
// must already be in priority order. Entries deduplicate
// case-insensitively via Unicode case folding, keeping the first-seen
// spelling, and provenance lists every source that contributed at
// least one entry.
func (r *Reconciler) unionLists(sources []records.SourceID, values map[records.SourceID]any) ([]string, []records.SourceID) {
	var merged []string
	var contributors []records.SourceID
	seen := make(map[string]bool)

	for _, id := range sources {
		list, ok := values[id].([]string)
		if !ok || len(list) == 0 {
			continue
		}
		contributed := false
		for _, entry := range list {
			key := r.folder.String(entry)
			if seen[key] {
				contributed = true
				continue
			}
			seen[key] = true
			merged = append(merged, entry)
			contributed = true
		}
		if contributed {
			contributors = append(contributors, id)
		}
	}
	return merged, contributors
}

// distinctValues groups sources by encoded value.
func distinctValues(values map[records.SourceID]any) map[string][]records.SourceID {
	distinct := make(map[string][]records.SourceID)
	for id, v := range values {
		key := string(encodeValue(v))
		distinct[key] = append(distinct[key], id)
	}
	return distinct
}

// orderProvenance places the winner first and keeps the rest of the
// priority-ordered sources behind it.
func orderProvenance(winner records.SourceID, sources []records.SourceID) []records.SourceID {
	out := make([]records.SourceID, 0, len(sources))
	out = append(out, winner)
	for _, id := range sources {
		if id != winner {
			out = append(out, id)
		}
	}
	return out
}

// encodeValue gives a stable byte encoding for value comparison. JSON
// is canonical enough here: map keys marshal sorted and all field
// values are JSON-representable after coercion.
func encodeValue(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(fmt.Sprintf("%#v", v))
	}
	return data
}
