// Package pipeline drives a full reconciliation run: raw source
// payloads are adapted, aligned against the product schema, reconciled,
// scored, and stored, one unit of work per (product_type, date).
//
// Units run concurrently on an errgroup; within a unit every stage is
// sequential and deterministic, so two runs over the same inputs
// produce identical records regardless of input order.
package pipeline

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/specfuse/specfuse/pkg/adapters"
	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/logging"
	"github.com/specfuse/specfuse/pkg/reconcile"
	"github.com/specfuse/specfuse/pkg/records"
	"github.com/specfuse/specfuse/pkg/schema"
	"github.com/specfuse/specfuse/pkg/scorer"
	"github.com/specfuse/specfuse/pkg/store"
)

// Input is one raw payload awaiting reconciliation.
type Input struct {
	Source      records.SourceID
	ProductType records.ProductType
	Date        records.Date
	CollectedAt time.Time
	Payload     map[string]any

	// CSV holds a raw attribute/variant/value document. When set it
	// takes precedence over Payload and is adapted with the CSV
	// adapter's row grouping.
	CSV []byte

	// Images are optional image filenames echoed into the record for
	// this input's unit. Image discovery happens outside the pipeline.
	Images []string
}

// unitKey identifies one unit of work.
type unitKey struct {
	productType records.ProductType
	date        records.Date
}

// SkippedSource reports a payload the adapter rejected. The unit
// continues with its remaining sources.
type SkippedSource struct {
	Source records.SourceID
	Err    error
}

// UnitResult is the outcome of one (product_type, date) unit.
type UnitResult struct {
	Record   *records.ReconciledRecord
	Skipped  []SkippedSource
	Warnings []string
}

// RunResult aggregates every unit of a pipeline run, ordered by
// product type then date.
type RunResult struct {
	Units []UnitResult
}

// Records returns the reconciled records across all units.
func (r *RunResult) Records() []*records.ReconciledRecord {
	out := make([]*records.ReconciledRecord, 0, len(r.Units))
	for _, u := range r.Units {
		out = append(out, u.Record)
	}
	return out
}

// Warnings returns every warning across all units.
func (r *RunResult) Warnings() []string {
	var out []string
	for _, u := range r.Units {
		out = append(out, u.Warnings...)
	}
	return out
}

// Pipeline wires the reconciliation stages to a version store.
type Pipeline struct {
	store         store.Store
	reconcilerFor func(records.ProductType) *reconcile.Reconciler
	schemaFor     func(records.ProductType) (*schema.Schema, error)
	workers       int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReconciler uses one reconciler for every product type.
func WithReconciler(r *reconcile.Reconciler) Option {
	return func(p *Pipeline) {
		p.reconcilerFor = func(records.ProductType) *reconcile.Reconciler {
			return r
		}
	}
}

// WithReconcilers replaces the reconciler lookup, letting each product
// type carry its own priority configuration.
func WithReconcilers(fn func(records.ProductType) *reconcile.Reconciler) Option {
	return func(p *Pipeline) {
		p.reconcilerFor = fn
	}
}

// WithSchemas replaces the default schema lookup.
func WithSchemas(fn func(records.ProductType) (*schema.Schema, error)) Option {
	return func(p *Pipeline) {
		p.schemaFor = fn
	}
}

// WithWorkers caps the number of units processed concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New returns a Pipeline writing to the given store. Defaults: the
// built-in schemas, a default-ranked reconciler, and four workers.
func New(s store.Store, opts ...Option) *Pipeline {
	defaultReconciler := reconcile.New()
	p := &Pipeline{
		store: s,
		reconcilerFor: func(records.ProductType) *reconcile.Reconciler {
			return defaultReconciler
		},
		schemaFor: func(productType records.ProductType) (*schema.Schema, error) {
			return schema.Default(productType), nil
		},
		workers: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes all inputs and returns per-unit results. A malformed
// payload skips only its source; a unit fails only on storage errors
// or when no source survives adaptation.
func (p *Pipeline) Run(ctx context.Context, inputs []Input) (*RunResult, error) {
	units := groupInputs(inputs)
	keys := make([]unitKey, 0, len(units))
	for key := range units {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].productType != keys[j].productType {
			return keys[i].productType < keys[j].productType
		}
		return keys[i].date < keys[j].date
	})

	results := make([]UnitResult, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			result, err := p.runUnit(ctx, key, units[key])
			if err != nil {
				return err
			}
			results[i] = *result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RunResult{Units: results}, nil
}

// runUnit executes one (product_type, date) unit end to end. The key
// is validated before any schema lookup so a bad product type or date
// fails the unit with an error, never a panic.
func (p *Pipeline) runUnit(ctx context.Context, key unitKey, inputs []Input) (*UnitResult, error) {
	if !key.productType.Valid() {
		return nil, errors.NewMalformedSourceError(
			key.productType.String()+"/"+key.date.String(),
			"unknown product type "+key.productType.String(), nil)
	}
	if !key.date.Valid() {
		return nil, errors.NewValidationError("date", key.date.String(), "not a valid YYYYMMDD date")
	}

	ctx = logging.WithProduct(ctx, key.productType.String(), key.date.String())
	log := logging.Ctx(ctx)

	s, err := p.schemaFor(key.productType)
	if err != nil {
		return nil, err
	}

	result := &UnitResult{}

	var sourceRecords []*records.SourceRecord
	var candidates []records.FieldCandidate
	var images []string
	for _, input := range inputs {
		rec, err := adaptInput(input)
		if err != nil {
			if !errors.IsMalformedSource(err) {
				return nil, err
			}
			result.Skipped = append(result.Skipped, SkippedSource{Source: input.Source, Err: err})
			result.Warnings = append(result.Warnings, "source "+input.Source.String()+" skipped: "+err.Error())
			log.Warn().
				Str("source_id", input.Source.String()).
				Err(err).
				Msg("malformed payload skipped")
			continue
		}
		sourceRecords = append(sourceRecords, rec)
		images = append(images, input.Images...)

		cands, stats, warnings := s.Align(rec)
		candidates = append(candidates, cands...)
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, "field "+w.Field+" from "+w.Source.String()+": "+w.Err.Error())
		}
		log.Debug().
			Str("source_id", input.Source.String()).
			Int("original_fields", stats.OriginalFields).
			Int("aligned_fields", stats.AlignedFields).
			Msg("source aligned")
	}

	if len(sourceRecords) == 0 {
		return nil, errors.NewMalformedSourceError(
			key.productType.String()+"/"+key.date.String(),
			"no source payload survived adaptation", nil)
	}

	merged := p.reconcilerFor(key.productType).Reconcile(s, candidates)
	for _, w := range merged.Warnings {
		result.Warnings = append(result.Warnings, "field "+w.Field+" dropped: "+w.Err.Error())
	}

	record := &records.ReconciledRecord{
		ProductType: key.productType,
		Date:        key.date,
		Fields:      merged.Fields,
		Provenance:  merged.Provenance,
		Metadata:    scorer.Score(sourceRecords, merged.Fields, merged.Provenance, key.date),
		Images:      dedupeImages(images),
	}

	if err := p.store.Put(ctx, record); err != nil {
		return nil, err
	}

	log.Info().
		Int("sources", len(sourceRecords)).
		Int("fields", len(record.Fields)).
		Float64("retention", record.Metadata.FieldRetentionRatio).
		Msg("record reconciled")

	result.Record = record
	return result, nil
}

func adaptInput(input Input) (*records.SourceRecord, error) {
	if input.CSV != nil {
		return adapters.NewCSV().AdaptRows(input.CSV, input.ProductType, input.CollectedAt)
	}
	return adapters.For(input.Source).Adapt(input.Payload, input.ProductType, input.CollectedAt)
}

// groupInputs buckets inputs into units and orders each bucket by
// source ID so a unit always sees its payloads in the same sequence.
func groupInputs(inputs []Input) map[unitKey][]Input {
	units := make(map[unitKey][]Input)
	for _, input := range inputs {
		key := unitKey{productType: input.ProductType, date: input.Date}
		units[key] = append(units[key], input)
	}
	for _, bucket := range units {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Source < bucket[j].Source
		})
	}
	return units
}

func dedupeImages(images []string) []string {
	if len(images) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(images))
	out := make([]string, 0, len(images))
	for _, img := range images {
		if _, ok := seen[img]; ok {
			continue
		}
		seen[img] = struct{}{}
		out = append(out, img)
	}
	sort.Strings(out)
	return out
}
