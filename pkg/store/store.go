// Package store defines the version store contract: keyed persistence
// of reconciled records by product type and aggregation date, with
// latest-date lookup and a small search surface over stored fields.
package store

import (
	"context"

	"github.com/specfuse/specfuse/pkg/records"
)

// Match is one search hit. Relevance counts how many times the query
// occurred across the record's field values.
type Match struct {
	Record    *records.ReconciledRecord
	Relevance int
}

// Store keeps one reconciled record per (product_type, date) key.
//
// Put overwrites an existing record for the same key; the store holds
// no history beyond the distinct dates it was given. Implementations
// must be safe for concurrent use and must return copies, never
// internal state.
type Store interface {
	// Put stores a record under its (product_type, date) key,
	// replacing any record already there.
	Put(ctx context.Context, record *records.ReconciledRecord) error

	// Get returns the record for the exact key, or a not-found error.
	Get(ctx context.Context, productType records.ProductType, date records.Date) (*records.ReconciledRecord, error)

	// Latest returns the record with the maximum date for the product
	// type, or a not-found error when none exist. Dates are fixed-width
	// YYYYMMDD, so lexicographic order is chronological order.
	Latest(ctx context.Context, productType records.ProductType) (*records.ReconciledRecord, error)

	// Dates lists the stored dates for a product type in ascending
	// order. A product type with no records yields an empty slice, not
	// an error.
	Dates(ctx context.Context, productType records.ProductType) ([]records.Date, error)

	// Search scans the latest record of every product type for the
	// query, case-insensitively, and returns matches ordered by
	// descending relevance. Ties order by product type then date.
	Search(ctx context.Context, query string) ([]Match, error)
}
