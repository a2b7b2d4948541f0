// Package memory provides an in-memory version store for tests and
// single-run pipelines that do not need persistence.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/records"
	"github.com/specfuse/specfuse/pkg/store"
)

// Store keeps reconciled records in process memory. Safe for
// concurrent use; records are copied on the way in and out.
type Store struct {
	mu     sync.RWMutex
	byType map[records.ProductType]map[records.Date]*records.ReconciledRecord
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		byType: make(map[records.ProductType]map[records.Date]*records.ReconciledRecord),
	}
}

var _ store.Store = (*Store)(nil)

// Put implements store.Store. An existing record for the same
// product type and date is replaced.
func (s *Store) Put(ctx context.Context, record *records.ReconciledRecord) error {
	if err := validate(record); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dates, ok := s.byType[record.ProductType]
	if !ok {
		dates = make(map[records.Date]*records.ReconciledRecord)
		s.byType[record.ProductType] = dates
	}
	dates[record.Date] = record.Copy()
	return nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, productType records.ProductType, date records.Date) (*records.ReconciledRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byType[productType][date]
	if !ok {
		return nil, errors.NewNotFoundError("record", productType.String()+"/"+date.String())
	}
	return record.Copy(), nil
}

// Latest implements store.Store.
func (s *Store) Latest(ctx context.Context, productType records.ProductType) (*records.ReconciledRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record := latestLocked(s.byType[productType])
	if record == nil {
		return nil, errors.NewNotFoundError("record", productType.String()+"/latest")
	}
	return record.Copy(), nil
}

// Dates implements store.Store.
func (s *Store) Dates(ctx context.Context, productType records.ProductType) ([]records.Date, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dates := make([]records.Date, 0, len(s.byType[productType]))
	for date := range s.byType[productType] {
		dates = append(dates, date)
	}
	sortDates(dates)
	return dates, nil
}

// Search implements store.Store. Only the latest record per product
// type is searched.
func (s *Store) Search(ctx context.Context, query string) ([]store.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []store.Match
	for _, dates := range s.byType {
		record := latestLocked(dates)
		if record == nil {
			continue
		}
		if relevance := store.Relevance(record, query); relevance > 0 {
			matches = append(matches, store.Match{Record: record.Copy(), Relevance: relevance})
		}
	}
	store.SortMatches(matches)
	return matches, nil
}

// Len returns the total number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, dates := range s.byType {
		n += len(dates)
	}
	return n
}

func latestLocked(dates map[records.Date]*records.ReconciledRecord) *records.ReconciledRecord {
	var best *records.ReconciledRecord
	for _, record := range dates {
		if best == nil || best.Date.Before(record.Date) {
			best = record
		}
	}
	return best
}

func sortDates(dates []records.Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
}

func validate(record *records.ReconciledRecord) error {
	if record == nil {
		return errors.NewValidationError("record", nil, "record is nil")
	}
	if !record.ProductType.Valid() {
		return errors.NewValidationError("product_type", record.ProductType.String(), "unknown product type")
	}
	if !record.Date.Valid() {
		return errors.NewValidationError("date", record.Date.String(), "not a valid YYYYMMDD date")
	}
	return nil
}
