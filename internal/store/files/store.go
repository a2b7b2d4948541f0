// Package files provides a directory-backed version store. Records are
// laid out as {base}/{product_type}/{date}.json; the index of known
// keys is rebuilt from the directory tree on open.
package files

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/logging"
	"github.com/specfuse/specfuse/pkg/records"
	"github.com/specfuse/specfuse/pkg/store"
)

// Store persists reconciled records as JSON files under a base
// directory. Safe for concurrent use.
type Store struct {
	basePath string
	readOnly bool

	mu    sync.RWMutex
	index map[records.ProductType]map[records.Date]struct{}

	// writing tracks keys with a Put in flight. Writes are already
	// serialized by mu, so a hit here means a caller broke the
	// mutual-exclusion discipline.
	writing map[string]struct{}
}

// Option configures a Store.
type Option func(*Store)

// ReadOnly opens the store for queries only; Put fails with
// ErrReadOnly. Query commands use this to avoid creating directories
// as a side effect of a lookup.
func ReadOnly() Option {
	return func(s *Store) {
		s.readOnly = true
	}
}

// New opens a file store rooted at basePath, creating the directory if
// needed and rebuilding the index from the files already present.
func New(basePath string, opts ...Option) (*Store, error) {
	if basePath == "" {
		return nil, errors.NewConfigError("store", "base path is empty", nil)
	}

	s := &Store{
		basePath: basePath,
		index:    make(map[records.ProductType]map[records.Date]struct{}),
		writing:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !s.readOnly {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, errors.WrapIO("mkdir", basePath, err)
		}
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

var _ store.Store = (*Store)(nil)

// load rebuilds the index from the directory layout. Files that do not
// look like {product_type}/{date}.json are skipped with a log line.
func (s *Store) load() error {
	for _, productType := range records.ProductTypes() {
		dir := filepath.Join(s.basePath, productType.String())
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return errors.WrapIO("readdir", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			date, err := records.ParseDate(strings.TrimSuffix(entry.Name(), ".json"))
			if err != nil {
				logging.Warn().
					Str("file", filepath.Join(dir, entry.Name())).
					Msg("skipping file with non-date name")
				continue
			}
			s.indexAdd(productType, date)
		}
	}

	logging.Debug().
		Str("path", s.basePath).
		Int("records", s.lenLocked()).
		Msg("store index rebuilt")
	return nil
}

// Put implements store.Store. The record is written to a temp file in
// the target directory and renamed into place, so readers never see a
// partial file.
func (s *Store) Put(ctx context.Context, record *records.ReconciledRecord) error {
	if s.readOnly {
		return errors.ErrReadOnly
	}
	if err := validate(record); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := record.Key()

	s.mu.Lock()
	if _, inFlight := s.writing[key]; inFlight {
		s.mu.Unlock()
		return errors.NewVersionConflictError(record.ProductType.String(), record.Date.String())
	}
	s.writing[key] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.writing, key)
		s.mu.Unlock()
	}()

	data, err := record.MarshalIndented()
	if err != nil {
		return errors.WrapParse("json", key, err)
	}

	dir := filepath.Join(s.basePath, record.ProductType.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapIO("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, record.Date.String()+"_*.json.tmp")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.WrapIO("close", tmpPath, err)
	}

	path := s.recordPath(record.ProductType, record.Date)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.WrapIO("rename", path, err)
	}

	s.mu.Lock()
	s.indexAdd(record.ProductType, record.Date)
	s.mu.Unlock()

	logging.Debug().
		Str("product_type", record.ProductType.String()).
		Str("date", record.Date.String()).
		Int("fields", len(record.Fields)).
		Msg("record written")
	return nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, productType records.ProductType, date records.Date) (*records.ReconciledRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	_, ok := s.index[productType][date]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("record", productType.String()+"/"+date.String())
	}

	return s.read(productType, date)
}

// Latest implements store.Store.
func (s *Store) Latest(ctx context.Context, productType records.ProductType) (*records.ReconciledRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var latest records.Date
	for date := range s.index[productType] {
		if latest == "" || latest.Before(date) {
			latest = date
		}
	}
	s.mu.RUnlock()

	if latest == "" {
		return nil, errors.NewNotFoundError("record", productType.String()+"/latest")
	}
	return s.read(productType, latest)
}

// Dates implements store.Store.
func (s *Store) Dates(ctx context.Context, productType records.ProductType) ([]records.Date, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	dates := make([]records.Date, 0, len(s.index[productType]))
	for date := range s.index[productType] {
		dates = append(dates, date)
	}
	s.mu.RUnlock()

	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates, nil
}

// Search implements store.Store. Only the latest record per product
// type is searched.
func (s *Store) Search(ctx context.Context, query string) ([]store.Match, error) {
	var matches []store.Match
	for _, productType := range records.ProductTypes() {
		record, err := s.Latest(ctx, productType)
		if errors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if relevance := store.Relevance(record, query); relevance > 0 {
			matches = append(matches, store.Match{Record: record, Relevance: relevance})
		}
	}
	store.SortMatches(matches)
	return matches, nil
}

func (s *Store) read(productType records.ProductType, date records.Date) (*records.ReconciledRecord, error) {
	path := s.recordPath(productType, date)
	data, err := os.ReadFile(path) //nolint:gosec // path is built from validated key parts
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("record", productType.String()+"/"+date.String())
		}
		return nil, errors.WrapIO("read", path, err)
	}

	var record records.ReconciledRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return &record, nil
}

func (s *Store) recordPath(productType records.ProductType, date records.Date) string {
	return filepath.Join(s.basePath, productType.String(), date.String()+".json")
}

func (s *Store) indexAdd(productType records.ProductType, date records.Date) {
	dates, ok := s.index[productType]
	if !ok {
		dates = make(map[records.Date]struct{})
		s.index[productType] = dates
	}
	dates[date] = struct{}{}
}

func (s *Store) lenLocked() int {
	n := 0
	for _, dates := range s.index {
		n += len(dates)
	}
	return n
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
