package reconcile

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/records"
)

// Strategy decides which of several conflicting field values survives.
// Implementations must be deterministic: the same values must always
// produce the same winner regardless of input ordering.
type Strategy interface {
	// Name returns the strategy identifier for logging and reporting.
	Name() string

	// ResolveConflict picks the winning value for a field from the
	// distinct candidate values, keyed by source. It returns the value,
	// the winning source, and a short human-readable reason.
	ResolveConflict(field string, values map[records.SourceID]any) (any, records.SourceID, string, error)
}

// SourceOrderStrategy resolves conflicts by a fixed source priority
// order. Higher priority wins; equal priorities fall back to
// configuration order, and as a last resort to the lexicographically
// smaller encoded value.
type SourceOrderStrategy struct {
	ranks map[records.SourceID]rankEntry
}

type rankEntry struct {
	priority int
	order    int
}

// NewSourceOrderStrategy builds a strategy from the given ranks. Slice
// position is the configuration order used to break priority ties.
func NewSourceOrderStrategy(ranks []Rank) *SourceOrderStrategy {
	m := make(map[records.SourceID]rankEntry, len(ranks))
	for i, r := range ranks {
		if _, ok := m[r.Source]; ok {
			continue
		}
		m[r.Source] = rankEntry{priority: r.Priority, order: i}
	}
	return &SourceOrderStrategy{ranks: m}
}

// Name implements Strategy.
func (s *SourceOrderStrategy) Name() string {
	return "source-order"
}

// ResolveConflict implements Strategy.
func (s *SourceOrderStrategy) ResolveConflict(field string, values map[records.SourceID]any) (any, records.SourceID, string, error) {
	if len(values) == 0 {
		return nil, "", "", errors.NewValidationError(field, nil, "no values to resolve")
	}

	sources := make([]records.SourceID, 0, len(values))
	for id := range values {
		sources = append(sources, id)
	}
	s.Sort(sources)

	winner := sources[0]
	if len(sources) > 1 {
		next := sources[1]
		wr, nr := s.rank(winner), s.rank(next)
		if wr.priority == nr.priority && wr.order == nr.order {
			// No usable ordering between the top two sources. Fall back
			// to the encoded values, and refuse the field entirely when
			// even those cannot separate the candidates.
			we, ne := encodeValue(values[winner]), encodeValue(values[next])
			switch bytes.Compare(we, ne) {
			case -1:
				return values[winner], winner, "lexicographic value tie-break", nil
			case 1:
				return values[next], next, "lexicographic value tie-break", nil
			default:
				ids := make([]string, 0, len(sources))
				for _, id := range sources {
					ids = append(ids, id.String())
				}
				return nil, "", "", errors.NewAmbiguousReconciliationError(field, ids)
			}
		}
	}

	reason := fmt.Sprintf("source %s has highest priority", winner)
	return values[winner], winner, reason, nil
}

// Sort orders source IDs by descending priority, then configuration
// order, then lexicographically. Unranked sources sort after every
// ranked source.
func (s *SourceOrderStrategy) Sort(sources []records.SourceID) {
	sort.SliceStable(sources, func(i, j int) bool {
		ri, rj := s.rank(sources[i]), s.rank(sources[j])
		if ri.priority != rj.priority {
			return ri.priority > rj.priority
		}
		if ri.order != rj.order {
			return ri.order < rj.order
		}
		return sources[i] < sources[j]
	})
}

func (s *SourceOrderStrategy) rank(id records.SourceID) rankEntry {
	if r, ok := s.ranks[id]; ok {
		return r
	}
	// Unranked sources all share the lowest priority and an
	// out-of-range order slot, so they sort after ranked sources and
	// among themselves by ID.
	return rankEntry{priority: -1, order: len(s.ranks)}
}
