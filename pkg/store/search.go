package store

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/specfuse/specfuse/pkg/records"
)

var fold = cases.Fold()

// Relevance counts case-insensitive occurrences of query across a
// record's field paths and string values. A zero count means the
// record does not match.
func Relevance(record *records.ReconciledRecord, query string) int {
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	total := 0
	for path, value := range record.Fields {
		total += strings.Count(fold.String(path), q)
		total += countValue(value, q)
	}
	return total
}

func countValue(value any, query string) int {
	switch v := value.(type) {
	case string:
		return strings.Count(fold.String(v), query)
	case []string:
		n := 0
		for _, s := range v {
			n += strings.Count(fold.String(s), query)
		}
		return n
	case []any:
		n := 0
		for _, e := range v {
			n += countValue(e, query)
		}
		return n
	case map[string]any:
		n := 0
		for k, e := range v {
			n += strings.Count(fold.String(k), query)
			n += countValue(e, query)
		}
		return n
	default:
		return 0
	}
}

// SortMatches orders matches by descending relevance, then product
// type, then date.
func SortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Relevance != matches[j].Relevance {
			return matches[i].Relevance > matches[j].Relevance
		}
		if matches[i].Record.ProductType != matches[j].Record.ProductType {
			return matches[i].Record.ProductType < matches[j].Record.ProductType
		}
		return matches[i].Record.Date < matches[j].Record.Date
	})
}
