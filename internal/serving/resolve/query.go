package resolve

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/vietddude/goodnews/internal/core/domain"
)

const (
	DefaultLimit    = 20
	MaxLimit        = 100
	CategoryAll     = "all"
	FallbackWarning = "fallback data in use"
)

// Query is the shape of one read request.
type Query struct {
	Category     string
	Limit        int
	ForceRefresh bool
	UseStore     bool
	CuratedOnly  bool
}

// DefaultQuery returns the query used when no parameters are given.
func DefaultQuery() Query {
	return Query{Category: CategoryAll, Limit: DefaultLimit, UseStore: true}
}

// ValidationError reports a malformed read request.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ParseQuery builds a Query from URL parameters.
func ParseQuery(values url.Values) (Query, error) {
	q := DefaultQuery()

	if c := strings.TrimSpace(values.Get("category")); c != "" {
		q.Category = c
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, &ValidationError{Field: "limit", Value: raw, Reason: "must be an integer"}
		}
		if n <= 0 {
			return Query{}, &ValidationError{Field: "limit", Value: raw, Reason: "must be positive"}
		}
		if n > MaxLimit {
			return Query{}, &ValidationError{Field: "limit", Value: raw, Reason: fmt.Sprintf("must be at most %d", MaxLimit)}
		}
		q.Limit = n
	}

	var err error
	if q.ForceRefresh, err = parseBool(values, "forceRefresh", q.ForceRefresh); err != nil {
		return Query{}, err
	}
	if q.UseStore, err = parseBool(values, "useStore", q.UseStore); err != nil {
		return Query{}, err
	}
	if q.CuratedOnly, err = parseBool(values, "curatedOnly", q.CuratedOnly); err != nil {
		return Query{}, err
	}
	return q, nil
}

func parseBool(values url.Values, field string, def bool) (bool, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ValidationError{Field: field, Value: raw, Reason: "must be a boolean"}
	}
	return b, nil
}

func (q Query) categoryFilter() string {
	if q.Category == "" {
		return CategoryAll
	}
	return q.Category
}

func (q Query) matches(rec domain.ClassifiedRecord) bool {
	if q.CuratedOnly && !rec.IsCurated {
		return false
	}
	c := q.categoryFilter()
	return c == CategoryAll || rec.Category == c
}

// Filter applies the category and curated filters, then truncates to Limit.
func (q Query) Filter(records []domain.ClassifiedRecord) []domain.ClassifiedRecord {
	out := make([]domain.ClassifiedRecord, 0, min(len(records), max(q.Limit, 0)))
	for _, rec := range records {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		if q.matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}
