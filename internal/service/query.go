package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/repository"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Filter keeps records whose value at any of Fields equals Value. A field
// holding an array matches when the array contains Value. Fields are dotted
// JSON paths such as "from._id".
type Filter struct {
	Fields []string
	Value  string
}

// Query selects one page of a collection.
type Query struct {
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder domain.SortOrder
	Filters   []Filter
}

// Where adds a filter unless value is empty.
func (q Query) Where(value string, fields ...string) Query {
	if strings.TrimSpace(value) == "" {
		return q
	}
	q.Filters = append(q.Filters, Filter{Fields: fields, Value: strings.TrimSpace(value)})
	return q
}

func (q Query) normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if q.SortOrder != domain.SortAsc {
		q.SortOrder = domain.SortDesc
	}
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))
	return q
}

// Result is one page of a collection.
type Result[T any] struct {
	Items []T
	Page  domain.Page
}

type record[T any] struct {
	item   T
	fields map[string]any
}

// find loads collection, applies q and returns the requested page. Search
// matches case-insensitively against searchFields.
func find[T any](ctx context.Context, docs repository.DocumentRepository, collection string, q Query, searchFields ...string) (*Result[T], error) {
	q = q.normalize()
	bodies, err := docs.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	records := make([]record[T], 0, len(bodies))
	for _, body := range bodies {
		var rec record[T]
		if err := json.Unmarshal(body, &rec.item); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		if err := json.Unmarshal(body, &rec.fields); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		if matches(rec.fields, q, searchFields) {
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		c := compare(lookup(records[i].fields, q.SortBy), lookup(records[j].fields, q.SortBy))
		if q.SortOrder == domain.SortAsc {
			return c < 0
		}
		return c > 0
	})

	total := len(records)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := min(start+q.Limit, total)

	items := make([]T, 0, end-start)
	for _, rec := range records[start:end] {
		items = append(items, rec.item)
	}
	return &Result[T]{
		Items: items,
		Page: domain.Page{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: (total + q.Limit - 1) / q.Limit,
		},
	}, nil
}

func matches(fields map[string]any, q Query, searchFields []string) bool {
	for _, f := range q.Filters {
		if !matchesFilter(fields, f) {
			return false
		}
	}
	if q.Search == "" {
		return true
	}
	for _, name := range searchFields {
		if s, ok := lookup(fields, name).(string); ok && strings.Contains(strings.ToLower(s), q.Search) {
			return true
		}
	}
	return false
}

func matchesFilter(fields map[string]any, f Filter) bool {
	for _, name := range f.Fields {
		switch v := lookup(fields, name).(type) {
		case []any:
			for _, el := range v {
				if fmt.Sprint(el) == f.Value {
					return true
				}
			}
		case nil:
		default:
			if fmt.Sprint(v) == f.Value {
				return true
			}
		}
	}
	return false
}

func lookup(fields map[string]any, path string) any {
	var cur any = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// compare orders nil before everything else, numbers numerically, and any
// other value by its string form. Timestamps are stored as RFC3339 UTC so
// they order as strings.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

func getDoc[T any](ctx context.Context, docs repository.DocumentRepository, collection, id string) (*T, error) {
	body, err := docs.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &v, nil
}

func putDoc(ctx context.Context, docs repository.DocumentRepository, collection, id string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return docs.Put(ctx, collection, id, body)
}
