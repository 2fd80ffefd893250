package search

import (
	"fmt"

	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
	"github.com/kailas-cloud/docdex/internal/domain/search/filter"
)

const (
	// DefaultLimit is the result page size when none is given.
	DefaultLimit = 10
	// MaxLimit bounds the result page size.
	MaxLimit = 1000
)

// Request is a validated search request against a single collection.
// A query string is optional when the request carries aggregations.
type Request struct {
	collection string
	query      string
	filters    filter.Expression
	limit      int
	offset     int
	aggs       *aggregation.Set
}

// Option configures a Request.
type Option func(*Request)

// WithQuery sets the full-text query string.
func WithQuery(query string) Option {
	return func(r *Request) { r.query = query }
}

// WithFilters sets the pre-filter expression.
func WithFilters(f filter.Expression) Option {
	return func(r *Request) { r.filters = f }
}

// WithLimit sets the result page size.
func WithLimit(limit int) Option {
	return func(r *Request) { r.limit = limit }
}

// WithOffset sets the result page offset.
func WithOffset(offset int) Option {
	return func(r *Request) { r.offset = offset }
}

// WithAggregations attaches an aggregation set.
func WithAggregations(aggs *aggregation.Set) Option {
	return func(r *Request) { r.aggs = aggs }
}

// NewRequest validates and creates a Request.
func NewRequest(collection string, opts ...Option) (Request, error) {
	r := Request{collection: collection, limit: DefaultLimit}
	for _, opt := range opts {
		opt(&r)
	}
	if r.collection == "" {
		return Request{}, fmt.Errorf("collection name is required")
	}
	if r.query == "" && (r.aggs == nil || r.aggs.IsEmpty()) {
		return Request{}, fmt.Errorf("query is required when no aggregations are given")
	}
	if r.limit <= 0 || r.limit > MaxLimit {
		return Request{}, fmt.Errorf("limit must be in [1, %d], got %d", MaxLimit, r.limit)
	}
	if r.offset < 0 {
		return Request{}, fmt.Errorf("offset must be non-negative, got %d", r.offset)
	}
	return r, nil
}

// Collection returns the target collection name.
func (r Request) Collection() string { return r.collection }

// Query returns the full-text query string.
func (r Request) Query() string { return r.query }

// Filters returns the pre-filter expression.
func (r Request) Filters() filter.Expression { return r.filters }

// Limit returns the result page size.
func (r Request) Limit() int { return r.limit }

// Offset returns the result page offset.
func (r Request) Offset() int { return r.offset }

// Aggregations returns the attached aggregation set, which may be nil.
func (r Request) Aggregations() *aggregation.Set { return r.aggs }

// HasAggregations reports whether the request carries at least one aggregation.
func (r Request) HasAggregations() bool { return r.aggs != nil && !r.aggs.IsEmpty() }
