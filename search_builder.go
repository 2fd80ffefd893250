package docdex

import (
	"context"
	"fmt"
	"strconv"
)

// Hit is a typed search result.
type Hit[T any] struct {
	Item  T
	Score float64
}

// TypedResponse carries typed hits plus any aggregation results.
type TypedResponse[T any] struct {
	Hits         []Hit[T]
	Total        int64
	Aggregations map[string]*AggregationResult
}

// SearchBuilder is a fluent builder for typed search queries. Methods that
// can fail record the first error; Do returns it before issuing any request.
type SearchBuilder[T any] struct {
	idx *TypedIndex[T]

	query   string
	filters []FilterCondition
	limit   int
	offset  int
	aggs    *Aggregations
	err     error
}

// Query sets the full-text query.
func (b *SearchBuilder[T]) Query(q string) *SearchBuilder[T] {
	b.query = q
	return b
}

// Where adds a tag filter condition (exact match).
func (b *SearchBuilder[T]) Where(key, value string) *SearchBuilder[T] {
	b.filters = append(b.filters, FilterCondition{Key: key, Match: value})
	return b
}

// WhereRange adds a numeric range filter condition.
func (b *SearchBuilder[T]) WhereRange(key string, r RangeFilter) *SearchBuilder[T] {
	b.filters = append(b.filters, FilterCondition{Key: key, Range: &r})
	return b
}

// Limit sets the maximum number of results.
func (b *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	b.limit = n
	return b
}

// Offset sets the result page offset.
func (b *SearchBuilder[T]) Offset(n int) *SearchBuilder[T] {
	b.offset = n
	return b
}

// Agg attaches an aggregation to run alongside the query. A reserved or
// duplicate name is recorded and returned by Do.
func (b *SearchBuilder[T]) Agg(agg Aggregation) *SearchBuilder[T] {
	if b.err != nil {
		return b
	}
	if b.aggs == nil {
		b.aggs = NewAggregations()
	}
	b.err = b.aggs.Add(agg)
	return b
}

// Do executes the search and returns typed results.
func (b *SearchBuilder[T]) Do(ctx context.Context) (TypedResponse[T], error) {
	if b.err != nil {
		return TypedResponse[T]{}, fmt.Errorf("search: %w", b.err)
	}

	opts := &SearchOptions{
		Limit:        b.limit,
		Offset:       b.offset,
		Aggregations: b.aggs,
	}
	if len(b.filters) > 0 {
		opts.Filters = FilterExpression{Must: b.filters}
	}

	var (
		resp SearchResponse
		err  error
	)
	if b.query == "" && b.aggs.Len() > 0 {
		var aggs map[string]*AggregationResult
		aggs, err = b.idx.client.Search(b.idx.name).Aggregate(ctx, b.aggs, opts)
		resp = SearchResponse{Aggregations: aggs}
	} else {
		resp, err = b.idx.client.Search(b.idx.name).Query(ctx, b.query, opts)
	}
	if err != nil {
		return TypedResponse[T]{}, fmt.Errorf("search: %w", err)
	}

	return TypedResponse[T]{
		Hits:         b.toHits(resp.Hits),
		Total:        resp.Total,
		Aggregations: resp.Aggregations,
	}, nil
}

func (b *SearchBuilder[T]) toHits(results []SearchResult) []Hit[T] {
	hits := make([]Hit[T], len(results))
	for i, r := range results {
		doc := Document{
			ID:       r.ID,
			Content:  r.Content,
			Tags:     make(map[string]string),
			Numerics: make(map[string]float64),
		}
		for k, v := range r.Fields {
			if f, perr := strconv.ParseFloat(v, 64); perr == nil {
				doc.Numerics[k] = f
			} else {
				doc.Tags[k] = v
			}
		}
		item, ok := b.idx.meta.fromDocument(doc).(T)
		if !ok {
			continue
		}
		hits[i] = Hit[T]{Item: item, Score: r.Score}
	}
	return hits
}
