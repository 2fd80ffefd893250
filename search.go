package docdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
	domsearch "github.com/kailas-cloud/docdex/internal/domain/search"
	"github.com/kailas-cloud/docdex/internal/domain/search/filter"
)

// SearchService executes search queries against a single collection.
type SearchService struct {
	collection string
	svc        searchUseCase
	obs        *observer
}

// SearchOptions configures a search query.
type SearchOptions struct {
	Filters      FilterExpression
	Limit        int
	Offset       int
	Aggregations *Aggregations
}

// Query executes a full-text search. Aggregation results, if requested, are
// returned on the response keyed by aggregation name.
func (s *SearchService) Query(
	ctx context.Context, query string, opts *SearchOptions,
) (_ SearchResponse, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.query", start, err) }()

	req, err := buildRequest(s.collection, query, opts)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("query: %w", err)
	}

	resp, err := s.svc.Search(ctx, req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("query: %w", err)
	}
	return fromSearchResponse(resp), nil
}

// Aggregate runs aggregations without a query; no hits are returned.
func (s *SearchService) Aggregate(
	ctx context.Context, aggs *Aggregations, opts ...*SearchOptions,
) (_ map[string]*AggregationResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.aggregate", start, err) }()

	so := &SearchOptions{}
	if len(opts) > 0 && opts[0] != nil {
		*so = *opts[0]
	}
	so.Aggregations = aggs

	req, err := buildRequest(s.collection, "", so)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	resp, err := s.svc.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	return fromAggregations(resp.Aggregations()), nil
}

// MultiQuery is one entry of a multi-collection search.
type MultiQuery struct {
	Collection string
	Query      string
	Options    *SearchOptions
}

// MultiSearch runs the queries concurrently and returns responses in request
// order. The first failing query fails the whole call.
func (c *Client) MultiSearch(
	ctx context.Context, queries []MultiQuery,
) (_ []SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search.multi", start, err) }()

	reqs, err := buildRequests(queries)
	if err != nil {
		return nil, fmt.Errorf("multi search: %w", err)
	}

	resps, err := c.searchSvc.MultiSearch(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("multi search: %w", err)
	}
	out := make([]SearchResponse, len(resps))
	for i, r := range resps {
		out[i] = fromSearchResponse(r)
	}
	return out, nil
}

// MultiSearchFused runs the queries concurrently and fuses all hit lists
// into a single ranking via reciprocal rank fusion. Limit truncates the
// fused list (0 = no truncation).
func (c *Client) MultiSearchFused(
	ctx context.Context, queries []MultiQuery, limit int,
) (_ []SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search.multi_fused", start, err) }()

	reqs, err := buildRequests(queries)
	if err != nil {
		return nil, fmt.Errorf("fused search: %w", err)
	}

	hits, err := c.searchSvc.MultiSearchFused(ctx, reqs, limit)
	if err != nil {
		return nil, fmt.Errorf("fused search: %w", err)
	}
	out := make([]SearchResult, len(hits))
	for i, h := range hits {
		out[i] = fromHit(h)
	}
	return out, nil
}

func buildRequests(queries []MultiQuery) ([]domsearch.Request, error) {
	reqs := make([]domsearch.Request, len(queries))
	for i, q := range queries {
		req, err := buildRequest(q.Collection, q.Query, q.Options)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		reqs[i] = req
	}
	return reqs, nil
}

func buildRequest(collection, query string, opts *SearchOptions) (domsearch.Request, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	reqOpts := []domsearch.Option{}
	if query != "" {
		reqOpts = append(reqOpts, domsearch.WithQuery(query))
	}

	filters, err := toInternalFilters(opts.Filters)
	if err != nil {
		return domsearch.Request{}, err
	}
	if !filters.IsEmpty() {
		reqOpts = append(reqOpts, domsearch.WithFilters(filters))
	}

	if opts.Limit > 0 {
		reqOpts = append(reqOpts, domsearch.WithLimit(opts.Limit))
	}
	if opts.Offset > 0 {
		reqOpts = append(reqOpts, domsearch.WithOffset(opts.Offset))
	}

	set, err := opts.Aggregations.toSet()
	if err != nil {
		return domsearch.Request{}, err
	}
	if set != nil {
		reqOpts = append(reqOpts, domsearch.WithAggregations(set))
	}

	return domsearch.NewRequest(collection, reqOpts...)
}

func toInternalFilters(fe FilterExpression) (filter.Expression, error) {
	must, err := toConditions(fe.Must)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter must: %w", err)
	}
	should, err := toConditions(fe.Should)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter should: %w", err)
	}
	mustNot, err := toConditions(fe.MustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter must_not: %w", err)
	}
	expr, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter expression: %w", err)
	}
	return expr, nil
}

func toConditions(conds []FilterCondition) ([]filter.Condition, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, len(conds))
	for i, c := range conds {
		var err error
		if c.Range != nil {
			r, rerr := filter.NewRangeBounds(
				c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE,
			)
			if rerr != nil {
				return nil, fmt.Errorf("filter %q: %w", c.Key, rerr)
			}
			out[i], err = filter.NewRange(c.Key, r)
		} else {
			out[i], err = filter.NewMatch(c.Key, c.Match)
		}
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", c.Key, err)
		}
	}
	return out, nil
}

func fromSearchResponse(r domsearch.Response) SearchResponse {
	hits := make([]SearchResult, len(r.Hits()))
	for i, h := range r.Hits() {
		hits[i] = fromHit(h)
	}
	return SearchResponse{
		Hits:         hits,
		Total:        r.Total(),
		Aggregations: fromAggregations(r.Aggregations()),
	}
}

func fromHit(h domsearch.Hit) SearchResult {
	return SearchResult{
		ID:      h.ID(),
		Score:   h.Score(),
		Content: h.Content(),
		Fields:  h.Fields(),
	}
}

func fromAggregations(aggs map[string]*aggregation.Result) map[string]*AggregationResult {
	if len(aggs) == 0 {
		return nil
	}
	out := make(map[string]*AggregationResult, len(aggs))
	for name, r := range aggs {
		out[name] = fromAggResult(r)
	}
	return out
}

func fromAggResult(r *aggregation.Result) *AggregationResult {
	if r == nil {
		return nil
	}
	out := &AggregationResult{
		Value:         r.Value,
		ValueAsString: r.ValueAsString,
		DocCount:      r.DocCount,
		Sub:           fromAggregations(r.Sub),
	}
	if len(r.Buckets) > 0 {
		out.Buckets = make([]AggregationBucket, len(r.Buckets))
		for i, b := range r.Buckets {
			out.Buckets[i] = AggregationBucket{
				Key:      b.Key,
				DocCount: b.DocCount,
				Sub:      fromAggregations(b.Sub),
			}
		}
	}
	return out
}
