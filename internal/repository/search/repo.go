package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
	"github.com/kailas-cloud/docdex/internal/domain/search"
	"github.com/kailas-cloud/docdex/internal/metrics"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Execute runs a search request against the store. Requests carrying only
// aggregations skip the hit phase.
func (r *Repo) Execute(ctx context.Context, req search.Request) (search.Response, error) {
	indexName := fmt.Sprintf("%s%s:idx", domain.KeyPrefix, req.Collection())

	var hits []search.Hit
	var total int64

	if req.Query() != "" {
		q := &db.TextQuery{
			IndexName: indexName,
			Query:     req.Query(),
			Filters:   req.Filters(),
			Offset:    req.Offset(),
			Limit:     req.Limit(),
		}
		start := time.Now()
		sr, err := r.store.Search(ctx, q)
		metrics.ObserveEngineQuery("search", time.Since(start).Seconds(), err)
		if err != nil {
			return search.Response{}, fmt.Errorf("search %s: %w", req.Collection(), err)
		}
		hits = parseHits(sr, req.Collection())
		if sr != nil {
			total = int64(sr.Total)
		}
	}

	var aggs map[string]*aggregation.Result
	if req.HasAggregations() {
		q := &db.AggregateQuery{
			IndexName: indexName,
			Query:     req.Query(),
			Filters:   req.Filters(),
			Aggs:      req.Aggregations(),
		}
		start := time.Now()
		ar, err := r.store.Aggregate(ctx, q)
		metrics.ObserveEngineQuery("aggregate", time.Since(start).Seconds(), err)
		if err != nil {
			return search.Response{}, fmt.Errorf("aggregate %s: %w", req.Collection(), err)
		}
		aggs, err = parseAggregations(req.Aggregations(), ar)
		if err != nil {
			return search.Response{}, fmt.Errorf("aggregate %s: %w", req.Collection(), err)
		}
	}

	return search.NewResponse(hits, total, aggs), nil
}

// parseHits converts db search entries into domain hits.
func parseHits(sr *db.SearchResult, collection string) []search.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := fmt.Sprintf("%s%s:", domain.KeyPrefix, collection)
	hits := make([]search.Hit, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		docID := strings.TrimPrefix(entry.Key, prefix)

		var content string
		fields := make(map[string]string, len(entry.Fields))
		for k, v := range entry.Fields {
			if k == "content" {
				content = v
				continue
			}
			fields[k] = v
		}
		hits = append(hits, search.NewHit(docID, entry.Score, content, fields))
	}

	return hits
}

// parseAggregations converts a raw store aggregation result into parsed
// domain results. JSON-tree engines deliver Raw and go through ParseTree;
// tabular engines deliver Rows which are folded per definition.
func parseAggregations(set *aggregation.Set, ar *db.AggregateResult) (map[string]*aggregation.Result, error) {
	if ar == nil {
		return nil, nil
	}
	if len(ar.Raw) > 0 {
		return aggregation.ParseTree(ar.Raw)
	}
	return foldRows(set, ar.Rows), nil
}

// foldRows rebuilds aggregation results from tabular rows keyed by
// aggregation name.
func foldRows(set *aggregation.Set, rows map[string][]map[string]string) map[string]*aggregation.Result {
	if len(rows) == 0 {
		return nil
	}

	out := make(map[string]*aggregation.Result, set.Len())
	for _, def := range set.Definitions() {
		defRows, ok := rows[def.Name()]
		if !ok {
			continue
		}

		res := &aggregation.Result{}
		if def.Kind() == aggregation.Terms {
			for _, row := range defRows {
				count, _ := strconv.ParseInt(row["count"], 10, 64)
				res.Buckets = append(res.Buckets, aggregation.Bucket{
					Key:      row[def.Field()],
					DocCount: count,
				})
			}
		} else if len(defRows) > 0 {
			raw := defRows[0][def.Name()]
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				res.Value = &f
			}
			res.ValueAsString = raw
		}
		out[def.Name()] = res
	}

	return out
}
