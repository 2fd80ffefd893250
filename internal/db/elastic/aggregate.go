package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
)

// Aggregate runs the query's aggregation set via a size-0 _search and returns
// the raw aggregations subtree for downstream parsing.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Aggs == nil || q.Aggs.IsEmpty() {
		return nil, fmt.Errorf("at least one aggregation is required")
	}

	body := buildSearchBody(q.Query, q.Filters)
	body["size"] = 0
	body["aggs"] = buildAggsBody(q.Aggs)

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(indexName(q.IndexName)),
		s.es.Search.WithBody(strings.NewReader(string(encoded))),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, decodeError(db.OpAggregate, res)
	}

	raw, err := readBody(res)
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	aggs := gjson.GetBytes(raw, "aggregations")
	if !aggs.Exists() {
		return &db.AggregateResult{Raw: json.RawMessage("{}")}, nil
	}
	return &db.AggregateResult{Raw: json.RawMessage(aggs.Raw)}, nil
}

// buildAggsBody translates the aggregation set into the aggs section of a
// search body.
func buildAggsBody(set *aggregation.Set) map[string]any {
	aggs := make(map[string]any, set.Len())
	for def := range set.All() {
		aggs[def.Name()] = aggClause(def)
	}
	return aggs
}

func aggClause(def aggregation.Definition) map[string]any {
	switch def.Kind() {
	case aggregation.Terms:
		return map[string]any{
			"terms": map[string]any{
				"field": def.Field(),
				"size":  def.Size(),
			},
		}
	default:
		return map[string]any{
			string(def.Kind()): map[string]any{
				"field": def.Field(),
			},
		}
	}
}
