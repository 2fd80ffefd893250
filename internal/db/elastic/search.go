package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain/search/filter"
)

// Search runs a full-text query via _search.
func (s *Store) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	body := buildSearchBody(q.Query, q.Filters)
	body["from"] = q.Offset
	body["size"] = q.Limit
	if len(q.ReturnFields) > 0 {
		body["_source"] = q.ReturnFields
	}

	raw, err := s.runSearch(ctx, q.IndexName, body)
	if err != nil {
		return nil, err
	}
	return parseSearchResult(raw), nil
}

// SearchList performs paginated retrieval without relevance concerns.
func (s *Store) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	body := map[string]any{
		"query": queryClause(query),
		"from":  offset,
		"size":  limit,
	}
	if len(fields) > 0 {
		body["_source"] = fields
	}

	raw, err := s.runSearch(ctx, index, body)
	if err != nil {
		return nil, err
	}
	return parseSearchResult(raw), nil
}

// SearchCount returns the match count via a size-0 search.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	body := map[string]any{
		"query":            queryClause(query),
		"size":             0,
		"track_total_hits": true,
	}

	raw, err := s.runSearch(ctx, index, body)
	if err != nil {
		return 0, err
	}
	return int(gjson.GetBytes(raw, "hits.total.value").Int()), nil
}

func (s *Store) runSearch(ctx context.Context, index string, body map[string]any) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(indexName(index)),
		s.es.Search.WithBody(strings.NewReader(string(encoded))),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, decodeError(db.OpSearch, res)
	}

	raw, err := readBody(res)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return raw, nil
}

// --- Query building ---

// buildSearchBody combines a text query and a pre-filter expression into a
// bool query body.
func buildSearchBody(query string, filters filter.Expression) map[string]any {
	boolClause := make(map[string]any)

	var must []any
	if query != "" {
		must = append(must, map[string]any{
			"query_string": map[string]any{
				"query":            query,
				"default_field":    "content",
				"default_operator": "AND",
			},
		})
	}
	for _, cond := range filters.Must() {
		must = append(must, conditionClause(cond))
	}
	if len(must) > 0 {
		boolClause["must"] = must
	}

	if should := filters.Should(); len(should) > 0 {
		clauses := make([]any, 0, len(should))
		for _, cond := range should {
			clauses = append(clauses, conditionClause(cond))
		}
		boolClause["should"] = clauses
		boolClause["minimum_should_match"] = 1
	}

	if mustNot := filters.MustNot(); len(mustNot) > 0 {
		clauses := make([]any, 0, len(mustNot))
		for _, cond := range mustNot {
			clauses = append(clauses, conditionClause(cond))
		}
		boolClause["must_not"] = clauses
	}

	if len(boolClause) == 0 {
		return map[string]any{"query": map[string]any{"match_all": map[string]any{}}}
	}
	return map[string]any{"query": map[string]any{"bool": boolClause}}
}

func queryClause(query string) map[string]any {
	if query == "" || query == "*" {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{
		"query_string": map[string]any{
			"query":            query,
			"default_field":    "content",
			"default_operator": "AND",
		},
	}
}

func conditionClause(cond filter.Condition) map[string]any {
	if cond.IsMatch() {
		return map[string]any{
			"term": map[string]any{cond.Key(): cond.Match()},
		}
	}

	r := cond.Range()
	bounds := make(map[string]any)
	if r.GT() != nil {
		bounds["gt"] = *r.GT()
	}
	if r.GTE() != nil {
		bounds["gte"] = *r.GTE()
	}
	if r.LT() != nil {
		bounds["lt"] = *r.LT()
	}
	if r.LTE() != nil {
		bounds["lte"] = *r.LTE()
	}
	return map[string]any{
		"range": map[string]any{cond.Key(): bounds},
	}
}

// --- Result parsing ---

func parseSearchResult(raw []byte) *db.SearchResult {
	result := &db.SearchResult{
		Total: int(gjson.GetBytes(raw, "hits.total.value").Int()),
	}

	gjson.GetBytes(raw, "hits.hits").ForEach(func(_, hit gjson.Result) bool {
		result.Entries = append(result.Entries, db.SearchEntry{
			Key:    hit.Get("_id").String(),
			Score:  hit.Get("_score").Float(),
			Fields: sourceToFields(hit.Get("_source")),
		})
		return true
	})

	return result
}
