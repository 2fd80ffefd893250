package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain/search"
	"github.com/kailas-cloud/docdex/internal/domain/search/filter"
)

// --- Execute: hits ---

func TestExecute_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if q.IndexName != "docdex:notes:idx" {
			t.Errorf("unexpected index: %s", q.IndexName)
		}
		if q.Query != "hello" {
			t.Errorf("unexpected query: %s", q.Query)
		}
		if q.Limit != 5 {
			t.Errorf("unexpected limit: %d", q.Limit)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:    "docdex:notes:doc-1",
					Score:  0.9,
					Fields: map[string]string{"content": "hello world", "language": "go"},
				},
				{
					Key:    "docdex:notes:doc-2",
					Score:  0.5,
					Fields: map[string]string{"content": "hello again"},
				},
			},
		}, nil
	}

	req := mustRequest(t, "notes", search.WithQuery("hello"), search.WithLimit(5))
	resp, err := repo.Execute(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total() != 2 {
		t.Fatalf("expected total=2, got %d", resp.Total())
	}
	hits := resp.Hits()
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID() != "doc-1" {
		t.Fatalf("expected doc-1, got %s", hits[0].ID())
	}
	if hits[0].Score() != 0.9 {
		t.Fatalf("expected score 0.9, got %f", hits[0].Score())
	}
	if hits[0].Content() != "hello world" {
		t.Fatalf("unexpected content: %s", hits[0].Content())
	}
	if hits[0].Fields()["language"] != "go" {
		t.Fatalf("unexpected fields: %v", hits[0].Fields())
	}
	if _, ok := hits[0].Fields()["content"]; ok {
		t.Fatal("content must not stay in the fields map")
	}
}

func TestExecute_PassesFilters(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	expr := mustExpression(t, []filter.Condition{mustMatch(t, "language", "go")}, nil, nil)

	var gotFilters filter.Expression
	ms.searchFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		gotFilters = q.Filters
		return &db.SearchResult{}, nil
	}

	req := mustRequest(t, "notes", search.WithQuery("hello"), search.WithFilters(expr))
	if _, err := repo.Execute(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotFilters.Must()) != 1 || gotFilters.Must()[0].Key() != "language" {
		t.Fatalf("filters not passed through: %+v", gotFilters)
	}
}

func TestExecute_LargeTotal(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	// Engine totals count matches beyond the returned page; the response
	// carries them as int64 regardless of the driver's native width.
	const engineTotal = 2_147_483_900
	ms.searchFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: engineTotal}, nil
	}

	req := mustRequest(t, "notes", search.WithQuery("hello"))
	resp, err := repo.Execute(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total() != int64(engineTotal) {
		t.Fatalf("expected total=%d, got %d", int64(engineTotal), resp.Total())
	}
}

func TestExecute_SearchError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return nil, errors.New("index missing")
	}

	req := mustRequest(t, "notes", search.WithQuery("hello"))
	if _, err := repo.Execute(ctx, req); err == nil {
		t.Fatal("expected error")
	}
}

// --- Execute: aggregations ---

func TestExecute_AggregationsOnly(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		t.Fatal("hit search should be skipped without a query")
		return nil, nil
	}
	ms.aggregateFn = func(_ context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
		if q.IndexName != "docdex:notes:idx" {
			t.Errorf("unexpected index: %s", q.IndexName)
		}
		return &db.AggregateResult{
			Rows: map[string][]map[string]string{
				"by_language": {
					{"language": "go", "count": "7"},
					{"language": "py", "count": "3"},
				},
			},
		}, nil
	}

	set := mustSet(t, mustTerms(t, "by_language", "language", 10))
	req := mustRequest(t, "notes", search.WithAggregations(set))

	resp, err := repo.Execute(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Hits()) != 0 {
		t.Fatalf("expected no hits, got %d", len(resp.Hits()))
	}

	agg := resp.Aggregation("by_language")
	if agg == nil {
		t.Fatal("expected by_language aggregation")
	}
	if len(agg.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(agg.Buckets))
	}
	if agg.Buckets[0].Key != "go" || agg.Buckets[0].DocCount != 7 {
		t.Fatalf("unexpected bucket: %+v", agg.Buckets[0])
	}
}

func TestExecute_MetricRows(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.aggregateFn = func(_ context.Context, _ *db.AggregateQuery) (*db.AggregateResult, error) {
		return &db.AggregateResult{
			Rows: map[string][]map[string]string{
				"avg_priority": {{"avg_priority": "2.5"}},
			},
		}, nil
	}

	set := mustSet(t, mustAvg(t, "avg_priority", "priority"))
	req := mustRequest(t, "notes", search.WithAggregations(set))

	resp, err := repo.Execute(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg := resp.Aggregation("avg_priority")
	if agg == nil || agg.Value == nil {
		t.Fatalf("expected metric value, got %+v", agg)
	}
	if *agg.Value != 2.5 {
		t.Fatalf("expected 2.5, got %f", *agg.Value)
	}
	if agg.ValueAsString != "2.5" {
		t.Fatalf("expected string form 2.5, got %q", agg.ValueAsString)
	}
}

func TestExecute_RawAggregationTree(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	raw := `{
		"by_language": {
			"buckets": [
				{"key": "go", "doc_count": 7, "max_priority": {"value": 3.0}},
				{"key": "py", "doc_count": 3}
			]
		}
	}`
	ms.aggregateFn = func(_ context.Context, _ *db.AggregateQuery) (*db.AggregateResult, error) {
		return &db.AggregateResult{Raw: []byte(raw)}, nil
	}

	set := mustSet(t, mustTerms(t, "by_language", "language", 10))
	req := mustRequest(t, "notes", search.WithAggregations(set))

	resp, err := repo.Execute(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg := resp.Aggregation("by_language")
	if agg == nil {
		t.Fatal("expected by_language aggregation")
	}
	if len(agg.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(agg.Buckets))
	}
	sub := agg.Buckets[0].Sub["max_priority"]
	if sub == nil || sub.Value == nil || *sub.Value != 3.0 {
		t.Fatalf("expected nested max_priority=3.0, got %+v", sub)
	}
}

func TestExecute_QueryWithAggregations(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	searchCalled := false
	aggCalled := false
	ms.searchFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		searchCalled = true
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "docdex:notes:doc-1", Score: 1, Fields: map[string]string{"content": "x"}},
		}}, nil
	}
	ms.aggregateFn = func(_ context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
		aggCalled = true
		if q.Query != "hello" {
			t.Errorf("aggregate should carry the query, got %q", q.Query)
		}
		return &db.AggregateResult{}, nil
	}

	set := mustSet(t, mustTerms(t, "by_language", "language", 10))
	req := mustRequest(t, "notes", search.WithQuery("hello"), search.WithAggregations(set))

	resp, err := repo.Execute(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !searchCalled || !aggCalled {
		t.Fatalf("expected both phases, search=%v agg=%v", searchCalled, aggCalled)
	}
	if resp.Total() != 1 {
		t.Fatalf("expected total=1, got %d", resp.Total())
	}
}

func TestExecute_AggregateError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.aggregateFn = func(_ context.Context, _ *db.AggregateQuery) (*db.AggregateResult, error) {
		return nil, errors.New("unsupported reducer")
	}

	set := mustSet(t, mustTerms(t, "by_language", "language", 10))
	req := mustRequest(t, "notes", search.WithAggregations(set))

	if _, err := repo.Execute(ctx, req); err == nil {
		t.Fatal("expected error")
	}
}
