package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
	"github.com/kailas-cloud/docdex/internal/domain/search"
	"github.com/kailas-cloud/docdex/internal/domain/search/filter"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn    func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	aggregateFn func(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
}

func (m *mockStore) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, q)
	}
	return &db.AggregateResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

func mustRequest(t *testing.T, collection string, opts ...search.Option) search.Request {
	t.Helper()
	req, err := search.NewRequest(collection, opts...)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func mustSet(t *testing.T, defs ...aggregation.Definition) *aggregation.Set {
	t.Helper()
	set, err := aggregation.FromDefinitions(defs...)
	if err != nil {
		t.Fatalf("FromDefinitions: %v", err)
	}
	return set
}

func mustTerms(t *testing.T, name, field string, size int) aggregation.Definition {
	t.Helper()
	d, err := aggregation.NewTerms(name, field, size)
	if err != nil {
		t.Fatalf("NewTerms: %v", err)
	}
	return d
}

func mustAvg(t *testing.T, name, field string) aggregation.Definition {
	t.Helper()
	d, err := aggregation.NewAvg(name, field)
	if err != nil {
		t.Fatalf("NewAvg: %v", err)
	}
	return d
}

func mustMatch(t *testing.T, key, value string) filter.Condition {
	t.Helper()
	c, err := filter.NewMatch(key, value)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return c
}

func mustExpression(t *testing.T, must, should, mustNot []filter.Condition) filter.Expression {
	t.Helper()
	e, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	return e
}
