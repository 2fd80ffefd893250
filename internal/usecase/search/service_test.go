package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
	domcol "github.com/kailas-cloud/docdex/internal/domain/collection"
	"github.com/kailas-cloud/docdex/internal/domain/collection/field"
	"github.com/kailas-cloud/docdex/internal/domain/search"
	"github.com/kailas-cloud/docdex/internal/domain/search/filter"
)

// --- Mocks ---

type mockRepo struct {
	executeFn func(ctx context.Context, req search.Request) (search.Response, error)
	calls     atomic.Int64
}

func (m *mockRepo) Execute(ctx context.Context, req search.Request) (search.Response, error) {
	m.calls.Add(1)
	if m.executeFn != nil {
		return m.executeFn(ctx, req)
	}
	return search.Response{}, nil
}

type mockColls struct {
	col domcol.Collection
	err error
}

func (m *mockColls) Get(_ context.Context, _ string) (domcol.Collection, error) {
	return m.col, m.err
}

func makeField(t *testing.T, name string, ft field.Type) field.Field {
	t.Helper()
	f, err := field.New(name, ft)
	if err != nil {
		t.Fatalf("field.New: %v", err)
	}
	return f
}

func testCollection(t *testing.T) domcol.Collection {
	t.Helper()
	col, err := domcol.New("notes", []field.Field{
		makeField(t, "language", field.Tag),
		makeField(t, "priority", field.Numeric),
	})
	if err != nil {
		t.Fatalf("domcol.New: %v", err)
	}
	return col
}

func newService(t *testing.T) (*Service, *mockRepo, *mockColls) {
	t.Helper()
	repo := &mockRepo{}
	colls := &mockColls{col: testCollection(t)}
	return New(repo, colls), repo, colls
}

func mustRequest(t *testing.T, collection string, opts ...search.Option) search.Request {
	t.Helper()
	req, err := search.NewRequest(collection, opts...)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func mustMatch(t *testing.T, key, value string) filter.Condition {
	t.Helper()
	c, err := filter.NewMatch(key, value)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return c
}

func mustRange(t *testing.T, key string, gte, lte float64) filter.Condition {
	t.Helper()
	r, err := filter.NewRangeBounds(nil, &gte, nil, &lte)
	if err != nil {
		t.Fatalf("NewRangeBounds: %v", err)
	}
	c, err := filter.NewRange(key, r)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	return c
}

func mustExpression(t *testing.T, must []filter.Condition) filter.Expression {
	t.Helper()
	e, err := filter.NewExpression(must, nil, nil)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	return e
}

func mustSet(t *testing.T, defs ...aggregation.Definition) *aggregation.Set {
	t.Helper()
	set, err := aggregation.FromDefinitions(defs...)
	if err != nil {
		t.Fatalf("FromDefinitions: %v", err)
	}
	return set
}

// --- Search ---

func TestSearch_HappyPath(t *testing.T) {
	svc, repo, _ := newService(t)

	repo.executeFn = func(_ context.Context, req search.Request) (search.Response, error) {
		if req.Query() != "hello" {
			t.Errorf("unexpected query: %s", req.Query())
		}
		hits := []search.Hit{search.NewHit("doc-1", 0.9, "hello world", nil)}
		return search.NewResponse(hits, 1, nil), nil
	}

	req := mustRequest(t, "notes", search.WithQuery("hello"))
	resp, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total() != 1 {
		t.Fatalf("expected total=1, got %d", resp.Total())
	}
}

func TestSearch_CollectionNotFound(t *testing.T) {
	svc, _, colls := newService(t)
	colls.err = domain.ErrNotFound

	req := mustRequest(t, "missing", search.WithQuery("hello"))
	_, err := svc.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch_UnknownFilterField(t *testing.T) {
	svc, _, _ := newService(t)

	expr := mustExpression(t, []filter.Condition{mustMatch(t, "color", "red")})
	req := mustRequest(t, "notes", search.WithQuery("hello"), search.WithFilters(expr))

	_, err := svc.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestSearch_MatchFilterOnNumericField(t *testing.T) {
	svc, _, _ := newService(t)

	expr := mustExpression(t, []filter.Condition{mustMatch(t, "priority", "high")})
	req := mustRequest(t, "notes", search.WithQuery("hello"), search.WithFilters(expr))

	_, err := svc.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestSearch_RangeFilterOnTagField(t *testing.T) {
	svc, _, _ := newService(t)

	expr := mustExpression(t, []filter.Condition{mustRange(t, "language", 1, 5)})
	req := mustRequest(t, "notes", search.WithQuery("hello"), search.WithFilters(expr))

	_, err := svc.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestSearch_ValidFilters(t *testing.T) {
	svc, _, _ := newService(t)

	expr := mustExpression(t, []filter.Condition{
		mustMatch(t, "language", "go"),
		mustRange(t, "priority", 1, 5),
	})
	req := mustRequest(t, "notes", search.WithQuery("hello"), search.WithFilters(expr))

	if _, err := svc.Search(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Search: aggregation validation ---

func TestSearch_TermsOnNumericFieldRejected(t *testing.T) {
	svc, _, _ := newService(t)

	def, err := aggregation.NewTerms("by_priority", "priority", 10)
	if err != nil {
		t.Fatalf("NewTerms: %v", err)
	}
	req := mustRequest(t, "notes", search.WithAggregations(mustSet(t, def)))

	_, err = svc.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestSearch_MetricOnTagFieldRejected(t *testing.T) {
	svc, _, _ := newService(t)

	def, err := aggregation.NewAvg("avg_language", "language")
	if err != nil {
		t.Fatalf("NewAvg: %v", err)
	}
	req := mustRequest(t, "notes", search.WithAggregations(mustSet(t, def)))

	_, err = svc.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestSearch_UnknownAggregationField(t *testing.T) {
	svc, _, _ := newService(t)

	def, err := aggregation.NewTerms("by_color", "color", 10)
	if err != nil {
		t.Fatalf("NewTerms: %v", err)
	}
	req := mustRequest(t, "notes", search.WithAggregations(mustSet(t, def)))

	_, err = svc.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestSearch_ValueCountOnAnyField(t *testing.T) {
	svc, _, _ := newService(t)

	def, err := aggregation.NewValueCount("n_language", "language")
	if err != nil {
		t.Fatalf("NewValueCount: %v", err)
	}
	req := mustRequest(t, "notes", search.WithAggregations(mustSet(t, def)))

	if _, err := svc.Search(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_ValidAggregations(t *testing.T) {
	svc, _, _ := newService(t)

	terms, err := aggregation.NewTerms("by_language", "language", 10)
	if err != nil {
		t.Fatalf("NewTerms: %v", err)
	}
	avg, err := aggregation.NewAvg("avg_priority", "priority")
	if err != nil {
		t.Fatalf("NewAvg: %v", err)
	}
	req := mustRequest(t, "notes", search.WithAggregations(mustSet(t, terms, avg)))

	if _, err := svc.Search(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- MultiSearch ---

func TestMultiSearch_PreservesOrder(t *testing.T) {
	svc, repo, _ := newService(t)

	repo.executeFn = func(_ context.Context, req search.Request) (search.Response, error) {
		hits := []search.Hit{search.NewHit("hit-"+req.Query(), 1, "", nil)}
		return search.NewResponse(hits, 1, nil), nil
	}

	reqs := []search.Request{
		mustRequest(t, "notes", search.WithQuery("first")),
		mustRequest(t, "notes", search.WithQuery("second")),
		mustRequest(t, "notes", search.WithQuery("third")),
	}

	responses, err := svc.MultiSearch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	for i, want := range []string{"hit-first", "hit-second", "hit-third"} {
		if responses[i].Hits()[0].ID() != want {
			t.Errorf("response %d: expected %s, got %s", i, want, responses[i].Hits()[0].ID())
		}
	}
	if repo.calls.Load() != 3 {
		t.Errorf("expected 3 repo calls, got %d", repo.calls.Load())
	}
}

func TestMultiSearch_FirstErrorFailsBatch(t *testing.T) {
	svc, repo, _ := newService(t)

	repo.executeFn = func(_ context.Context, req search.Request) (search.Response, error) {
		if req.Query() == "bad" {
			return search.Response{}, errors.New("engine exploded")
		}
		return search.Response{}, nil
	}

	reqs := []search.Request{
		mustRequest(t, "notes", search.WithQuery("ok")),
		mustRequest(t, "notes", search.WithQuery("bad")),
	}

	if _, err := svc.MultiSearch(context.Background(), reqs); err == nil {
		t.Fatal("expected error")
	}
}

func TestMultiSearch_Empty(t *testing.T) {
	svc, _, _ := newService(t)

	responses, err := svc.MultiSearch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if responses != nil {
		t.Fatalf("expected nil, got %v", responses)
	}
}

// --- MultiSearchFused ---

func TestMultiSearchFused_MergesHits(t *testing.T) {
	svc, repo, _ := newService(t)

	repo.executeFn = func(_ context.Context, req search.Request) (search.Response, error) {
		var hits []search.Hit
		switch req.Query() {
		case "first":
			hits = []search.Hit{search.NewHit("shared", 0.9, "", nil), search.NewHit("a", 0.5, "", nil)}
		case "second":
			hits = []search.Hit{search.NewHit("b", 0.8, "", nil), search.NewHit("shared", 0.4, "", nil)}
		}
		return search.NewResponse(hits, int64(len(hits)), nil), nil
	}

	reqs := []search.Request{
		mustRequest(t, "notes", search.WithQuery("first")),
		mustRequest(t, "notes", search.WithQuery("second")),
	}

	fused, err := svc.MultiSearchFused(context.Background(), reqs, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fused) != 3 {
		t.Fatalf("expected 3 fused hits, got %d", len(fused))
	}
	if fused[0].ID() != "shared" {
		t.Fatalf("expected shared doc first, got %s", fused[0].ID())
	}
}
