package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
	domcol "github.com/kailas-cloud/docdex/internal/domain/collection"
	"github.com/kailas-cloud/docdex/internal/domain/collection/field"
	"github.com/kailas-cloud/docdex/internal/domain/search"
	"github.com/kailas-cloud/docdex/internal/domain/search/filter"
	"github.com/kailas-cloud/docdex/pkg/synclist"
)

// maxConcurrentSearches bounds the MultiSearch fan-out.
const maxConcurrentSearches = 8

// Service handles full-text search with filters and aggregations.
type Service struct {
	repo  Repository
	colls CollectionReader
}

// New creates a search service.
func New(repo Repository, colls CollectionReader) *Service {
	return &Service{repo: repo, colls: colls}
}

// Search validates the request against the collection schema and executes it.
func (s *Service) Search(ctx context.Context, req search.Request) (search.Response, error) {
	col, err := s.colls.Get(ctx, req.Collection())
	if err != nil {
		return search.Response{}, fmt.Errorf("get collection: %w", err)
	}

	if err := validateFiltersAgainstSchema(req.Filters(), col); err != nil {
		return search.Response{}, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}
	if err := validateAggsAgainstSchema(req.Aggregations(), col); err != nil {
		return search.Response{}, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}

	resp, err := s.repo.Execute(ctx, req)
	if err != nil {
		return search.Response{}, fmt.Errorf("execute search: %w", err)
	}
	return resp, nil
}

// MultiSearch runs several requests concurrently and returns responses in
// request order. The whole batch fails on the first error.
func (s *Service) MultiSearch(ctx context.Context, reqs []search.Request) ([]search.Response, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	type indexed struct {
		pos  int
		resp search.Response
	}

	collected := synclist.New[indexed]()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSearches)

	for i, req := range reqs {
		g.Go(func() error {
			resp, err := s.Search(ctx, req)
			if err != nil {
				return fmt.Errorf("collection %s: %w", req.Collection(), err)
			}
			return collected.Add(indexed{pos: i, resp: resp})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]search.Response, len(reqs))
	for item := range collected.All() {
		out[item.pos] = item.resp
	}
	return out, nil
}

// MultiSearchFused runs several requests concurrently and fuses all hit
// lists into a single ranking via reciprocal rank fusion. Aggregations on
// the individual requests are discarded.
func (s *Service) MultiSearchFused(ctx context.Context, reqs []search.Request, limit int) ([]search.Hit, error) {
	responses, err := s.MultiSearch(ctx, reqs)
	if err != nil {
		return nil, err
	}

	lists := make([][]search.Hit, len(responses))
	for i, resp := range responses {
		lists[i] = resp.Hits()
	}
	return fuseRRF(lists, limit), nil
}

// validateFiltersAgainstSchema ensures filter fields exist in the collection
// and that the condition type matches the field type.
func validateFiltersAgainstSchema(expr filter.Expression, col domcol.Collection) error {
	if expr.IsEmpty() {
		return nil
	}
	groups := [][]filter.Condition{expr.Must(), expr.Should(), expr.MustNot()}
	for _, conditions := range groups {
		for _, c := range conditions {
			f, ok := col.Field(c.Key())
			if !ok {
				return fmt.Errorf("unknown filter field %q", c.Key())
			}
			if c.IsMatch() && f.FieldType() == field.Numeric {
				return fmt.Errorf("match filter on numeric field %q", c.Key())
			}
			if c.IsRange() && f.FieldType() != field.Numeric {
				return fmt.Errorf("range filter on non-numeric field %q", c.Key())
			}
		}
	}
	return nil
}

// validateAggsAgainstSchema ensures aggregation fields exist and suit the
// aggregation kind: terms needs a tag field, metrics need a numeric field.
func validateAggsAgainstSchema(set *aggregation.Set, col domcol.Collection) error {
	if set == nil || set.IsEmpty() {
		return nil
	}
	for def := range set.All() {
		f, ok := col.Field(def.Field())
		if !ok {
			return fmt.Errorf("aggregation %q: unknown field %q", def.Name(), def.Field())
		}
		switch def.Kind() {
		case aggregation.Terms:
			if f.FieldType() != field.Tag {
				return fmt.Errorf("aggregation %q: terms requires a tag field, %q is %s",
					def.Name(), def.Field(), f.FieldType())
			}
		case aggregation.Max, aggregation.Min, aggregation.Avg, aggregation.Sum:
			if f.FieldType() != field.Numeric {
				return fmt.Errorf("aggregation %q: %s requires a numeric field, %q is %s",
					def.Name(), def.Kind(), def.Field(), f.FieldType())
			}
		case aggregation.ValueCount:
			// any field type counts
		}
	}
	return nil
}
