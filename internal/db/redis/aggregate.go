package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
)

// Aggregate runs the query's aggregation set via FT.AGGREGATE, one command
// per definition, and returns the grouped rows keyed by aggregation name.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Aggs == nil || q.Aggs.IsEmpty() {
		return nil, fmt.Errorf("at least one aggregation is required")
	}

	queryStr := buildQuery(q.Query, q.Filters)

	defs := q.Aggs.Definitions()
	cmds := make([]rueidis.Completed, len(defs))
	for i, def := range defs {
		args, err := buildAggregateArgs(q.IndexName, queryStr, def)
		if err != nil {
			return nil, err
		}
		cmds[i] = s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	}

	rows := make(map[string][]map[string]string, len(defs))
	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		raw, err := res.ToArray()
		if err != nil {
			return nil, &db.Error{Op: db.OpAggregate, Err: fmt.Errorf("%s: %w", defs[i].Name(), err)}
		}
		rows[defs[i].Name()] = parseAggregateRows(raw)
	}

	return &db.AggregateResult{Rows: rows}, nil
}

// buildAggregateArgs translates a single aggregation definition into
// FT.AGGREGATE arguments. Terms become a GROUPBY over the field with a COUNT
// reducer; metrics become a groupless reducer aliased to the definition name.
func buildAggregateArgs(index, query string, def aggregation.Definition) ([]string, error) {
	args := []string{index, query}

	switch def.Kind() {
	case aggregation.Terms:
		args = append(args,
			"GROUPBY", "1", "@"+def.Field(),
			"REDUCE", "COUNT", "0", "AS", "count",
			"SORTBY", "4", "@count", "DESC", "@"+def.Field(), "ASC",
			"LIMIT", "0", strconv.Itoa(def.Size()),
		)
	case aggregation.Max, aggregation.Min, aggregation.Avg, aggregation.Sum:
		args = append(args,
			"GROUPBY", "0",
			"REDUCE", reducerName(def.Kind()), "1", "@"+def.Field(), "AS", def.Name(),
		)
	case aggregation.ValueCount:
		args = append(args,
			"GROUPBY", "0",
			"REDUCE", "COUNT", "0", "AS", def.Name(),
		)
	default:
		return nil, fmt.Errorf("aggregation %q: unsupported kind %q", def.Name(), def.Kind())
	}

	return args, nil
}

func reducerName(k aggregation.Kind) string {
	switch k {
	case aggregation.Max:
		return "MAX"
	case aggregation.Min:
		return "MIN"
	case aggregation.Avg:
		return "AVG"
	case aggregation.Sum:
		return "SUM"
	default:
		return "COUNT"
	}
}

// parseAggregateRows decodes the RESP2 reply: [total, row1, row2, ...] where
// each row is a flat list of name/value pairs.
func parseAggregateRows(raw []rueidis.RedisMessage) []map[string]string {
	if len(raw) < 2 {
		return nil
	}

	rows := make([]map[string]string, 0, len(raw)-1)
	for _, msg := range raw[1:] {
		pairs, err := msg.ToArray()
		if err != nil {
			continue
		}
		rows = append(rows, parseFieldPairs(pairs))
	}
	return rows
}
