package db

import (
	"encoding/json"

	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
	"github.com/kailas-cloud/docdex/internal/domain/search/filter"
)

// TextQuery is the input for full-text search.
type TextQuery struct {
	IndexName    string
	Query        string
	Filters      filter.Expression
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// AggregateQuery is the input for a server-side aggregation.
type AggregateQuery struct {
	IndexName string
	Query     string
	Filters   filter.Expression
	Aggs      *aggregation.Set
}

// AggregateResult carries aggregation output in whichever shape the engine
// produces it. Engines returning a JSON aggregation tree set Raw; engines
// returning tabular rows set Rows, keyed by aggregation name.
type AggregateResult struct {
	Raw  json.RawMessage
	Rows map[string][]map[string]string
}
