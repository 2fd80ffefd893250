package search

import "github.com/kailas-cloud/docdex/internal/domain/aggregation"

// Hit is a single matched document with its relevance score.
type Hit struct {
	id      string
	score   float64
	content string
	fields  map[string]string
}

// NewHit creates a search Hit.
func NewHit(id string, score float64, content string, fields map[string]string) Hit {
	return Hit{id: id, score: score, content: content, fields: fields}
}

// ID returns the document identifier.
func (h Hit) ID() string { return h.id }

// Score returns the relevance score.
func (h Hit) Score() float64 { return h.score }

// Content returns the document body.
func (h Hit) Content() string { return h.content }

// Fields returns the stored fields returned with the hit.
func (h Hit) Fields() map[string]string { return h.fields }

// Response is the outcome of a search request: matched hits plus any
// aggregation results keyed by aggregation name.
type Response struct {
	hits  []Hit
	total int64
	aggs  map[string]*aggregation.Result
}

// NewResponse creates a search Response.
func NewResponse(hits []Hit, total int64, aggs map[string]*aggregation.Result) Response {
	return Response{hits: hits, total: total, aggs: aggs}
}

// Hits returns the matched documents.
func (r Response) Hits() []Hit { return r.hits }

// Total returns the total number of matches, which may exceed len(Hits).
func (r Response) Total() int64 { return r.total }

// Aggregations returns aggregation results keyed by name.
func (r Response) Aggregations() map[string]*aggregation.Result { return r.aggs }

// Aggregation returns the named aggregation result, or nil.
func (r Response) Aggregation(name string) *aggregation.Result { return r.aggs[name] }
