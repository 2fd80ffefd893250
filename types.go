package docdex

// FieldType defines the type of a collection field.
type FieldType string

// Field type constants.
const (
	FieldText    FieldType = "text"
	FieldTag     FieldType = "tag"
	FieldNumeric FieldType = "numeric"
)

// CollectionInfo represents collection metadata.
type CollectionInfo struct {
	Name      string
	Fields    []FieldInfo
	CreatedAt int64
}

// FieldInfo represents a collection field definition.
type FieldInfo struct {
	Name string
	Type FieldType
}

// CollectionListResult is a paginated list of collections.
type CollectionListResult struct {
	Collections []CollectionInfo
	NextCursor  string
	HasMore     bool
}

// Document is an untyped document for the low-level API.
type Document struct {
	ID       string
	Content  string
	Tags     map[string]string
	Numerics map[string]float64
}

// SearchResult is a single search hit.
type SearchResult struct {
	ID      string
	Score   float64
	Content string
	Fields  map[string]string
}

// SearchResponse carries hits, the total match count, and any aggregation
// results of one search request.
type SearchResponse struct {
	Hits         []SearchResult
	Total        int64
	Aggregations map[string]*AggregationResult
}

// BatchResult is the outcome of one item in a batch operation.
type BatchResult struct {
	ID     string
	Status string // "created", "updated", "deleted", "error"
	OK     bool
	Err    error
}

// ListResult is a paginated list of documents.
type ListResult struct {
	Documents  []Document
	NextCursor string
}

// FilterExpression is a set of must/should/must_not filter conditions.
type FilterExpression struct {
	Must    []FilterCondition
	Should  []FilterCondition
	MustNot []FilterCondition
}

// FilterCondition is a single filter clause.
type FilterCondition struct {
	Key   string
	Match string       // non-empty for exact match
	Range *RangeFilter // non-nil for numeric range
}

// RangeFilter defines numeric range boundaries.
type RangeFilter struct {
	GT  *float64
	GTE *float64
	LT  *float64
	LTE *float64
}

// AggregationResult is a parsed aggregation node. Metric aggregations fill
// Value; terms aggregations fill Buckets. Sub holds nested aggregations when
// the engine returns them.
type AggregationResult struct {
	Value         *float64
	ValueAsString string
	DocCount      int64
	Buckets       []AggregationBucket
	Sub           map[string]*AggregationResult
}

// AggregationBucket is a single bucket of a terms aggregation.
type AggregationBucket struct {
	Key      string
	DocCount int64
	Sub      map[string]*AggregationResult
}
