package chi

import (
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
	dombatch "github.com/kailas-cloud/docdex/internal/domain/batch"
	domcol "github.com/kailas-cloud/docdex/internal/domain/collection"
	"github.com/kailas-cloud/docdex/internal/domain/collection/field"
	domsearch "github.com/kailas-cloud/docdex/internal/domain/search"
	"github.com/kailas-cloud/docdex/internal/domain/search/filter"
)

// Error codes returned in the code field of error responses.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeCollectionNotFound = "collection_not_found"
	codeDocumentNotFound   = "document_not_found"
	codeAlreadyExists      = "collection_already_exists"
	codeReservedName       = "reserved_aggregation_name"
	codeAggNotSupported    = "aggregation_not_supported"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type fieldDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type createCollectionRequest struct {
	Name   string     `json:"name"`
	Fields []fieldDef `json:"fields,omitempty"`
}

type collectionResponse struct {
	Name          string     `json:"name"`
	Fields        []fieldDef `json:"fields,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	DocumentCount *int       `json:"document_count,omitempty"`
}

type collectionListResponse struct {
	Items      []collectionResponse `json:"items"`
	NextCursor *string              `json:"next_cursor,omitempty"`
	HasMore    bool                 `json:"has_more"`
}

type upsertDocumentRequest struct {
	Content  string             `json:"content"`
	Tags     map[string]string  `json:"tags,omitempty"`
	Numerics map[string]float64 `json:"numerics,omitempty"`
}

type documentResponse struct {
	ID       string             `json:"id"`
	Content  string             `json:"content"`
	Tags     map[string]string  `json:"tags,omitempty"`
	Numerics map[string]float64 `json:"numerics,omitempty"`
}

type documentListResponse struct {
	Items      []documentResponse `json:"items"`
	NextCursor *string            `json:"next_cursor,omitempty"`
	HasMore    bool               `json:"has_more"`
}

type batchUpsertRequest struct {
	Documents []batchUpsertItem `json:"documents"`
}

type batchUpsertItem struct {
	ID       string             `json:"id"`
	Content  string             `json:"content"`
	Tags     map[string]string  `json:"tags,omitempty"`
	Numerics map[string]float64 `json:"numerics,omitempty"`
}

type batchDeleteRequest struct {
	IDs []string `json:"ids"`
}

type batchResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *errorResponse `json:"error,omitempty"`
}

type batchResponse struct {
	Items     []batchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

type rangeFilterDTO struct {
	GT  *float64 `json:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

type filterConditionDTO struct {
	Key   string          `json:"key"`
	Match *string         `json:"match,omitempty"`
	Range *rangeFilterDTO `json:"range,omitempty"`
}

type filterExpressionDTO struct {
	Must    []filterConditionDTO `json:"must,omitempty"`
	Should  []filterConditionDTO `json:"should,omitempty"`
	MustNot []filterConditionDTO `json:"must_not,omitempty"`
}

type aggregationDTO struct {
	Type  string `json:"type"`
	Field string `json:"field"`
	Size  int    `json:"size,omitempty"`
}

type searchRequest struct {
	Query        string                    `json:"query,omitempty"`
	Filters      *filterExpressionDTO      `json:"filters,omitempty"`
	Limit        *int                      `json:"limit,omitempty"`
	Offset       *int                      `json:"offset,omitempty"`
	Aggregations map[string]aggregationDTO `json:"aggregations,omitempty"`
}

type searchHitDTO struct {
	ID      string            `json:"id"`
	Score   float64           `json:"score"`
	Content string            `json:"content,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type aggregationResultDTO struct {
	Value         *float64                         `json:"value,omitempty"`
	ValueAsString string                           `json:"value_as_string,omitempty"`
	DocCount      int64                            `json:"doc_count,omitempty"`
	Buckets       []aggregationBucketDTO           `json:"buckets,omitempty"`
	Sub           map[string]*aggregationResultDTO `json:"aggregations,omitempty"`
}

type aggregationBucketDTO struct {
	Key      string                           `json:"key"`
	DocCount int64                            `json:"doc_count"`
	Sub      map[string]*aggregationResultDTO `json:"aggregations,omitempty"`
}

type searchResponse struct {
	Items        []searchHitDTO                   `json:"items"`
	Total        int64                            `json:"total"`
	Aggregations map[string]*aggregationResultDTO `json:"aggregations,omitempty"`
}

type multiSearchRequest struct {
	Queries []multiSearchQuery `json:"queries"`
}

type multiSearchQuery struct {
	Collection string `json:"collection"`
	searchRequest
}

type multiSearchResponse struct {
	Results []searchResponse `json:"results"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// --- conversions ---

func fieldsFromDTO(defs []fieldDef) ([]field.Field, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	fields := make([]field.Field, len(defs))
	for i, f := range defs {
		fld, err := field.New(f.Name, field.Type(f.Type))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		fields[i] = fld
	}
	return fields, nil
}

func collectionToDTO(c domcol.Collection) collectionResponse {
	var fields []fieldDef
	if len(c.Fields()) > 0 {
		fields = make([]fieldDef, len(c.Fields()))
		for i, f := range c.Fields() {
			fields[i] = fieldDef{Name: f.Name(), Type: string(f.FieldType())}
		}
	}
	return collectionResponse{
		Name:      c.Name(),
		Fields:    fields,
		CreatedAt: time.UnixMilli(c.CreatedAt()).UTC(),
	}
}

func documentToDTO(doc *domain.Document) documentResponse {
	return documentResponse{
		ID:       doc.ID,
		Content:  doc.Content,
		Tags:     doc.Tags,
		Numerics: doc.Numerics,
	}
}

func batchResultToDTO(r dombatch.Result) batchResultItem {
	item := batchResultItem{
		ID:     r.ID(),
		Status: string(r.Status()),
	}
	if r.Err() != nil {
		item.Error = &errorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}

func batchErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return codeCollectionNotFound
	case errors.Is(err, domain.ErrDocumentNotFound):
		return codeDocumentNotFound
	case errors.Is(err, domain.ErrInvalidSchema):
		return codeValidationFailed
	default:
		return codeInternalError
	}
}

func searchRequestFromDTO(collection string, req searchRequest) (domsearch.Request, error) {
	opts := []domsearch.Option{}
	if req.Query != "" {
		opts = append(opts, domsearch.WithQuery(req.Query))
	}

	filters, err := filtersFromDTO(req.Filters)
	if err != nil {
		return domsearch.Request{}, fmt.Errorf("parse filters: %w", err)
	}
	if !filters.IsEmpty() {
		opts = append(opts, domsearch.WithFilters(filters))
	}

	if req.Limit != nil {
		opts = append(opts, domsearch.WithLimit(*req.Limit))
	}
	if req.Offset != nil {
		opts = append(opts, domsearch.WithOffset(*req.Offset))
	}

	if len(req.Aggregations) > 0 {
		set, err := aggregationsFromDTO(req.Aggregations)
		if err != nil {
			return domsearch.Request{}, err
		}
		opts = append(opts, domsearch.WithAggregations(set))
	}

	r, err := domsearch.NewRequest(collection, opts...)
	if err != nil {
		return domsearch.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return r, nil
}

func aggregationsFromDTO(aggs map[string]aggregationDTO) (*aggregation.Set, error) {
	defs := make(map[string]aggregation.Definition, len(aggs))
	for name, a := range aggs {
		var (
			def aggregation.Definition
			err error
		)
		switch aggregation.Kind(a.Type) {
		case aggregation.Terms:
			def, err = aggregation.NewTerms(name, a.Field, a.Size)
		case aggregation.Max:
			def, err = aggregation.NewMax(name, a.Field)
		case aggregation.Min:
			def, err = aggregation.NewMin(name, a.Field)
		case aggregation.Avg:
			def, err = aggregation.NewAvg(name, a.Field)
		case aggregation.Sum:
			def, err = aggregation.NewSum(name, a.Field)
		case aggregation.ValueCount:
			def, err = aggregation.NewValueCount(name, a.Field)
		default:
			return nil, fmt.Errorf("aggregation %q: unknown type %q", name, a.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("aggregation %q: %w", name, err)
		}
		defs[name] = def
	}
	return aggregation.FromMap(defs)
}

func filtersFromDTO(f *filterExpressionDTO) (filter.Expression, error) {
	if f == nil {
		return filter.Expression{}, nil
	}

	must, err := conditionsFromDTO(f.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	should, err := conditionsFromDTO(f.Should)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := conditionsFromDTO(f.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}

	expr, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("new expression: %w", err)
	}
	return expr, nil
}

func conditionsFromDTO(cs []filterConditionDTO) ([]filter.Condition, error) {
	if len(cs) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(cs))
	for _, c := range cs {
		cond, err := conditionFromDTO(c)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func conditionFromDTO(c filterConditionDTO) (filter.Condition, error) {
	if c.Match != nil && c.Range != nil {
		return filter.Condition{},
			fmt.Errorf("filter condition for %q must have match or range, not both", c.Key)
	}
	if c.Match != nil {
		cond, err := filter.NewMatch(c.Key, *c.Match)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("match filter: %w", err)
		}
		return cond, nil
	}
	if c.Range != nil {
		rf, err := filter.NewRangeBounds(c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range filter: %w", err)
		}
		cond, err := filter.NewRange(c.Key, rf)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range condition: %w", err)
		}
		return cond, nil
	}
	return filter.Condition{},
		errors.New("filter condition must have either match or range")
}

func searchResponseToDTO(resp domsearch.Response) searchResponse {
	items := make([]searchHitDTO, len(resp.Hits()))
	for i, h := range resp.Hits() {
		items[i] = searchHitDTO{
			ID:      h.ID(),
			Score:   h.Score(),
			Content: h.Content(),
			Fields:  h.Fields(),
		}
	}
	return searchResponse{
		Items:        items,
		Total:        resp.Total(),
		Aggregations: aggResultsToDTO(resp.Aggregations()),
	}
}

func aggResultsToDTO(aggs map[string]*aggregation.Result) map[string]*aggregationResultDTO {
	if len(aggs) == 0 {
		return nil
	}
	out := make(map[string]*aggregationResultDTO, len(aggs))
	for name, r := range aggs {
		out[name] = aggResultToDTO(r)
	}
	return out
}

func aggResultToDTO(r *aggregation.Result) *aggregationResultDTO {
	if r == nil {
		return nil
	}
	out := &aggregationResultDTO{
		Value:         r.Value,
		ValueAsString: r.ValueAsString,
		DocCount:      r.DocCount,
		Sub:           aggResultsToDTO(r.Sub),
	}
	if len(r.Buckets) > 0 {
		out.Buckets = make([]aggregationBucketDTO, len(r.Buckets))
		for i, b := range r.Buckets {
			out.Buckets[i] = aggregationBucketDTO{
				Key:      b.Key,
				DocCount: b.DocCount,
				Sub:      aggResultsToDTO(b.Sub),
			}
		}
	}
	return out
}
