package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
	dombatch "github.com/kailas-cloud/docdex/internal/domain/batch"
	domsearch "github.com/kailas-cloud/docdex/internal/domain/search"
	batchuc "github.com/kailas-cloud/docdex/internal/usecase/batch"
	collectionuc "github.com/kailas-cloud/docdex/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/docdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docdex/internal/usecase/search"
)

const defaultPageSize = 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the docdex usecases over HTTP.
type Server struct {
	collections   *collectionuc.Service
	documents     *documentuc.Service
	search        *searchuc.Service
	batch         *batchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	collections *collectionuc.Service,
	documents *documentuc.Service,
	search *searchuc.Service,
	batch *batchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		collections: collections,
		documents:   documents,
		search:      search,
		batch:       batch,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		reservedNameHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeCollectionNotFound),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrAggregationNotSupported, http.StatusNotImplemented, codeAggNotSupported),
	}
	return s
}

// Routes mounts all API endpoints onto a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/collections", func(r chi.Router) {
			r.Post("/", s.CreateCollection)
			r.Get("/", s.ListCollections)
			r.Route("/{collection}", func(r chi.Router) {
				r.Get("/", s.GetCollection)
				r.Delete("/", s.DeleteCollection)
				r.Route("/documents", func(r chi.Router) {
					r.Get("/", s.ListDocuments)
					r.Post("/batch", s.BatchUpsert)
					r.Post("/batch/delete", s.BatchDelete)
					r.Put("/{id}", s.UpsertDocument)
					r.Get("/{id}", s.GetDocument)
					r.Delete("/{id}", s.DeleteDocument)
				})
				r.Post("/search", s.Search)
			})
		})
		r.Post("/search/multi", s.MultiSearch)
		r.Post("/search/fused", s.FusedSearch)
	})

	return r
}

// CreateCollection handles POST /api/v1/collections.
func (s *Server) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Collection name is required")
		return
	}

	fields, err := fieldsFromDTO(req.Fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	col, err := s.collections.Create(r.Context(), req.Name, fields)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, collectionToDTO(col))
}

// ListCollections handles GET /api/v1/collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.collections.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]collectionResponse, len(cols))
	for i, c := range cols {
		items[i] = collectionToDTO(c)
	}

	cursor := r.URL.Query().Get("cursor")
	limit := queryInt(r, "limit", defaultPageSize)
	writeJSON(w, http.StatusOK, paginateCollections(items, cursor, limit))
}

func paginateCollections(items []collectionResponse, cursor string, limit int) collectionListResponse {
	if limit <= 0 {
		limit = defaultPageSize
	}

	startIdx := 0
	if cursor != "" {
		startIdx = len(items)
		for i, item := range items {
			if item.Name == cursor {
				startIdx = i + 1
				break
			}
		}
	}

	end := startIdx + limit
	if end > len(items) {
		end = len(items)
	}

	page := items[startIdx:end]
	hasMore := end < len(items)

	resp := collectionListResponse{
		Items:   page,
		HasMore: hasMore,
	}
	if hasMore && len(page) > 0 {
		c := page[len(page)-1].Name
		resp.NextCursor = &c
	}
	return resp
}

// GetCollection handles GET /api/v1/collections/{collection}.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")

	col, err := s.collections.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := collectionToDTO(col)

	count, err := s.documents.Count(r.Context(), name)
	if err == nil {
		resp.DocumentCount = &count
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteCollection handles DELETE /api/v1/collections/{collection}.
func (s *Server) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.collections.Delete(r.Context(), chi.URLParam(r, "collection")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpsertDocument handles PUT /api/v1/collections/{collection}/documents/{id}.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	var req upsertDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Document content is required")
		return
	}

	doc := domain.Document{
		ID:       id,
		Content:  req.Content,
		Tags:     req.Tags,
		Numerics: req.Numerics,
	}

	created, err := s.documents.Upsert(r.Context(), collection, &doc)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location",
			fmt.Sprintf("/api/v1/collections/%s/documents/%s", collection, id))
	}
	writeJSON(w, status, documentToDTO(&doc))
}

// GetDocument handles GET /api/v1/collections/{collection}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToDTO(&doc))
}

// DeleteDocument handles DELETE /api/v1/collections/{collection}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	err := s.documents.Delete(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDocuments handles GET /api/v1/collections/{collection}/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	cursor := r.URL.Query().Get("cursor")
	limit := queryInt(r, "limit", 0)

	docs, nextCursor, err := s.documents.List(r.Context(), collection, cursor, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i := range docs {
		items[i] = documentToDTO(&docs[i])
	}

	resp := documentListResponse{Items: items}
	if nextCursor != "" {
		resp.NextCursor = &nextCursor
		resp.HasMore = true
	}
	writeJSON(w, http.StatusOK, resp)
}

// BatchUpsert handles POST /api/v1/collections/{collection}/documents/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req batchUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "At least one document is required")
		return
	}

	docs := make([]domain.Document, len(req.Documents))
	for i, item := range req.Documents {
		if item.ID == "" {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				fmt.Sprintf("document at index %d has no id", i))
			return
		}
		docs[i] = domain.Document{
			ID:       item.ID,
			Content:  item.Content,
			Tags:     item.Tags,
			Numerics: item.Numerics,
		}
	}

	results := s.batch.Upsert(r.Context(), collection, docs)
	writeJSON(w, http.StatusOK, batchToDTO(results))
}

// BatchDelete handles POST /api/v1/collections/{collection}/documents/batch/delete.
func (s *Server) BatchDelete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req batchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "At least one document id is required")
		return
	}

	results := s.batch.Delete(r.Context(), collection, req.IDs)
	writeJSON(w, http.StatusOK, batchToDTO(results))
}

// Search handles POST /api/v1/collections/{collection}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	dreq, err := searchRequestFromDTO(collection, req)
	if err != nil {
		s.handleRequestError(w, err)
		return
	}

	resp, err := s.search.Search(r.Context(), dreq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseToDTO(resp))
}

// MultiSearch handles POST /api/v1/search/multi.
func (s *Server) MultiSearch(w http.ResponseWriter, r *http.Request) {
	var req multiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	reqs, ok := s.buildMultiRequests(w, req.Queries)
	if !ok {
		return
	}

	resps, err := s.search.MultiSearch(r.Context(), reqs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make([]searchResponse, len(resps))
	for i, resp := range resps {
		results[i] = searchResponseToDTO(resp)
	}
	writeJSON(w, http.StatusOK, multiSearchResponse{Results: results})
}

// FusedSearch handles POST /api/v1/search/fused. It runs every query and
// merges the hits into a single reciprocal-rank-fused list.
func (s *Server) FusedSearch(w http.ResponseWriter, r *http.Request) {
	var req multiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	reqs, ok := s.buildMultiRequests(w, req.Queries)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 0)
	hits, err := s.search.MultiSearchFused(r.Context(), reqs, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchHitDTO, len(hits))
	for i, h := range hits {
		items[i] = searchHitDTO{
			ID:      h.ID(),
			Score:   h.Score(),
			Content: h.Content(),
			Fields:  h.Fields(),
		}
	}
	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: int64(len(items))})
}

func (s *Server) buildMultiRequests(w http.ResponseWriter, queries []multiSearchQuery) ([]domsearch.Request, bool) {
	if len(queries) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "At least one query is required")
		return nil, false
	}

	reqs := make([]domsearch.Request, len(queries))
	for i, q := range queries {
		if q.Collection == "" {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				fmt.Sprintf("query at index %d has no collection", i))
			return nil, false
		}
		dreq, err := searchRequestFromDTO(q.Collection, q.searchRequest)
		if err != nil {
			s.handleRequestError(w, err)
			return nil, false
		}
		reqs[i] = dreq
	}
	return reqs, true
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func batchToDTO(results []dombatch.Result) batchResponse {
	resp := batchResponse{Items: make([]batchResultItem, len(results))}
	for i, r := range results {
		resp.Items[i] = batchResultToDTO(r)
		if r.OK() {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	return resp
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// handleRequestError maps request construction failures to 400s, keeping the
// reserved-name case distinguishable for clients.
func (s *Server) handleRequestError(w http.ResponseWriter, err error) {
	var rne *aggregation.ReservedNameError
	if errors.As(err, &rne) {
		writeError(w, http.StatusBadRequest, codeReservedName, rne.Error())
		return
	}
	writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrDocumentNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidSchema,
		domain.ErrAggregationNotSupported,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// reservedNameHandler surfaces the reserved aggregation-name violation with
// the offending name instead of the generic sentinel text.
func reservedNameHandler(w http.ResponseWriter, err error, _ string) bool {
	var rne *aggregation.ReservedNameError
	if !errors.As(err, &rne) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeReservedName, rne.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
