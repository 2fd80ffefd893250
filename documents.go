package docdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	dombatch "github.com/kailas-cloud/docdex/internal/domain/batch"
)

// DocumentService manages documents within a single collection.
type DocumentService struct {
	collection string
	docSvc     documentUseCase
	batchSvc   batchUseCase
	obs        *observer
}

// Upsert creates or updates a document. Returns true if created.
func (s *DocumentService) Upsert(ctx context.Context, doc Document) (_ bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.upsert", start, err) }()

	d, err := toInternalDocument(doc)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	created, err := s.docSvc.Upsert(ctx, s.collection, &d)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	return created, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", start, err) }()

	d, err := s.docSvc.Get(ctx, s.collection, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(d), nil
}

// List returns a paginated list of documents.
func (s *DocumentService) List(
	ctx context.Context, cursor string, limit int,
) (_ ListResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.list", start, err) }()

	docs, next, err := s.docSvc.List(ctx, s.collection, cursor, limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = fromInternalDocument(d)
	}
	return ListResult{Documents: out, NextCursor: next}, nil
}

// Delete removes a document by ID.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", start, err) }()

	if err = s.docSvc.Delete(ctx, s.collection, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (s *DocumentService) Count(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.count", start, err) }()

	n, err := s.docSvc.Count(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// BatchUpsert creates or updates documents in batch. Every item gets its own
// BatchResult; a failing item does not stop the rest.
func (s *DocumentService) BatchUpsert(
	ctx context.Context, docs []Document,
) (_ []BatchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.batch_upsert", start, err) }()

	items := make([]domain.Document, len(docs))
	for i, d := range docs {
		items[i], err = toInternalDocument(d)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
	}
	results := s.batchSvc.Upsert(ctx, s.collection, items)
	return fromBatchResults(results), nil
}

// BatchDelete removes documents by IDs.
func (s *DocumentService) BatchDelete(ctx context.Context, ids []string) []BatchResult {
	start := time.Now()
	defer func() { s.obs.observe("document.batch_delete", start, nil) }()

	results := s.batchSvc.Delete(ctx, s.collection, ids)
	return fromBatchResults(results)
}

func toInternalDocument(d Document) (domain.Document, error) {
	if d.ID == "" {
		return domain.Document{}, fmt.Errorf("document id is required")
	}
	return domain.Document{
		ID:       d.ID,
		Content:  d.Content,
		Tags:     d.Tags,
		Numerics: d.Numerics,
	}, nil
}

func fromInternalDocument(d domain.Document) Document {
	return Document{
		ID:       d.ID,
		Content:  d.Content,
		Tags:     d.Tags,
		Numerics: d.Numerics,
	}
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{
			ID:     r.ID(),
			Status: string(r.Status()),
			OK:     r.OK(),
			Err:    r.Err(),
		}
	}
	return out
}
