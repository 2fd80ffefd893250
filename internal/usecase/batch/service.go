package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/docdex/internal/domain"
	dombatch "github.com/kailas-cloud/docdex/internal/domain/batch"
	"github.com/kailas-cloud/docdex/internal/domain/collection/field"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// Service handles batch document operations with per-item error reporting.
type Service struct {
	docs         DocumentUpserter
	del          DocumentDeleter
	colls        CollectionReader
	maxBatchSize int
}

// New creates a batch service.
func New(docs DocumentUpserter, del DocumentDeleter, colls CollectionReader) *Service {
	return &Service{
		docs: docs, del: del, colls: colls,
		maxBatchSize: MaxBatchSize,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert creates or updates documents in batch. Each item gets its own
// result; a failing item does not stop the rest.
func (s *Service) Upsert(ctx context.Context, collectionName string, items []domain.Document) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		for i, item := range items {
			results[i] = dombatch.NewError(
				item.ID,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidSchema),
			)
		}
		return results
	}

	col, err := s.colls.Get(ctx, collectionName)
	if err != nil {
		for i, item := range items {
			results[i] = dombatch.NewError(item.ID, fmt.Errorf("get collection: %w", err))
		}
		return results
	}

	fieldTypes := make(map[string]field.Type)
	for _, f := range col.Fields() {
		fieldTypes[f.Name()] = f.FieldType()
	}

	for i := range items {
		item := &items[i]
		if err := validateItemFields(item, fieldTypes); err != nil {
			results[i] = dombatch.NewError(item.ID, err)
			continue
		}

		created, err := s.docs.Upsert(ctx, collectionName, item)
		if err != nil {
			results[i] = dombatch.NewError(item.ID, fmt.Errorf("upsert: %w", err))
			continue
		}

		if created {
			results[i] = dombatch.NewCreated(item.ID)
		} else {
			results[i] = dombatch.NewUpdated(item.ID)
		}
	}

	return results
}

// Delete removes documents by ID in batch.
func (s *Service) Delete(ctx context.Context, collectionName string, ids []string) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))

	if len(ids) > s.maxBatchSize {
		for i, id := range ids {
			results[i] = dombatch.NewError(id,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidSchema))
		}
		return results
	}

	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		for i, id := range ids {
			results[i] = dombatch.NewError(id, fmt.Errorf("get collection: %w", err))
		}
		return results
	}

	for i, id := range ids {
		if err := s.del.Delete(ctx, collectionName, id); err != nil {
			if errors.Is(err, domain.ErrDocumentNotFound) {
				results[i] = dombatch.NewError(id, domain.ErrDocumentNotFound)
			} else {
				results[i] = dombatch.NewError(id, fmt.Errorf("delete: %w", err))
			}
			continue
		}
		results[i] = dombatch.NewDeleted(id)
	}

	return results
}

func validateItemFields(doc *domain.Document, fieldTypes map[string]field.Type) error {
	for k := range doc.Tags {
		ft, ok := fieldTypes[k]
		if !ok {
			return fmt.Errorf("unknown field %q: %w", k, domain.ErrInvalidSchema)
		}
		if ft == field.Numeric {
			return fmt.Errorf("field %q is numeric, got string value: %w", k, domain.ErrInvalidSchema)
		}
	}
	for k := range doc.Numerics {
		ft, ok := fieldTypes[k]
		if !ok {
			return fmt.Errorf("unknown field %q: %w", k, domain.ErrInvalidSchema)
		}
		if ft != field.Numeric {
			return fmt.Errorf("field %q is %s, not numeric: %w", k, ft, domain.ErrInvalidSchema)
		}
	}
	return nil
}
