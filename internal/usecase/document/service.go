package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/collection/field"
)

// Service handles document CRUD with schema validation.
type Service struct {
	repo            Repository
	colls           CollectionReader
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service.
func New(repo Repository, colls CollectionReader) *Service {
	return &Service{
		repo:            repo,
		colls:           colls,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Upsert creates or updates a document.
// Returns true if the document was created, false if updated.
func (s *Service) Upsert(ctx context.Context, collectionName string, doc *domain.Document) (bool, error) {
	col, err := s.colls.Get(ctx, collectionName)
	if err != nil {
		return false, fmt.Errorf("get collection: %w", err)
	}

	if err := validateDocFields(doc, col.Fields()); err != nil {
		return false, err
	}

	created, err := s.repo.Upsert(ctx, collectionName, doc)
	if err != nil {
		return false, fmt.Errorf("upsert document: %w", err)
	}

	return created, nil
}

// UpsertMulti stores a batch of documents after validating each one.
func (s *Service) UpsertMulti(ctx context.Context, collectionName string, docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	col, err := s.colls.Get(ctx, collectionName)
	if err != nil {
		return fmt.Errorf("get collection: %w", err)
	}

	for _, doc := range docs {
		if err := validateDocFields(doc, col.Fields()); err != nil {
			return fmt.Errorf("document %s: %w", doc.ID, err)
		}
	}

	if err := s.repo.UpsertMulti(ctx, collectionName, docs); err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}
	return nil
}

// Get retrieves a document by collection and ID.
func (s *Service) Get(ctx context.Context, collectionName, id string) (domain.Document, error) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return domain.Document{}, fmt.Errorf("get collection: %w", err)
	}

	doc, err := s.repo.Get(ctx, collectionName, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns a paginated list of documents.
func (s *Service) List(
	ctx context.Context, collectionName, cursor string, limit int,
) ([]domain.Document, string, error) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return nil, "", fmt.Errorf("get collection: %w", err)
	}

	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	docs, nextCursor, err := s.repo.List(ctx, collectionName, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	return docs, nextCursor, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, collectionName, id string) error {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return fmt.Errorf("get collection: %w", err)
	}

	if err := s.repo.Delete(ctx, collectionName, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Count returns the number of documents in a collection.
func (s *Service) Count(ctx context.Context, collectionName string) (int, error) {
	if _, err := s.colls.Get(ctx, collectionName); err != nil {
		return 0, fmt.Errorf("get collection: %w", err)
	}
	count, err := s.repo.Count(ctx, collectionName)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// validateDocFields checks Tags/Numerics against the collection schema.
// String values bind to text and tag fields, numeric values to numeric fields.
func validateDocFields(doc *domain.Document, fields []field.Field) error {
	fieldTypes := make(map[string]field.Type)
	for _, f := range fields {
		fieldTypes[f.Name()] = f.FieldType()
	}

	for k := range doc.Tags {
		ft, ok := fieldTypes[k]
		if !ok {
			return fmt.Errorf(
				"unknown field %q (not in collection schema): %w",
				k, domain.ErrInvalidSchema,
			)
		}
		if ft == field.Numeric {
			return fmt.Errorf(
				"field %q is numeric, got string value: %w",
				k, domain.ErrInvalidSchema,
			)
		}
	}

	for k := range doc.Numerics {
		ft, ok := fieldTypes[k]
		if !ok {
			return fmt.Errorf(
				"unknown field %q (not in collection schema): %w",
				k, domain.ErrInvalidSchema,
			)
		}
		if ft != field.Numeric {
			return fmt.Errorf(
				"field %q is %s, not numeric: %w",
				k, ft, domain.ErrInvalidSchema,
			)
		}
	}

	return nil
}
