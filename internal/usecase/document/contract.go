package document

import (
	"context"

	domcol "github.com/kailas-cloud/docdex/internal/domain/collection"
	"github.com/kailas-cloud/docdex/internal/domain"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Upsert(ctx context.Context, collectionName string, doc *domain.Document) (created bool, err error)
	UpsertMulti(ctx context.Context, collectionName string, docs []*domain.Document) error
	Get(ctx context.Context, collectionName, id string) (domain.Document, error)
	List(ctx context.Context, collectionName, cursor string, limit int) (
		docs []domain.Document, nextCursor string, err error,
	)
	Delete(ctx context.Context, collectionName, id string) error
	Count(ctx context.Context, collectionName string) (int, error)
}

// CollectionReader reads collections for existence and schema validation.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}
