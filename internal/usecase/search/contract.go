package search

import (
	"context"

	domcol "github.com/kailas-cloud/docdex/internal/domain/collection"
	"github.com/kailas-cloud/docdex/internal/domain/search"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	Execute(ctx context.Context, req search.Request) (search.Response, error)
}

// CollectionReader reads collections for existence and schema checks.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}
