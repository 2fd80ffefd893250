package health

import (
	"context"

	domcol "github.com/kailas-cloud/docdex/internal/domain/collection"
)

// DBPinger checks search engine availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CollectionLister checks that collection metadata is readable.
type CollectionLister interface {
	List(ctx context.Context) ([]domcol.Collection, error)
}
