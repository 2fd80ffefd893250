package docdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/docdex/internal/db"
	dbElastic "github.com/kailas-cloud/docdex/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/docdex/internal/db/redis"
	"github.com/kailas-cloud/docdex/internal/domain"
	dombatch "github.com/kailas-cloud/docdex/internal/domain/batch"
	domcol "github.com/kailas-cloud/docdex/internal/domain/collection"
	"github.com/kailas-cloud/docdex/internal/domain/collection/field"
	domsearch "github.com/kailas-cloud/docdex/internal/domain/search"
	collectionrepo "github.com/kailas-cloud/docdex/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/docdex/internal/repository/document"
	searchrepo "github.com/kailas-cloud/docdex/internal/repository/search"
	batchuc "github.com/kailas-cloud/docdex/internal/usecase/batch"
	collectionuc "github.com/kailas-cloud/docdex/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/docdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docdex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so services can be swapped in tests.
type collectionUseCase interface {
	Create(ctx context.Context, name string, fields []field.Field) (domcol.Collection, error)
	Get(ctx context.Context, name string) (domcol.Collection, error)
	List(ctx context.Context) ([]domcol.Collection, error)
	Delete(ctx context.Context, name string) error
}

type documentUseCase interface {
	Upsert(ctx context.Context, col string, doc *domain.Document) (bool, error)
	Get(ctx context.Context, col, id string) (domain.Document, error)
	List(ctx context.Context, col, cursor string, limit int) ([]domain.Document, string, error)
	Delete(ctx context.Context, col, id string) error
	Count(ctx context.Context, col string) (int, error)
}

type batchUseCase interface {
	Upsert(ctx context.Context, col string, docs []domain.Document) []dombatch.Result
	Delete(ctx context.Context, col string, ids []string) []dombatch.Result
}

type searchUseCase interface {
	Search(ctx context.Context, req domsearch.Request) (domsearch.Response, error)
	MultiSearch(ctx context.Context, reqs []domsearch.Request) ([]domsearch.Response, error)
	MultiSearchFused(ctx context.Context, reqs []domsearch.Request, limit int) ([]domsearch.Hit, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the docdex entry point.
type Client struct {
	store     db.Store
	collSvc   collectionUseCase
	docSvc    documentUseCase
	searchSvc searchUseCase
	batchSvc  batchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a docdex Client and connects to the search engine.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("docdex: engine address required (use WithRedis or WithElasticsearch)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("docdex: engine not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("docdex: create redis store: %w", err)
		}
		return s, nil
	case "elastic":
		s, err := dbElastic.NewStore(dbElastic.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("docdex: create elasticsearch store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("docdex: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	collRepo := collectionrepo.New(store)
	docRepo := documentrepo.New(store)
	searchRepo := searchrepo.New(store)

	collSvc := collectionuc.New(collRepo)
	docSvc := documentuc.New(docRepo, collRepo)
	if cfg.defaultPageSize > 0 || cfg.maxPageSize > 0 {
		docSvc = docSvc.WithPagination(cfg.defaultPageSize, cfg.maxPageSize)
	}
	searchSvc := searchuc.New(searchRepo, collRepo)
	batchSvc := batchuc.New(docRepo, docRepo, collRepo)
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}
	healthSvc := healthuc.New(store, collRepo)

	return &Client{
		store:     store,
		collSvc:   collSvc,
		docSvc:    docSvc,
		searchSvc: searchSvc,
		batchSvc:  batchSvc,
		healthSvc: healthSvc,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks engine connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Collections returns the collection management service.
func (c *Client) Collections() *CollectionService {
	return &CollectionService{svc: c.collSvc, obs: c.obs}
}

// Documents returns the document service for a given collection.
func (c *Client) Documents(collection string) *DocumentService {
	return &DocumentService{
		collection: collection,
		docSvc:     c.docSvc,
		batchSvc:   c.batchSvc,
		obs:        c.obs,
	}
}

// Search returns the search service for a given collection.
func (c *Client) Search(collection string) *SearchService {
	return &SearchService{
		collection: collection,
		svc:        c.searchSvc,
		obs:        c.obs,
	}
}
