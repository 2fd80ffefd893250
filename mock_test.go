package docdex

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/domain"
	dombatch "github.com/kailas-cloud/docdex/internal/domain/batch"
	domcol "github.com/kailas-cloud/docdex/internal/domain/collection"
	"github.com/kailas-cloud/docdex/internal/domain/collection/field"
	domsearch "github.com/kailas-cloud/docdex/internal/domain/search"
)

// --- collectionUseCase mock ---

type mockCollectionUC struct {
	createFn func(ctx context.Context, name string, fields []field.Field) (domcol.Collection, error)
	getFn    func(ctx context.Context, name string) (domcol.Collection, error)
	listFn   func(ctx context.Context) ([]domcol.Collection, error)
	deleteFn func(ctx context.Context, name string) error
}

func (m *mockCollectionUC) Create(
	ctx context.Context, name string, fields []field.Field,
) (domcol.Collection, error) {
	return m.createFn(ctx, name, fields)
}

func (m *mockCollectionUC) Get(ctx context.Context, name string) (domcol.Collection, error) {
	return m.getFn(ctx, name)
}

func (m *mockCollectionUC) List(ctx context.Context) ([]domcol.Collection, error) {
	return m.listFn(ctx)
}

func (m *mockCollectionUC) Delete(ctx context.Context, name string) error {
	return m.deleteFn(ctx, name)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	upsertFn func(ctx context.Context, col string, doc *domain.Document) (bool, error)
	getFn    func(ctx context.Context, col, id string) (domain.Document, error)
	listFn   func(ctx context.Context, col, cursor string, limit int) ([]domain.Document, string, error)
	deleteFn func(ctx context.Context, col, id string) error
	countFn  func(ctx context.Context, col string) (int, error)
}

func (m *mockDocumentUC) Upsert(ctx context.Context, col string, doc *domain.Document) (bool, error) {
	return m.upsertFn(ctx, col, doc)
}

func (m *mockDocumentUC) Get(ctx context.Context, col, id string) (domain.Document, error) {
	return m.getFn(ctx, col, id)
}

func (m *mockDocumentUC) List(
	ctx context.Context, col, cursor string, limit int,
) ([]domain.Document, string, error) {
	return m.listFn(ctx, col, cursor, limit)
}

func (m *mockDocumentUC) Delete(ctx context.Context, col, id string) error {
	return m.deleteFn(ctx, col, id)
}

func (m *mockDocumentUC) Count(ctx context.Context, col string) (int, error) {
	return m.countFn(ctx, col)
}

// --- batchUseCase mock ---

type mockBatchUC struct {
	upsertFn func(ctx context.Context, col string, docs []domain.Document) []dombatch.Result
	deleteFn func(ctx context.Context, col string, ids []string) []dombatch.Result
}

func (m *mockBatchUC) Upsert(ctx context.Context, col string, docs []domain.Document) []dombatch.Result {
	return m.upsertFn(ctx, col, docs)
}

func (m *mockBatchUC) Delete(ctx context.Context, col string, ids []string) []dombatch.Result {
	return m.deleteFn(ctx, col, ids)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req domsearch.Request) (domsearch.Response, error)
	multiFn  func(ctx context.Context, reqs []domsearch.Request) ([]domsearch.Response, error)
	fusedFn  func(ctx context.Context, reqs []domsearch.Request, limit int) ([]domsearch.Hit, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req domsearch.Request) (domsearch.Response, error) {
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) MultiSearch(
	ctx context.Context, reqs []domsearch.Request,
) ([]domsearch.Response, error) {
	return m.multiFn(ctx, reqs)
}

func (m *mockSearchUC) MultiSearchFused(
	ctx context.Context, reqs []domsearch.Request, limit int,
) ([]domsearch.Hit, error) {
	return m.fusedFn(ctx, reqs, limit)
}

// --- helpers ---

func testClient(
	collSvc collectionUseCase,
	docSvc documentUseCase,
	batchSvc batchUseCase,
	searchSvc searchUseCase,
) *Client {
	return &Client{
		collSvc:   collSvc,
		docSvc:    docSvc,
		searchSvc: searchSvc,
		batchSvc:  batchSvc,
	}
}

func mustField(name string, ft field.Type) field.Field {
	return field.Reconstruct(name, ft)
}
