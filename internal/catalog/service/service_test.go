package service

import (
	"context"
	"testing"

	"sirkap_backend/internal/catalog/repository"
	"sirkap_backend/internal/catalog/transport"
	"sirkap_backend/platform/apperr"
	"sirkap_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	products   map[uuid.UUID]repository.Product
	lastParams repository.ListProductsParams
}

func (r *stubRepository) GetProductByID(_ context.Context, id uuid.UUID) (repository.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return repository.Product{}, apperr.NotFound("product not found")
	}
	return p, nil
}

func (r *stubRepository) ListProducts(_ context.Context, params repository.ListProductsParams) ([]repository.Product, int, error) {
	r.lastParams = params
	out := make([]repository.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, 45, nil
}

func strPtr(s string) *string { return &s }

func newTestService() (*Service, *stubRepository, uuid.UUID) {
	id := uuid.New()
	repo := &stubRepository{products: map[uuid.UUID]repository.Product{
		id: {
			ID:          id,
			ItemName:    "Porcelain tile 60x60",
			Description: strPtr(`<p onclick="x()">Matt <b>finish</b></p><script>alert(1)</script>`),
			Origin:      strPtr("Spain"),
			Unit:        "sqm",
			BasePrice:   decimal.RequireFromString("85.50"),
			CostPrice:   decimal.RequireFromString("52.00"),
		},
	}}
	return New(repo, logger.New("development")), repo, id
}

func TestResolveSnapshotCopiesProduct(t *testing.T) {
	svc, _, id := newTestService()

	snap, err := svc.ResolveSnapshot(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, snap.ProductID)
	assert.Equal(t, "Porcelain tile 60x60", snap.ItemName)
	assert.Equal(t, "Spain", snap.Origin)
	assert.Equal(t, "sqm", snap.Unit)
	assert.True(t, snap.OriginalUnitPrice.Equal(decimal.RequireFromString("85.50")))
	assert.True(t, snap.DiscountedUnitPrice.Equal(snap.OriginalUnitPrice))
	assert.True(t, snap.CostPrice.Equal(decimal.RequireFromString("52")))
	assert.Nil(t, snap.ImageURL)
	assert.NotContains(t, snap.Description, "script")
	assert.NotContains(t, snap.Description, "onclick")
	assert.Contains(t, snap.Description, "<b>finish</b>")
}

func TestResolveSnapshotUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ResolveSnapshot(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListProductsClampsPaging(t *testing.T) {
	svc, repo, _ := newTestService()

	res, err := svc.ListProducts(context.Background(), transport.ListProductsRequest{
		Search:   "  tile ",
		Page:     3,
		PageSize: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, "tile", repo.lastParams.Search)
	assert.Equal(t, 100, repo.lastParams.Limit)
	assert.Equal(t, 200, repo.lastParams.Offset)
	assert.Equal(t, 100, res.PageSize)
	assert.Equal(t, 1, res.TotalPages)
	assert.Len(t, res.Items, 1)
}

func TestListProductsDefaults(t *testing.T) {
	svc, repo, _ := newTestService()

	res, err := svc.ListProducts(context.Background(), transport.ListProductsRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.PageSize)
	assert.Equal(t, 0, repo.lastParams.Offset)
	assert.Equal(t, 3, res.TotalPages)
}
