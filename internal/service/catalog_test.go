package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/apperr"
	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store/memory"
)

func newCatalogService(t *testing.T) (*CatalogService, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewCatalogService(st, zap.NewNop()), st
}

func TestCreateCategorySlugAndDuplicateGuard(t *testing.T) {
	svc, _ := newCatalogService(t)

	cat, err := svc.CreateCategory(context.Background(), models.CategoryInput{Name: "Home Office"})
	require.NoError(t, err)
	assert.Equal(t, "home-office", cat.Slug)

	_, err = svc.CreateCategory(context.Background(), models.CategoryInput{Name: "Home Office"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestUpdateCategoryKeepingOwnNameIsNotADuplicate(t *testing.T) {
	svc, _ := newCatalogService(t)

	cat, err := svc.CreateCategory(context.Background(), models.CategoryInput{Name: "Audio"})
	require.NoError(t, err)

	// Same name, new description: must not trip the duplicate guard.
	updated, err := svc.UpdateCategory(context.Background(), cat.ID, models.CategoryInput{
		Name: "Audio", Description: "Speakers and headphones",
	})
	require.NoError(t, err)
	assert.Equal(t, "Speakers and headphones", updated.Description)
}

func TestDeleteCategoryWithProductsConflicts(t *testing.T) {
	svc, _ := newCatalogService(t)

	cat, err := svc.CreateCategory(context.Background(), models.CategoryInput{Name: "Displays"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), models.ProductInput{
		Name: "Monitor", Price: 199.99, StockQty: 5, CategoryID: cat.ID,
	})
	require.NoError(t, err)

	err = svc.DeleteCategory(context.Background(), cat.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// Still listed, with its product count.
	got, err := svc.GetCategory(context.Background(), cat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ProductCount)
}

func TestCreateProductRequiresExistingCategory(t *testing.T) {
	svc, _ := newCatalogService(t)

	_, err := svc.CreateProduct(context.Background(), models.ProductInput{
		Name: "Orphan", Price: 10.00, CategoryID: 999,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListProductsPaginatedAndFiltered(t *testing.T) {
	svc, _ := newCatalogService(t)

	audio, err := svc.CreateCategory(context.Background(), models.CategoryInput{Name: "Audio"})
	require.NoError(t, err)
	video, err := svc.CreateCategory(context.Background(), models.CategoryInput{Name: "Video"})
	require.NoError(t, err)

	for i, name := range []string{"Speaker", "Headphones", "Microphone"} {
		_, err := svc.CreateProduct(context.Background(), models.ProductInput{
			Name: name, Price: float64(10 * (i + 1)), StockQty: 5, CategoryID: audio.ID,
		})
		require.NoError(t, err)
	}
	_, err = svc.CreateProduct(context.Background(), models.ProductInput{
		Name: "Camera", Price: 300, StockQty: 5, CategoryID: video.ID,
	})
	require.NoError(t, err)

	page, err := svc.ListProducts(context.Background(), models.ListProductsParams{
		Page: 0, Size: 2, SortField: "price", CategoryID: audio.ID,
	})
	require.NoError(t, err)

	require.Len(t, page.Content, 2)
	assert.Equal(t, "Speaker", page.Content[0].Name)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.First)
	assert.False(t, page.Last)
}

func TestDeleteProductGuardedWhileReferenced(t *testing.T) {
	svc, st := newCatalogService(t)

	cat, err := svc.CreateCategory(context.Background(), models.CategoryInput{Name: "Accessories"})
	require.NoError(t, err)
	product, err := svc.CreateProduct(context.Background(), models.ProductInput{
		Name: "Cable", Price: 5.00, StockQty: 50, CategoryID: cat.ID,
	})
	require.NoError(t, err)

	carts := NewCartService(st, zap.NewNop())
	_, err = carts.AddItem(context.Background(), 1, product.ID, 1)
	require.NoError(t, err)

	err = svc.DeleteProduct(context.Background(), product.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// Once the cart lets go, the delete goes through.
	require.NoError(t, carts.ClearCart(context.Background(), 1))
	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))

	_, err = svc.GetProduct(context.Background(), product.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
