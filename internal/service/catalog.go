package service

import (
	"context"
	"errors"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/apperr"
	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store"
)

// CatalogService covers category and product administration plus the
// public browsing queries.
type CatalogService struct {
	store  store.Store
	logger *zap.Logger
}

func NewCatalogService(st store.Store, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: st, logger: logger}
}

// --- Categories ---

func (s *CatalogService) CreateCategory(ctx context.Context, input models.CategoryInput) (*models.Category, error) {
	exists, err := s.store.Categories().ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, apperr.Internal("failed to check category name", err)
	}
	if exists {
		return nil, apperr.Conflict("category with name %q already exists", input.Name)
	}

	cat := &models.Category{
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if err := s.store.Categories().Create(ctx, cat); err != nil {
		return nil, apperr.Internal("failed to create category", err)
	}
	return cat, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, input models.CategoryInput) (*models.Category, error) {
	cat, err := s.store.Categories().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("category not found with id: %d", id)
		}
		return nil, apperr.Internal("failed to load category", err)
	}

	if cat.Name != input.Name {
		exists, err := s.store.Categories().ExistsByName(ctx, input.Name)
		if err != nil {
			return nil, apperr.Internal("failed to check category name", err)
		}
		if exists {
			return nil, apperr.Conflict("category with name %q already exists", input.Name)
		}
	}

	cat.Name = input.Name
	cat.Slug = slug.Make(input.Name)
	cat.Description = input.Description
	cat.ImageURL = input.ImageURL
	if err := s.store.Categories().Update(ctx, cat); err != nil {
		return nil, apperr.Internal("failed to update category", err)
	}
	return s.withProductCount(ctx, cat)
}

// DeleteCategory refuses to delete a category that still has products;
// they must be reassigned or removed first.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.store.Categories().GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("category not found with id: %d", id)
		}
		return apperr.Internal("failed to load category", err)
	}

	count, err := s.store.Products().CountByCategory(ctx, id)
	if err != nil {
		return apperr.Internal("failed to count products", err)
	}
	if count > 0 {
		return apperr.Conflict("cannot delete category with %d products. reassign or delete products first", count)
	}

	if err := s.store.Categories().Delete(ctx, id); err != nil {
		return apperr.Internal("failed to delete category", err)
	}
	return nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	cat, err := s.store.Categories().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("category not found with id: %d", id)
		}
		return nil, apperr.Internal("failed to load category", err)
	}
	return s.withProductCount(ctx, cat)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list categories", err)
	}
	for i := range cats {
		if _, err := s.withProductCount(ctx, &cats[i]); err != nil {
			return nil, err
		}
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

func (s *CatalogService) withProductCount(ctx context.Context, cat *models.Category) (*models.Category, error) {
	count, err := s.store.Products().CountByCategory(ctx, cat.ID)
	if err != nil {
		return nil, apperr.Internal("failed to count products", err)
	}
	cat.ProductCount = count
	return cat, nil
}

// --- Products ---

func (s *CatalogService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	cat, err := s.store.Categories().GetByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("category not found with id: %d", input.CategoryID)
		}
		return nil, apperr.Internal("failed to load category", err)
	}

	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		StockQty:    input.StockQty,
		CategoryID:  cat.ID,
		ImageURL:    input.ImageURL,
		VideoURL:    input.VideoURL,
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, apperr.Internal("failed to create product", err)
	}
	product.CategoryName = cat.Name
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("product not found with id: %d", id)
		}
		return nil, apperr.Internal("failed to load product", err)
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, params models.ListProductsParams) (*models.Page[models.Product], error) {
	products, total, err := s.store.Products().List(ctx, params)
	if err != nil {
		return nil, apperr.Internal("failed to list products", err)
	}
	p := models.NewPage(products, params.Page, params.Size, total)
	return &p, nil
}

// DeleteProduct refuses to delete a product still referenced by any cart
// or order item. Order items reference products forever, so products with
// sales history stay.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.store.Products().GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("product not found with id: %d", id)
		}
		return apperr.Internal("failed to load product", err)
	}

	referenced, err := s.store.Products().IsReferenced(ctx, id)
	if err != nil {
		return apperr.Internal("failed to check product references", err)
	}
	if referenced {
		return apperr.Conflict("cannot delete product %d: it is referenced by carts or orders", id)
	}

	if err := s.store.Products().Delete(ctx, id); err != nil {
		return apperr.Internal("failed to delete product", err)
	}
	return nil
}
