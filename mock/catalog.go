package mock

import (
	"context"

	"github.com/selinkarabicakkk/ecommerce-backend/catalog"
)

type CatalogStore struct {
	ProductByIdFn          func(ctx context.Context, id int64) (*catalog.Product, error)
	ProductExistsFn        func(ctx context.Context, id int64) (bool, error)
	ProductsByIdsFn        func(ctx context.Context, ids []int64) ([]catalog.Product, error)
	ProductsByCategoryFn   func(ctx context.Context, categoryId int64, excludeId int64, limit int) ([]catalog.Product, error)
	ProductsByCategoriesFn func(ctx context.Context, categoryIds []int64, excludeIds []int64, limit int) ([]catalog.Product, error)
	CategoriesFn           func(ctx context.Context) ([]catalog.Category, error)
}

func (s CatalogStore) ProductById(ctx context.Context, id int64) (*catalog.Product, error) {
	return s.ProductByIdFn(ctx, id)
}

func (s CatalogStore) ProductExists(ctx context.Context, id int64) (bool, error) {
	return s.ProductExistsFn(ctx, id)
}

func (s CatalogStore) ProductsByIds(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	return s.ProductsByIdsFn(ctx, ids)
}

func (s CatalogStore) ProductsByCategory(ctx context.Context, categoryId int64,
	excludeId int64, limit int) ([]catalog.Product, error) {
	return s.ProductsByCategoryFn(ctx, categoryId, excludeId, limit)
}

func (s CatalogStore) ProductsByCategories(ctx context.Context, categoryIds []int64,
	excludeIds []int64, limit int) ([]catalog.Product, error) {
	return s.ProductsByCategoriesFn(ctx, categoryIds, excludeIds, limit)
}

func (s CatalogStore) Categories(ctx context.Context) ([]catalog.Category, error) {
	return s.CategoriesFn(ctx)
}
