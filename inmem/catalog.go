package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/selinkarabicakkk/ecommerce-backend/catalog"
)

// CatalogStore is an in-memory catalog.Store. "Catalog default order" is
// product id ascending, matching the pg store.
type CatalogStore struct {
	lastId     int64
	products   map[int64]catalog.Product
	categories []catalog.Category
	mutex      sync.RWMutex
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		products: make(map[int64]catalog.Product),
	}
}

// Put inserts or replaces a product. Zero id assigns the next free one.
func (s *CatalogStore) Put(product catalog.Product) catalog.Product {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if product.Id == 0 {
		s.lastId++
		product.Id = s.lastId
	} else if product.Id > s.lastId {
		s.lastId = product.Id
	}
	s.products[product.Id] = product
	return product
}

// Delete tombstones a product, leaving any events referencing it dangling.
func (s *CatalogStore) Delete(id int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.products, id)
}

func (s *CatalogStore) PutCategory(category catalog.Category) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.categories = append(s.categories, category)
}

func (s *CatalogStore) ProductById(ctx context.Context, id int64) (*catalog.Product, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &product, nil
}

func (s *CatalogStore) ProductExists(ctx context.Context, id int64) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.products[id]
	return ok, nil
}

func (s *CatalogStore) ProductsByIds(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	products := make([]catalog.Product, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := s.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (s *CatalogStore) ProductsByCategory(ctx context.Context, categoryId int64,
	excludeId int64, limit int) ([]catalog.Product, error) {
	return s.ProductsByCategories(ctx, []int64{categoryId}, []int64{excludeId}, limit)
}

func (s *CatalogStore) ProductsByCategories(ctx context.Context, categoryIds []int64,
	excludeIds []int64, limit int) ([]catalog.Product, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	wanted := make(map[int64]struct{}, len(categoryIds))
	for _, id := range categoryIds {
		wanted[id] = struct{}{}
	}
	excluded := make(map[int64]struct{}, len(excludeIds))
	for _, id := range excludeIds {
		excluded[id] = struct{}{}
	}

	products := make([]catalog.Product, 0, limit)
	for _, product := range s.products {
		if _, ok := wanted[product.CategoryId]; !ok {
			continue
		}
		if _, ok := excluded[product.Id]; ok {
			continue
		}
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].Id < products[j].Id
	})
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (s *CatalogStore) Categories(ctx context.Context) ([]catalog.Category, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	categories := make([]catalog.Category, len(s.categories))
	copy(categories, s.categories)
	return categories, nil
}
