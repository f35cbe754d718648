// Package recommend turns the raw activity event stream into ranked
// product lists: popular now, personalized by browsing history, frequently
// bought together and related by category. Every query recomputes from raw
// events at call time; there are no rolling counters to invalidate.
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/selinkarabicakkk/ecommerce-backend/activity"
	"github.com/selinkarabicakkk/ecommerce-backend/catalog"
)

const (
	DefaultWindowDays    = 30
	DefaultPopularLimit  = 8
	DefaultForUserLimit  = 8
	DefaultTogetherLimit = 4
	DefaultRelatedLimit  = 8

	// How many of the user's latest view events seed the personalized
	// recommendations.
	recencyWindow = 10

	MaxLimit      = 50
	MaxWindowDays = 365
)

type Service struct {
	Events  activity.Store
	Catalog catalog.Store

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Popular ranks products by how many view and purchase events they got in
// the last "windowDays" days, most active first.
func (s *Service) Popular(ctx context.Context, windowDays int, limit int) ([]catalog.Product, error) {
	since := s.now().AddDate(0, 0, -windowDays)
	counts, err := s.Events.ProductCounts(ctx,
		[]activity.Type{activity.TypeView, activity.TypePurchase}, since, limit)
	if err != nil {
		return nil, fmt.Errorf("product counts: %w", err)
	}
	return s.hydrate(ctx, countedIds(counts))
}

// ForUser picks catalog products out of the categories the user browsed
// lately, never repeating anything they already viewed or purchased. This
// is a filter, not a scored ranking: within the filtered set the catalog's
// default order stands.
func (s *Service) ForUser(ctx context.Context, userId int64, limit int) ([]catalog.Product, error) {
	recent, err := s.Events.RecentlyViewed(ctx, userId, recencyWindow)
	if err != nil {
		return nil, fmt.Errorf("recently viewed: %w", err)
	}
	recentIds := dedupe(recent)
	if len(recentIds) == 0 {
		return []catalog.Product{}, nil
	}

	purchased, err := s.Events.PurchasedBy(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("purchased by: %w", err)
	}

	// viewed products deleted from the catalog contribute no category and
	// drop out here, same as at hydration.
	viewedProducts, err := s.Catalog.ProductsByIds(ctx, recentIds)
	if err != nil {
		return nil, fmt.Errorf("resolve viewed products: %w", err)
	}
	categoryIds := make([]int64, 0, len(viewedProducts))
	seenCategories := make(map[int64]struct{}, len(viewedProducts))
	for _, product := range viewedProducts {
		if _, ok := seenCategories[product.CategoryId]; ok {
			continue
		}
		seenCategories[product.CategoryId] = struct{}{}
		categoryIds = append(categoryIds, product.CategoryId)
	}
	if len(categoryIds) == 0 {
		return []catalog.Product{}, nil
	}

	excludeIds := dedupe(append(recentIds, purchased...))
	products, err := s.Catalog.ProductsByCategories(ctx, categoryIds, excludeIds, limit)
	if err != nil {
		return nil, fmt.Errorf("products by categories: %w", err)
	}
	return products, nil
}

// BoughtTogether ranks products by how often they appear in purchases made
// by users who also purchased the anchor product. An anchor nobody bought
// yields an empty list, not an error.
func (s *Service) BoughtTogether(ctx context.Context, anchorId int64, limit int) ([]catalog.Product, error) {
	exists, err := s.Catalog.ProductExists(ctx, anchorId)
	if err != nil {
		return nil, fmt.Errorf("anchor exists: %w", err)
	}
	if !exists {
		return nil, catalog.ErrProductNotFound
	}

	counts, err := s.Events.CoPurchaseCounts(ctx, anchorId, limit)
	if err != nil {
		return nil, fmt.Errorf("co-purchase counts: %w", err)
	}
	return s.hydrate(ctx, countedIds(counts))
}

// Related lists other products from the same category, catalog order.
func (s *Service) Related(ctx context.Context, productId int64, limit int) ([]catalog.Product, error) {
	product, err := s.Catalog.ProductById(ctx, productId)
	if err != nil {
		return nil, err
	}

	products, err := s.Catalog.ProductsByCategory(ctx, product.CategoryId, product.Id, limit)
	if err != nil {
		return nil, fmt.Errorf("products by category: %w", err)
	}
	return products, nil
}

// hydrate resolves ranked ids back to catalog products preserving rank
// order. Ids missing from the catalog are dropped without a trace - the
// result may come out shorter than the id list.
func (s *Service) hydrate(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	products, err := s.Catalog.ProductsByIds(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate products: %w", err)
	}

	byId := make(map[int64]catalog.Product, len(products))
	for _, product := range products {
		byId[product.Id] = product
	}

	ordered := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := byId[id]; ok {
			ordered = append(ordered, product)
		}
	}
	return ordered, nil
}

func countedIds(counts []activity.ProductCount) []int64 {
	ids := make([]int64, len(counts))
	for i, count := range counts {
		ids[i] = count.ProductId
	}
	return ids
}

// dedupe keeps first occurrences, preserving order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
