package mock

import (
	"context"
	"time"

	"github.com/selinkarabicakkk/ecommerce-backend/activity"
)

type EventStore struct {
	RecordFn           func(ctx context.Context, event activity.Event) (int64, error)
	ProductCountsFn    func(ctx context.Context, types []activity.Type, since time.Time, limit int) ([]activity.ProductCount, error)
	RecentlyViewedFn   func(ctx context.Context, userId int64, limit int) ([]int64, error)
	PurchasedByFn      func(ctx context.Context, userId int64) ([]int64, error)
	CoPurchaseCountsFn func(ctx context.Context, anchorId int64, limit int) ([]activity.ProductCount, error)
	ByUserFn           func(ctx context.Context, userId int64, limit int) ([]activity.Event, error)
}

func (s EventStore) Record(ctx context.Context, event activity.Event) (int64, error) {
	return s.RecordFn(ctx, event)
}

func (s EventStore) ProductCounts(ctx context.Context, types []activity.Type,
	since time.Time, limit int) ([]activity.ProductCount, error) {
	return s.ProductCountsFn(ctx, types, since, limit)
}

func (s EventStore) RecentlyViewed(ctx context.Context, userId int64, limit int) ([]int64, error) {
	return s.RecentlyViewedFn(ctx, userId, limit)
}

func (s EventStore) PurchasedBy(ctx context.Context, userId int64) ([]int64, error) {
	return s.PurchasedByFn(ctx, userId)
}

func (s EventStore) CoPurchaseCounts(ctx context.Context, anchorId int64, limit int) ([]activity.ProductCount, error) {
	return s.CoPurchaseCountsFn(ctx, anchorId, limit)
}

func (s EventStore) ByUser(ctx context.Context, userId int64, limit int) ([]activity.Event, error) {
	return s.ByUserFn(ctx, userId, limit)
}
