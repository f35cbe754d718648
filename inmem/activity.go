package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/selinkarabicakkk/ecommerce-backend/activity"
)

// EventStore is an in-memory activity.Store used by engine unit tests and
// local development. Aggregations mirror the pg store's semantics,
// including the product-id ascending tie-break.
type EventStore struct {
	lastId int64
	events []activity.Event
	mutex  sync.RWMutex
}

func NewEventStore() *EventStore {
	return &EventStore{
		events: make([]activity.Event, 0, 64),
	}
}

func (s *EventStore) Record(ctx context.Context, event activity.Event) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.lastId++
	event.Id = s.lastId
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	s.events = append(s.events, event)
	return event.Id, nil
}

func (s *EventStore) ProductCounts(ctx context.Context, types []activity.Type,
	since time.Time, limit int) ([]activity.ProductCount, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	wanted := make(map[activity.Type]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	counts := make(map[int64]int64)
	for _, event := range s.events {
		if _, ok := wanted[event.Type]; !ok {
			continue
		}
		if event.CreatedAt.Before(since) {
			continue
		}
		counts[event.ProductId]++
	}
	return rankCounts(counts, limit), nil
}

func (s *EventStore) RecentlyViewed(ctx context.Context, userId int64, limit int) ([]int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	views := make([]activity.Event, 0, limit)
	for _, event := range s.events {
		if event.UserId == userId && event.Type == activity.TypeView {
			views = append(views, event)
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		}
		return views[i].Id > views[j].Id
	})

	productIds := make([]int64, 0, limit)
	for _, event := range views {
		if len(productIds) == limit {
			break
		}
		productIds = append(productIds, event.ProductId)
	}
	return productIds, nil
}

func (s *EventStore) PurchasedBy(ctx context.Context, userId int64) ([]int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	seen := make(map[int64]struct{})
	productIds := make([]int64, 0, 8)
	for _, event := range s.events {
		if event.UserId != userId || event.Type != activity.TypePurchase {
			continue
		}
		if _, ok := seen[event.ProductId]; ok {
			continue
		}
		seen[event.ProductId] = struct{}{}
		productIds = append(productIds, event.ProductId)
	}
	return productIds, nil
}

func (s *EventStore) CoPurchaseCounts(ctx context.Context, anchorId int64, limit int) ([]activity.ProductCount, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	purchasers := make(map[int64]struct{})
	for _, event := range s.events {
		if event.Type == activity.TypePurchase && event.ProductId == anchorId {
			purchasers[event.UserId] = struct{}{}
		}
	}

	counts := make(map[int64]int64)
	for _, event := range s.events {
		if event.Type != activity.TypePurchase || event.ProductId == anchorId {
			continue
		}
		if _, ok := purchasers[event.UserId]; !ok {
			continue
		}
		counts[event.ProductId]++
	}
	return rankCounts(counts, limit), nil
}

func (s *EventStore) ByUser(ctx context.Context, userId int64, limit int) ([]activity.Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := make([]activity.Event, 0, limit)
	for _, event := range s.events {
		if event.UserId == userId {
			events = append(events, event)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.After(events[j].CreatedAt)
		}
		return events[i].Id > events[j].Id
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func rankCounts(counts map[int64]int64, limit int) []activity.ProductCount {
	ranked := make([]activity.ProductCount, 0, len(counts))
	for productId, count := range counts {
		ranked = append(ranked, activity.ProductCount{ProductId: productId, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].ProductId < ranked[j].ProductId
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
