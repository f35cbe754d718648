package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/selinkarabicakkk/ecommerce-backend/activity"
	"github.com/stretchr/testify/assert"
)

func TestEventStoreRecordAndHistory(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewEventStore()

	{
		events, err := s.ByUser(ctx, 5, 10)
		if assert.NoError(err) {
			assert.Equal(0, len(events))
		}
	}

	at := time.Date(2022, 2, 1, 10, 0, 0, 0, time.UTC)
	id1, err := s.Record(ctx, activity.Event{UserId: 5, ProductId: 1, Type: activity.TypeView, CreatedAt: at})
	if !assert.NoError(err) {
		return
	}
	id2, err := s.Record(ctx, activity.Event{UserId: 5, ProductId: 2, Type: activity.TypeCart, CreatedAt: at.Add(time.Minute)})
	if !assert.NoError(err) {
		return
	}
	assert.Greater(id2, id1)

	events, err := s.ByUser(ctx, 5, 10)
	if !assert.NoError(err) {
		return
	}
	if assert.Equal(2, len(events)) {
		// newest first
		assert.Equal(int64(2), events[0].ProductId)
		assert.Equal(int64(1), events[1].ProductId)
	}
}

func TestEventStoreProductCounts(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewEventStore()
	at := time.Date(2022, 2, 1, 10, 0, 0, 0, time.UTC)
	seed := []activity.Event{
		{UserId: 1, ProductId: 2, Type: activity.TypeView, CreatedAt: at},
		{UserId: 2, ProductId: 2, Type: activity.TypeView, CreatedAt: at},
		{UserId: 1, ProductId: 1, Type: activity.TypeView, CreatedAt: at},
		{UserId: 1, ProductId: 3, Type: activity.TypeView, CreatedAt: at.AddDate(0, -3, 0)},
		{UserId: 1, ProductId: 4, Type: activity.TypeCart, CreatedAt: at},
	}
	for _, event := range seed {
		_, err := s.Record(ctx, event)
		if !assert.NoError(err) {
			return
		}
	}

	counts, err := s.ProductCounts(ctx, []activity.Type{activity.TypeView}, at.AddDate(0, 0, -30), 10)
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]activity.ProductCount{
		{ProductId: 2, Count: 2},
		{ProductId: 1, Count: 1},
	}, counts)
}

func TestEventStoreCoPurchaseCounts(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s := NewEventStore()
	at := time.Date(2022, 2, 1, 10, 0, 0, 0, time.UTC)
	seed := []activity.Event{
		{UserId: 1, ProductId: 1, Type: activity.TypePurchase, CreatedAt: at},
		{UserId: 1, ProductId: 2, Type: activity.TypePurchase, CreatedAt: at},
		{UserId: 2, ProductId: 1, Type: activity.TypePurchase, CreatedAt: at},
		{UserId: 2, ProductId: 2, Type: activity.TypePurchase, CreatedAt: at},
		{UserId: 2, ProductId: 3, Type: activity.TypePurchase, CreatedAt: at},
		// u3 never bought the anchor, so their purchases don't count
		{UserId: 3, ProductId: 4, Type: activity.TypePurchase, CreatedAt: at},
	}
	for _, event := range seed {
		_, err := s.Record(ctx, event)
		if !assert.NoError(err) {
			return
		}
	}

	counts, err := s.CoPurchaseCounts(ctx, 1, 10)
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]activity.ProductCount{
		{ProductId: 2, Count: 2},
		{ProductId: 3, Count: 1},
	}, counts)
}
