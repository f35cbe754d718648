package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	_ "github.com/uptrace/bun/driver/pgdriver"
)

var ErrUnknownType = errors.New("unknown activity type")

// Type of a single user-product interaction.
type Type string

const (
	TypeView     Type = "view"
	TypeCart     Type = "cart"
	TypeWishlist Type = "wishlist"
	TypePurchase Type = "purchase"
)

// ParseType validates a raw activity type. "purchase" parses fine here -
// keeping it off the public logging endpoint is the controller's job.
func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case TypeView, TypeCart, TypeWishlist, TypePurchase:
		return Type(raw), nil
	default:
		return "", ErrUnknownType
	}
}

// Event model representing database entity. Events are append-only: no
// update or delete path exists anywhere in this package.
type Event struct {
	bun.BaseModel `bun:"table:activity_event"`

	Id        int64     `bun:",pk,autoincrement"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UserId    int64     `bun:",notnull"`
	ProductId int64     `bun:",notnull"`
	Type      Type      `bun:",notnull,type:varchar(16)"`
}

// ProductCount is one row of a grouped-by-product aggregation.
type ProductCount struct {
	ProductId int64
	Count     int64
}

type Store interface {
	// Append one immutable event. Zero CreatedAt means "now" (left to the
	// database default). Returns the id of the stored event.
	Record(ctx context.Context, event Event) (int64, error)

	// Per-product event counts for events of the given types recorded at
	// "since" or later, most frequent first. Ties are ordered by product
	// id ascending - a deliberate determinism aid, not a relevance signal.
	ProductCounts(ctx context.Context, types []Type, since time.Time, limit int) ([]ProductCount, error)

	// Product ids of the user's most recent view events, newest first.
	// May contain duplicates when the user viewed a product twice.
	RecentlyViewed(ctx context.Context, userId int64, limit int) ([]int64, error)

	// Distinct product ids the user has ever purchased.
	PurchasedBy(ctx context.Context, userId int64) ([]int64, error)

	// Per-product purchase counts of products bought by users who also
	// bought "anchorId", excluding the anchor itself. Most frequent first,
	// ties by product id ascending.
	CoPurchaseCounts(ctx context.Context, anchorId int64, limit int) ([]ProductCount, error)

	// The user's most recent events, newest first.
	ByUser(ctx context.Context, userId int64, limit int) ([]Event, error)
}

type PgStore struct {
	DB *bun.DB
}

func (s PgStore) Record(ctx context.Context, event Event) (int64, error) {
	_, err := s.DB.NewInsert().
		Model(&event).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return event.Id, nil
}

func (s PgStore) ProductCounts(ctx context.Context, types []Type,
	since time.Time, limit int) ([]ProductCount, error) {
	if len(types) == 0 {
		return []ProductCount{}, nil
	}
	counts := make([]ProductCount, 0, limit)
	err := s.DB.NewSelect().
		Model((*Event)(nil)).
		Column("product_id").
		ColumnExpr("count(*) AS count").
		Where("type IN (?)", bun.In(types)).
		Where("created_at >= ?", since).
		Group("product_id").
		OrderExpr("count DESC, product_id ASC").
		Limit(limit).
		Scan(ctx, &counts)
	if err != nil {
		return nil, fmt.Errorf("product counts query: %w", err)
	}
	return counts, nil
}

func (s PgStore) RecentlyViewed(ctx context.Context, userId int64, limit int) ([]int64, error) {
	var productIds []int64
	err := s.DB.NewSelect().
		Model((*Event)(nil)).
		Column("product_id").
		Where("user_id=?", userId).
		Where("type=?", TypeView).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx, &productIds)
	if err != nil {
		return nil, fmt.Errorf("recently viewed query: %w", err)
	}
	return productIds, nil
}

func (s PgStore) PurchasedBy(ctx context.Context, userId int64) ([]int64, error) {
	var productIds []int64
	err := s.DB.NewSelect().
		Model((*Event)(nil)).
		ColumnExpr("DISTINCT product_id").
		Where("user_id=?", userId).
		Where("type=?", TypePurchase).
		Scan(ctx, &productIds)
	if err != nil {
		return nil, fmt.Errorf("purchased by query: %w", err)
	}
	return productIds, nil
}

func (s PgStore) CoPurchaseCounts(ctx context.Context, anchorId int64, limit int) ([]ProductCount, error) {
	purchasers := s.DB.NewSelect().
		Model((*Event)(nil)).
		Column("user_id").
		Where("type=?", TypePurchase).
		Where("product_id=?", anchorId)

	counts := make([]ProductCount, 0, limit)
	err := s.DB.NewSelect().
		Model((*Event)(nil)).
		Column("product_id").
		ColumnExpr("count(*) AS count").
		Where("type=?", TypePurchase).
		Where("product_id != ?", anchorId).
		Where("user_id IN (?)", purchasers).
		Group("product_id").
		OrderExpr("count DESC, product_id ASC").
		Limit(limit).
		Scan(ctx, &counts)
	if err != nil {
		return nil, fmt.Errorf("co-purchase counts query: %w", err)
	}
	return counts, nil
}

func (s PgStore) ByUser(ctx context.Context, userId int64, limit int) ([]Event, error) {
	var events []Event
	err := s.DB.NewSelect().
		Model(&events).
		Where("user_id=?", userId).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("events by user query: %w", err)
	}
	return events, nil
}
