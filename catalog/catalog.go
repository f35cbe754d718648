package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/selinkarabicakkk/ecommerce-backend/rest"
	"github.com/uptrace/bun"
	_ "github.com/uptrace/bun/driver/pgdriver"
)

var ErrProductNotFound = errors.New("product not found")

type Category struct {
	bun.BaseModel `bun:"table:category" json:"-"`

	Id          int64  `bun:",pk,autoincrement"              json:"id"`
	Name        string `bun:",notnull"                       json:"name"`
	Slug        string `bun:",notnull,unique,type:varchar(255)" json:"slug"`
	Description string `bun:""                               json:"description,omitempty"`
}

// Product model representing database entity and rest json DTO.
// DestroyedAt is a soft delete marker: destroyed products disappear from
// every select, so activity events referencing them dangle on purpose.
type Product struct {
	bun.BaseModel `bun:"table:product" json:"-"`

	Id          int64        `bun:",pk,autoincrement"                           json:"id"`
	CreatedAt   time.Time    `bun:",nullzero,notnull,default:current_timestamp" json:"-"`
	DestroyedAt sql.NullTime `bun:",nullzero,soft_delete"                       json:"-"`
	CategoryId  int64        `bun:",notnull"                                    json:"categoryId"`
	Name        string       `bun:",notnull"                                    json:"name"`
	Slug        string       `bun:",notnull,unique,type:varchar(255)"           json:"slug"`
	// Price in the shop currency's lowest denomination (grosze/cents).
	Price  int64    `bun:",notnull"       json:"price"`
	Images []string `bun:",array"         json:"images"`
	Stock  int      `bun:",notnull,default:0" json:"stock"`
}

type Store interface {
	ProductById(ctx context.Context, id int64) (*Product, error)

	ProductExists(ctx context.Context, id int64) (bool, error)

	// Get products with given ids in unspecified order. Missing ids are
	// simply absent from the result.
	ProductsByIds(ctx context.Context, ids []int64) ([]Product, error)

	// Get up to "limit" products from a category, skipping "excludeId"
	// when it's positive.
	ProductsByCategory(ctx context.Context, categoryId int64, excludeId int64, limit int) ([]Product, error)

	// Get up to "limit" products whose category is in "categoryIds",
	// excluding every id in "excludeIds".
	ProductsByCategories(ctx context.Context, categoryIds []int64, excludeIds []int64, limit int) ([]Product, error)

	Categories(ctx context.Context) ([]Category, error)
}

type PgStore struct {
	DB *bun.DB
}

func (s PgStore) ProductById(ctx context.Context, id int64) (*Product, error) {
	product := new(Product)
	err := s.DB.NewSelect().
		Model(product).
		Where("id=?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (s PgStore) ProductExists(ctx context.Context, id int64) (bool, error) {
	exists, err := s.DB.NewSelect().
		Model((*Product)(nil)).
		Where("id=?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("product exists: %w", err)
	}
	return exists, nil
}

func (s PgStore) ProductsByIds(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	var products []Product
	err := s.DB.NewSelect().
		Model(&products).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select products by ids: %w", err)
	}
	return products, nil
}

func (s PgStore) ProductsByCategory(ctx context.Context, categoryId int64,
	excludeId int64, limit int) ([]Product, error) {
	var products []Product
	query := s.DB.NewSelect().
		Model(&products).
		Where("category_id=?", categoryId).
		OrderExpr("id ASC").
		Limit(limit)
	if excludeId > 0 {
		query = query.Where("id != ?", excludeId)
	}

	err := query.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select products by category: %w", err)
	}
	return products, nil
}

func (s PgStore) ProductsByCategories(ctx context.Context, categoryIds []int64,
	excludeIds []int64, limit int) ([]Product, error) {
	if len(categoryIds) == 0 {
		return []Product{}, nil
	}
	var products []Product
	query := s.DB.NewSelect().
		Model(&products).
		Where("category_id IN (?)", bun.In(categoryIds)).
		OrderExpr("id ASC").
		Limit(limit)
	if len(excludeIds) > 0 {
		query = query.Where("id NOT IN (?)", bun.In(excludeIds))
	}

	err := query.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select products by categories: %w", err)
	}
	return products, nil
}

func (s PgStore) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := s.DB.NewSelect().
		Model(&categories).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return categories, nil
}

const browseLimit = 50

type Controller struct {
	Store Store
}

func (c *Controller) InstallTo(app *fiber.App) {
	app.Get("/categories", c.serveCategories)
	app.Get("/categories/:category_id/products", c.serveCategoryProducts)
	app.Get("/products/:product_id", c.serveProduct)
}

func (c *Controller) serveCategories(ctx *fiber.Ctx) error {
	categories, err := c.Store.Categories(ctx.Context())
	if err != nil {
		return fmt.Errorf("store categories: %w", err)
	}
	return ctx.JSON(categories)
}

func (c *Controller) serveCategoryProducts(ctx *fiber.Ctx) error {
	categoryId, err := ParamId(ctx, "category_id")
	if err != nil {
		return err
	}
	limit := rest.QueryLimit(ctx, "limit", browseLimit, browseLimit)

	products, err := c.Store.ProductsByCategory(ctx.Context(), categoryId, 0, limit)
	if err != nil {
		return fmt.Errorf("store products by category: %w", err)
	}
	return ctx.JSON(products)
}

func (c *Controller) serveProduct(ctx *fiber.Ctx) error {
	productId, err := ParamId(ctx, "product_id")
	if err != nil {
		return err
	}

	product, err := c.Store.ProductById(ctx.Context(), productId)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return fiber.ErrNotFound
		}
		return fmt.Errorf("store product by id: %w", err)
	}
	return ctx.JSON(product)
}

// ParamId parses a positive int64 route param or replies with bad request
// naming the offending field.
func ParamId(ctx *fiber.Ctx, name string) (int64, error) {
	raw := ctx.Params(name)
	if raw == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "missing "+name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
