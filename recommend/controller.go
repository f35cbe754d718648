package recommend

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/selinkarabicakkk/ecommerce-backend/catalog"
	"github.com/selinkarabicakkk/ecommerce-backend/rest"
	"github.com/selinkarabicakkk/ecommerce-backend/user"
)

// Response is the uniform envelope of every recommendation query. A
// hydration miss shrinks Products; it never fails the call.
type Response struct {
	Success  bool              `json:"success"`
	Products []catalog.Product `json:"products"`
}

type Controller struct {
	Service *Service
}

func (c *Controller) InstallTo(authorize fiber.Handler, app *fiber.App) {
	app.Get("/recommendations/popular", c.servePopular)
	app.Get("/recommendations/for-you", rest.CombineHandlers(authorize, c.serveForUser))
	app.Get("/products/:product_id/bought-together", c.serveBoughtTogether)
	app.Get("/products/:product_id/related", c.serveRelated)
}

func (c *Controller) servePopular(ctx *fiber.Ctx) error {
	windowDays := rest.QueryLimit(ctx, "days", DefaultWindowDays, MaxWindowDays)
	limit := rest.QueryLimit(ctx, "limit", DefaultPopularLimit, MaxLimit)

	products, err := c.Service.Popular(ctx.Context(), windowDays, limit)
	if err != nil {
		return fmt.Errorf("popular: %w", err)
	}
	return ctx.JSON(&Response{Success: true, Products: products})
}

func (c *Controller) serveForUser(ctx *fiber.Ctx) error {
	caller, ok := ctx.Locals(user.LocalsKey).(*user.Model)
	if !ok {
		return fiber.ErrUnauthorized
	}
	limit := rest.QueryLimit(ctx, "limit", DefaultForUserLimit, MaxLimit)

	products, err := c.Service.ForUser(ctx.Context(), caller.Id, limit)
	if err != nil {
		return fmt.Errorf("for user: %w", err)
	}
	return ctx.JSON(&Response{Success: true, Products: products})
}

func (c *Controller) serveBoughtTogether(ctx *fiber.Ctx) error {
	productId, err := catalog.ParamId(ctx, "product_id")
	if err != nil {
		return err
	}
	limit := rest.QueryLimit(ctx, "limit", DefaultTogetherLimit, MaxLimit)

	products, err := c.Service.BoughtTogether(ctx.Context(), productId, limit)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return fiber.ErrNotFound
		}
		return fmt.Errorf("bought together: %w", err)
	}
	return ctx.JSON(&Response{Success: true, Products: products})
}

func (c *Controller) serveRelated(ctx *fiber.Ctx) error {
	productId, err := catalog.ParamId(ctx, "product_id")
	if err != nil {
		return err
	}
	limit := rest.QueryLimit(ctx, "limit", DefaultRelatedLimit, MaxLimit)

	products, err := c.Service.Related(ctx.Context(), productId, limit)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return fiber.ErrNotFound
		}
		return fmt.Errorf("related: %w", err)
	}
	return ctx.JSON(&Response{Success: true, Products: products})
}
