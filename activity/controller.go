package activity

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/selinkarabicakkk/ecommerce-backend/catalog"
	"github.com/selinkarabicakkk/ecommerce-backend/rest"
	"github.com/selinkarabicakkk/ecommerce-backend/user"
)

const historyLimit = 50

type Controller struct {
	Store   Store
	Catalog catalog.Store
}

func (c *Controller) InstallTo(authorize fiber.Handler, app *fiber.App) {
	app.Post("/activities", rest.CombineHandlers(authorize, c.serveRecord))
	app.Get("/activities", rest.CombineHandlers(authorize, c.serveHistory))
}

func (c *Controller) serveRecord(ctx *fiber.Ctx) error {
	caller, ok := ctx.Locals(user.LocalsKey).(*user.Model)
	if !ok {
		return fiber.ErrUnauthorized
	}

	body := struct {
		ProductId int64  `json:"productId"`
		Type      string `json:"type"`
	}{}
	if err := ctx.BodyParser(&body); err != nil {
		rest.RequestLog(ctx).WithError(err).Infoln("Invalid body.")
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	activityType, err := ParseType(body.Type)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid type")
	}
	// purchases are logged internally by the order flow. accepting them
	// here would let any client forge purchase signal.
	if activityType == TypePurchase {
		return fiber.NewError(fiber.StatusBadRequest, "invalid type")
	}
	if body.ProductId <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid productId")
	}

	exists, err := c.Catalog.ProductExists(ctx.Context(), body.ProductId)
	if err != nil {
		return fmt.Errorf("product exists: %w", err)
	}
	if !exists {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	eventId, err := c.Store.Record(ctx.Context(), Event{
		UserId:    caller.Id,
		ProductId: body.ProductId,
		Type:      activityType,
	})
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(map[string]interface{}{
		"success": true,
		"id":      eventId,
	})
}

func (c *Controller) serveHistory(ctx *fiber.Ctx) error {
	caller, ok := ctx.Locals(user.LocalsKey).(*user.Model)
	if !ok {
		return fiber.ErrUnauthorized
	}

	events, err := c.Store.ByUser(ctx.Context(), caller.Id, historyLimit)
	if err != nil {
		return fmt.Errorf("events by user: %w", err)
	}

	type Entry struct {
		Id        int64 `json:"id"`
		CreatedAt int64 `json:"createdAt"`
		ProductId int64 `json:"productId"`
		Type      Type  `json:"type"`
	}
	mapped := make([]Entry, len(events))
	for i, event := range events {
		mapped[i] = Entry{
			Id:        event.Id,
			CreatedAt: event.CreatedAt.Unix(),
			ProductId: event.ProductId,
			Type:      event.Type,
		}
	}
	return ctx.JSON(mapped)
}

// RecordPurchase logs one purchase event per order line item. It is called
// by the order-placement flow, never from a public endpoint.
func RecordPurchase(ctx context.Context, store Store, userId int64, productIds []int64) error {
	for _, productId := range productIds {
		_, err := store.Record(ctx, Event{
			UserId:    userId,
			ProductId: productId,
			Type:      TypePurchase,
		})
		if err != nil {
			return fmt.Errorf("record purchase of %d: %w", productId, err)
		}
	}
	return nil
}
