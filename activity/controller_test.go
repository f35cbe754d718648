package activity_test

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/selinkarabicakkk/ecommerce-backend/activity"
	"github.com/selinkarabicakkk/ecommerce-backend/mock"
	"github.com/selinkarabicakkk/ecommerce-backend/rest"
	"github.com/selinkarabicakkk/ecommerce-backend/user"
	"github.com/stretchr/testify/assert"
)

func stubAuthorize(ctx *fiber.Ctx) error {
	ctx.Locals(user.LocalsKey, &user.Model{Id: 22, Email: "u@sklep.pl", Name: "u"})
	return nil
}

func TestRecordActivity(t *testing.T) {
	assert := assert.New(t)

	var recorded []activity.Event
	eventStore := mock.EventStore{
		RecordFn: func(ctx context.Context, event activity.Event) (int64, error) {
			recorded = append(recorded, event)
			return int64(len(recorded)), nil
		},
	}
	catalogStore := mock.CatalogStore{
		ProductExistsFn: func(ctx context.Context, id int64) (bool, error) {
			return id == 1, nil
		},
	}

	app := fiber.New(fiber.Config{ErrorHandler: rest.ErrorHandler})
	controller := activity.Controller{Store: eventStore, Catalog: catalogStore}
	controller.InstallTo(stubAuthorize, app)

	cases := []struct {
		name       string
		body       string
		statusCode int
		errorBody  string
	}{
		{name: "view ok", body: `{"productId": 1, "type": "view"}`,
			statusCode: fiber.StatusCreated},
		{name: "cart ok", body: `{"productId": 1, "type": "cart"}`,
			statusCode: fiber.StatusCreated},
		{name: "wishlist ok", body: `{"productId": 1, "type": "wishlist"}`,
			statusCode: fiber.StatusCreated},
		{name: "purchase forged", body: `{"productId": 1, "type": "purchase"}`,
			statusCode: fiber.StatusBadRequest, errorBody: rest.JsonErrorMessageResponse("invalid type")},
		{name: "unknown type", body: `{"productId": 1, "type": "stare"}`,
			statusCode: fiber.StatusBadRequest, errorBody: rest.JsonErrorMessageResponse("invalid type")},
		{name: "missing product id", body: `{"type": "view"}`,
			statusCode: fiber.StatusBadRequest, errorBody: rest.JsonErrorMessageResponse("invalid productId")},
		{name: "unknown product", body: `{"productId": 44, "type": "view"}`,
			statusCode: fiber.StatusNotFound, errorBody: rest.JsonErrorMessageResponse("product not found")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/activities", bytes.NewBufferString(tc.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			resp, err := app.Test(req)
			if !assert.NoError(err) {
				return
			}
			defer resp.Body.Close()
			assert.Equal(tc.statusCode, resp.StatusCode)

			if tc.errorBody != "" {
				body, err := ioutil.ReadAll(resp.Body)
				if assert.NoError(err) {
					assert.Equal(tc.errorBody, string(body))
				}
			}
		})
	}

	// only the three loggable kinds got through, all attributed to the caller
	if assert.Equal(3, len(recorded)) {
		assert.Equal(activity.TypeView, recorded[0].Type)
		assert.Equal(activity.TypeCart, recorded[1].Type)
		assert.Equal(activity.TypeWishlist, recorded[2].Type)
		for _, event := range recorded {
			assert.Equal(int64(22), event.UserId)
			assert.Equal(int64(1), event.ProductId)
		}
	}
}

func TestRecordActivityUnauthorized(t *testing.T) {
	assert := assert.New(t)

	app := fiber.New(fiber.Config{ErrorHandler: rest.ErrorHandler})
	controller := activity.Controller{Store: mock.EventStore{}, Catalog: mock.CatalogStore{}}
	controller.InstallTo(func(ctx *fiber.Ctx) error {
		return fiber.ErrUnauthorized
	}, app)

	req := httptest.NewRequest("POST", "/activities", bytes.NewBufferString(`{"productId": 1, "type": "view"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if !assert.NoError(err) {
		return
	}
	defer resp.Body.Close()
	assert.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func TestActivityHistory(t *testing.T) {
	assert := assert.New(t)

	eventStore := mock.EventStore{
		ByUserFn: func(ctx context.Context, userId int64, limit int) ([]activity.Event, error) {
			assert.Equal(int64(22), userId)
			return []activity.Event{
				{Id: 2, CreatedAt: time.Date(2022, 1, 1, 16, 0, 0, 0, time.UTC), UserId: 22, ProductId: 7, Type: activity.TypeCart},
				{Id: 1, CreatedAt: time.Date(2022, 1, 1, 15, 0, 0, 0, time.UTC), UserId: 22, ProductId: 7, Type: activity.TypeView},
			}, nil
		},
	}

	app := fiber.New(fiber.Config{ErrorHandler: rest.ErrorHandler})
	controller := activity.Controller{Store: eventStore, Catalog: mock.CatalogStore{}}
	controller.InstallTo(stubAuthorize, app)

	req := httptest.NewRequest("GET", "/activities", nil)
	resp, err := app.Test(req)
	if !assert.NoError(err) {
		return
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(`[{"id":2,"createdAt":1641052800,"productId":7,"type":"cart"},`+
		`{"id":1,"createdAt":1641049200,"productId":7,"type":"view"}]`,
		string(body))
}

func TestRecordPurchaseInternal(t *testing.T) {
	assert := assert.New(t)

	var recorded []activity.Event
	eventStore := mock.EventStore{
		RecordFn: func(ctx context.Context, event activity.Event) (int64, error) {
			recorded = append(recorded, event)
			return int64(len(recorded)), nil
		},
	}

	err := activity.RecordPurchase(context.Background(), eventStore, 5, []int64{3, 9})
	if !assert.NoError(err) {
		return
	}
	if assert.Equal(2, len(recorded)) {
		assert.Equal(activity.TypePurchase, recorded[0].Type)
		assert.Equal(int64(3), recorded[0].ProductId)
		assert.Equal(int64(9), recorded[1].ProductId)
		assert.Equal(int64(5), recorded[1].UserId)
	}
}
