package user

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/buntdb"
)

func TestSessionLifecycle(t *testing.T) {
	assert := assert.New(t)

	bdb, err := buntdb.Open(":memory:")
	if !assert.NoError(err) {
		return
	}
	defer bdb.Close()

	store := SessionStore{Buntdb: bdb}

	session, err := store.RegisterNew(7)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(int64(7), session.UserId)
	assert.NotEmpty(session.Token)

	exists, err := store.Exists(session.Token)
	assert.NoError(err)
	assert.True(exists)

	exists, err = store.Exists("made-up-token")
	assert.NoError(err)
	assert.False(exists)

	err = store.Invalidate(session.Token)
	if !assert.NoError(err) {
		return
	}
	exists, err = store.Exists(session.Token)
	assert.NoError(err)
	assert.False(exists)
}

func TestSessionTokensAreUnique(t *testing.T) {
	assert := assert.New(t)

	bdb, err := buntdb.Open(":memory:")
	if !assert.NoError(err) {
		return
	}
	defer bdb.Close()

	store := SessionStore{Buntdb: bdb}
	tokens := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		session, err := store.RegisterNew(int64(i))
		if !assert.NoError(err) {
			return
		}
		_, duplicate := tokens[session.Token]
		assert.False(duplicate)
		tokens[session.Token] = struct{}{}
	}
}

func TestAuthorizeRejectsBadHeaders(t *testing.T) {
	assert := assert.New(t)

	bdb, err := buntdb.Open(":memory:")
	if !assert.NoError(err) {
		return
	}
	defer bdb.Close()

	store := SessionStore{Buntdb: bdb}
	app := fiber.New()
	app.Get("/guarded", store.Authorize, func(ctx *fiber.Ctx) error {
		return ctx.SendString("ok")
	})

	cases := []struct {
		name       string
		header     string
		statusCode int
	}{
		{name: "missing header", header: "", statusCode: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic dXNlcg==", statusCode: fiber.StatusBadRequest},
		{name: "unknown token", header: "Bearer nonexistent", statusCode: fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/guarded", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			if !assert.NoError(err) {
				return
			}
			defer resp.Body.Close()
			assert.Equal(tc.statusCode, resp.StatusCode)
		})
	}
}
