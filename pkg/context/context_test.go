package context

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestAndStreamID(t *testing.T) {
	ctx := WithStreamID(WithRequestID(context.Background(), "req"), "stream")
	assert.Equal(t, "req", GetRequestID(ctx))
	assert.Equal(t, "stream", GetStreamID(ctx))

	assert.Equal(t, "unknown", GetRequestID(context.Background()))
	assert.Empty(t, GetStreamID(context.Background()))
}

func TestFromFiberCtx(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(FromFiberCtx(c)))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "from-header")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "from-header", string(body))
}

func TestFromFiberCtx_StreamID(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(StreamIDKey, "stream-a")
		return c.SendString(GetStreamID(FromFiberCtx(c)))
	})
	app.Get("/anon", func(c *fiber.Ctx) error {
		return c.SendString(GetStreamID(FromFiberCtx(c)))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "stream-a", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/anon", nil))
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}
