package middleware

import (
	contextPkg "FaceTracking/pkg/context"
	jwtPkg "FaceTracking/pkg/jwt"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRequestIDMiddleware(t *testing.T) {
	m := New(quietLogger())
	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware(), LoggerConfig())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(m.GetRequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(RequestIDKey)
	assert.Len(t, generated, 26)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDKey, "abc-123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "abc-123", string(body))
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDKey))

	for _, bad := range []string{"has space", "line\tbreak", strings.Repeat("a", 65)} {
		req = httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDKey, bad)
		resp, err = app.Test(req)
		require.NoError(t, err)
		replaced := resp.Header.Get(RequestIDKey)
		assert.Len(t, replaced, 26, "request id %q", bad)
		assert.NotEqual(t, bad, replaced)
	}
}

func TestRateLimiter(t *testing.T) {
	m := NewWithRate(quietLogger(), 0.001, 2)
	app := fiber.New()
	app.Use(m.NewRateLimiter)
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1000", resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl := newRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.limiterFor("10.0.0.1")
	rl.limiterFor("10.0.0.2")
	assert.Equal(t, 2, rl.size())

	now = now.Add(visitorIdleTTL / 2)
	rl.limiterFor("10.0.0.2")

	now = now.Add(visitorIdleTTL/2 + time.Second)
	rl.limiterFor("10.0.0.3")
	assert.Equal(t, 2, rl.size())
}

func TestStreamTokenMiddleware(t *testing.T) {
	t.Setenv(jwtPkg.SecretEnvKey, "test-secret")
	token, _, err := jwtPkg.SignStream("stream-a", time.Minute)
	require.NoError(t, err)

	m := New(quietLogger())
	app := fiber.New()
	app.Get("/watch", m.NewStreamTokenMiddleware, func(c *fiber.Ctx) error {
		claims, err := jwtPkg.GetStreamClaims(c)
		if err != nil {
			return err
		}
		return c.SendString(claims.StreamID + "|" + contextPkg.GetStreamID(contextPkg.FromFiberCtx(c)))
	})

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"header", "/watch", "Bearer " + token, fiber.StatusOK},
		{"query", "/watch?token=" + token, "", fiber.StatusOK},
		{"matching stream", "/watch?stream_id=stream-a&token=" + token, "", fiber.StatusOK},
		{"other stream", "/watch?stream_id=stream-b&token=" + token, "", fiber.StatusUnauthorized},
		{"missing", "/watch", "", fiber.StatusUnauthorized},
		{"garbage", "/watch?token=nope", "", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "stream-a|stream-a", string(body))
			}
		})
	}
}

func TestSanitizeRequestBody(t *testing.T) {
	out := sanitizeRequestBody(`{"token":"abc","display":{"width":1}}`)
	assert.Contains(t, out, `"token":"[SECRET]"`)
	assert.Contains(t, out, `"display"`)
	assert.Equal(t, "[non-JSON body]", sanitizeRequestBody("nope"))
}
