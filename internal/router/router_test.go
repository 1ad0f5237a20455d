package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/metrics"
	"github.com/RiskiJayaPutra/whfood/internal/web"
)

func newApp() *fiber.App {
	render := &web.Renderer{
		SiteName: "WHFood",
		Flash:    &web.Flashes{Store: session.New(session.Config{KeyLookup: "cookie:whfood_flash"}), Log: zap.NewNop()},
	}
	return fiber.New(fiber.Config{Views: web.NewEngine(false), ErrorHandler: web.ErrorHandler(zap.NewNop(), render)})
}

func do(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	var down bool
	app := newApp()
	r := &Router{Metrics: metrics.New(), Ping: func(context.Context) error {
		if down {
			return errors.New("connection refused")
		}
		return nil
	}}
	r.RegisterRoutes(app)

	resp := do(t, app, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	down = true
	assert.Equal(t, http.StatusServiceUnavailable, do(t, app, http.MethodGet, "/healthz").StatusCode)

	resp = do(t, app, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRoutes(t *testing.T) {
	app := newApp()
	(&Router{}).RegisterRoutes(app)

	resp := do(t, app, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"page not found"}`, string(body))

	// Non-numeric ids never reach the handlers.
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/products/abc").StatusCode)
}

func TestProtectedGroups(t *testing.T) {
	app := newApp()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-Test-Role") != "" {
			c.Locals("user_id", int64(5))
			c.Locals("role", domain.Role(c.Get("X-Test-Role")))
		}
		return c.Next()
	})
	(&Router{}).RegisterRoutes(app)

	resp := do(t, app, http.MethodGet, "/seller/products/new")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Test-Role", "seller")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/seller/catalog.pdf", nil)
	req.Header.Set("X-Test-Role", "buyer")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStaticAssets(t *testing.T) {
	app := newApp()
	(&Router{}).RegisterRoutes(app)
	resp := do(t, app, http.MethodGet, "/static/placeholder.svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitAuth(t *testing.T) {
	app := newApp()
	app.Use(RateLimitAuth(2, nil))
	app.Get("/login", func(c *fiber.Ctx) error { return c.SendString("form") })
	app.Post("/login", func(c *fiber.Ctx) error { return c.SendString("ok") })

	assert.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/login").StatusCode)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/login").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, do(t, app, http.MethodPost, "/login").StatusCode)

	// Viewing the form is never limited.
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/login").StatusCode)
}

func TestRateLimitWrite_PerUser(t *testing.T) {
	app := newApp()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-User") == "a" {
			c.Locals("user_id", int64(1))
		} else {
			c.Locals("user_id", int64(2))
		}
		return c.Next()
	})
	app.Use(RateLimitWrite(1, nil))
	app.Post("/seller/products", func(c *fiber.Ctx) error { return c.SendString("saved") })

	post := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/seller/products", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusOK, post("a"))
	assert.Equal(t, http.StatusTooManyRequests, post("a"))
	assert.Equal(t, http.StatusOK, post("b"))
}

func TestRedisStorage(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	s, err := NewRedisStorage(context.Background(), url, "whfood:test:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Reset()
		_ = s.Close()
	})

	got, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("k", []byte("v"), time.Minute))
	got, err = s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Delete("k"))
	got, err = s.Get("k")
	require.NoError(t, err)
	assert.Nil(t, got)
}
