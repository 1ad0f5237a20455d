package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp(t *testing.T) (*fiber.App, *Renderer) {
	t.Helper()
	r := &Renderer{SiteName: "WHFood", Flash: &Flashes{Store: session.New(session.Config{KeyLookup: "cookie:whfood_flash"}), Log: zap.NewNop()}}
	app := fiber.New(fiber.Config{
		Views:        NewEngine(false),
		ErrorHandler: ErrorHandler(zap.NewNop(), r),
	})
	return app, r
}

func TestStars(t *testing.T) {
	assert.Equal(t, "☆☆☆☆☆", Stars(0))
	assert.Equal(t, "★★★★☆", Stars(3.5))
	assert.Equal(t, "★★★☆☆", Stars(3.4))
	assert.Equal(t, "★★★★★", Stars(9))
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "/static/placeholder.svg", ImageURL(""))
	assert.Equal(t, "/uploads/abc.jpg", ImageURL("abc.jpg"))
	assert.Equal(t, "https://cdn.example/x.jpg", ImageURL("https://cdn.example/x.jpg"))
}

func TestErrorHandler_API(t *testing.T) {
	app, _ := newApp(t)
	app.Get("/api/thing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "product_id required") })
	app.Get("/api/boom", func(c *fiber.Ctx) error { return io.ErrUnexpectedEOF })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/thing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"product_id required"}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"something went wrong, please try again"}`, string(body))
}

func TestErrorHandler_Page(t *testing.T) {
	app, _ := newApp(t)
	app.Get("/products/:id", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "product not found") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products/9", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "product not found")
	assert.Contains(t, string(body), "<title>Error · WHFood</title>")
}

func TestCSRF_RejectsMissingToken(t *testing.T) {
	app, _ := newApp(t)
	app.Use(CSRF(nil, false))
	app.Get("/form", func(c *fiber.Ctx) error {
		token, _ := c.Locals("csrf").(string)
		return c.SendString(token)
	})
	app.Post("/form", func(c *fiber.Ctx) error { return c.SendString("saved") })

	form := url.Values{"name": {"Nasi kuning"}}
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A token issued on GET and echoed back with its cookie is accepted.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/form", nil))
	require.NoError(t, err)
	token, _ := io.ReadAll(resp.Body)
	require.NotEmpty(t, token)
	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "whfood_csrf" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)

	form.Set("_csrf", string(token))
	req = httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFlash_RoundTrip(t *testing.T) {
	app, r := newApp(t)
	app.Post("/save", func(c *fiber.Ctx) error {
		return r.Flash.Redirect(c, "/done", FlashSuccess, "Product saved")
	})
	app.Get("/done", func(c *fiber.Ctx) error {
		f, ok := r.Flash.Pop(c)
		if !ok {
			return c.SendString("none")
		}
		return c.SendString(f.Kind + ":" + f.Message)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/save", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/done", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "success:Product saved", string(body))

	// Popped flashes are gone.
	req = httptest.NewRequest(http.MethodGet, "/done", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "none", string(body))
}
