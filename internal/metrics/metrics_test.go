package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoute(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/products/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing/:id", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	for _, p := range []string{"/products/1", "/products/2", "/missing/3"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, p, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/missing/:id", "404")))
}

func TestEventCounters(t *testing.T) {
	m := New()
	m.ProductViewed()
	m.ProductViewed()
	m.ContactClicked()
	m.Searched(true)
	m.Searched(false)
	m.Searched(false)
	m.ReviewSubmitted()
	m.Moderated("seller.approve")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.productViews))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.contactClicks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.searches.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviews))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.moderation.WithLabelValues("seller.approve")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ProductViewed()
		m.ContactClicked()
		m.Searched(true)
		m.ReviewSubmitted()
		m.Moderated("x")
	})
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.ContactClicked()
	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "whfood_whatsapp_contacts_total 1")
}
