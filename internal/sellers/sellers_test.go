package sellers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/validate"
	"github.com/RiskiJayaPutra/whfood/internal/web"
)

type fakeStore struct {
	profiles map[int64]domain.SellerProfile // by user id
	payments []domain.PaymentMethod
	updated  *ProfileUpdate
}

func (f *fakeStore) ByUserID(_ context.Context, userID int64) (domain.SellerProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return p, dbutil.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) BySlug(_ context.Context, slug string) (domain.SellerProfile, error) {
	for _, p := range f.profiles {
		if p.Slug == slug {
			return p, nil
		}
	}
	return domain.SellerProfile{}, dbutil.ErrNotFound
}

func (f *fakeStore) UpdateProfile(_ context.Context, _ int64, in ProfileUpdate) error {
	f.updated = &in
	return nil
}

func (f *fakeStore) PaymentMethods(_ context.Context, sellerID int64) ([]domain.PaymentMethod, error) {
	var out []domain.PaymentMethod
	for _, m := range f.payments {
		if m.SellerID == sellerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) AddPaymentMethod(_ context.Context, m domain.PaymentMethod) (int64, error) {
	m.ID = int64(len(f.payments) + 1)
	f.payments = append(f.payments, m)
	return m.ID, nil
}

func (f *fakeStore) DeletePaymentMethod(_ context.Context, sellerID, id int64) error {
	for i, m := range f.payments {
		if m.ID == id && m.SellerID == sellerID {
			f.payments = append(f.payments[:i], f.payments[i+1:]...)
			return nil
		}
	}
	return dbutil.ErrNotFound
}

func (f *fakeStore) Stats(context.Context, int64) (Stats, error) {
	return Stats{Products: 2, Active: 1, Views: 40, Reviews: 3, AvgRating: 4.33}, nil
}

type fakeProducts struct{ items []domain.Product }

func (f fakeProducts) BySeller(_ context.Context, sellerID int64, activeOnly bool) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range f.items {
		if p.SellerID == sellerID && (!activeOnly || p.Status == domain.ProductActive) {
			out = append(out, p)
		}
	}
	return out, nil
}

func fixtures() (*fakeStore, fakeProducts) {
	store := &fakeStore{profiles: map[int64]domain.SellerProfile{
		10: {ID: 1, UserID: 10, ShopName: "Dapur Bu Sri", Slug: "dapur-bu-sri", WhatsApp: "081234567890", City: "Yogyakarta", Status: domain.SellerApproved},
		11: {ID: 2, UserID: 11, ShopName: "Kue Baru", Slug: "kue-baru", WhatsApp: "081299990000", City: "Solo", Status: domain.SellerPending},
	}}
	products := fakeProducts{items: []domain.Product{
		{ID: 1, SellerID: 1, Name: "Gudeg Komplit", Category: "meals", Price: decimal.NewFromInt(25000), Stock: 5, Status: domain.ProductActive},
		{ID: 2, SellerID: 1, Name: "Bakpia Kacang Hijau", Category: "snacks", Price: decimal.NewFromInt(30000), Stock: 0, Status: domain.ProductHidden},
	}}
	return store, products
}

// adminUserID signs the test request in as an admin instead of a seller.
const adminUserID = 900

func newTestApp(t *testing.T, store *fakeStore, products fakeProducts, userID int64) *fiber.App {
	t.Helper()
	render := &web.Renderer{
		SiteName: "WHFood",
		Flash:    &web.Flashes{Store: session.New(session.Config{KeyLookup: "cookie:whfood_flash"}), Log: zap.NewNop()},
	}
	h := &Handler{
		Sellers:     store,
		Products:    products,
		Render:      render,
		Validate:    validate.New(),
		Log:         zap.NewNop(),
		CountryCode: "62",
	}
	app := fiber.New(fiber.Config{Views: web.NewEngine(false), ErrorHandler: web.ErrorHandler(zap.NewNop(), render)})
	app.Use(func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
			c.Locals("role", domain.RoleSeller)
			c.Locals("user_name", "Sri")
			if userID == adminUserID {
				c.Locals("role", domain.RoleAdmin)
			}
		}
		return c.Next()
	})
	app.Get("/seller", h.Dashboard)
	app.Get("/seller/profile", h.ShowProfile)
	app.Post("/seller/profile", h.UpdateProfile)
	app.Get("/seller/payments", h.Payments)
	app.Post("/seller/payments", h.AddPayment)
	app.Post("/seller/payments/:id/delete", h.DeletePayment)
	app.Get("/seller/catalog.pdf", h.CatalogPDF)
	app.Get("/sellers/:slug", h.Show)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	return resp, string(raw)
}

func TestDashboard(t *testing.T) {
	store, products := fixtures()
	app := newTestApp(t, store, products, 10)

	resp, body := do(t, app, http.MethodGet, "/seller", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Dapur Bu Sri")
	assert.Contains(t, body, "Gudeg Komplit")
	assert.Contains(t, body, "Bakpia Kacang Hijau")
	assert.Contains(t, body, "4.3")
}

func TestDashboard_NoProfile(t *testing.T) {
	store, products := fixtures()
	app := newTestApp(t, store, products, 99)

	resp, _ := do(t, app, http.MethodGet, "/seller", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateProfile(t *testing.T) {
	store, products := fixtures()
	app := newTestApp(t, store, products, 10)

	resp, body := do(t, app, http.MethodPost, "/seller/profile", url.Values{
		"shop_name": {"D"},
		"whatsapp":  {"abc"},
		"city":      {"Yogyakarta"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "enter a valid WhatsApp number")
	assert.Nil(t, store.updated)

	resp, _ = do(t, app, http.MethodPost, "/seller/profile", url.Values{
		"shop_name":   {"Dapur Bu Sri"},
		"whatsapp":    {"0812 3456 7890"},
		"city":        {"Yogyakarta"},
		"description": {"<script>alert(1)</script>Gudeg sejak 1998"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.NotNil(t, store.updated)
	assert.Equal(t, "Gudeg sejak 1998", store.updated.Description)
}

func TestPayments(t *testing.T) {
	store, products := fixtures()
	app := newTestApp(t, store, products, 10)

	resp, body := do(t, app, http.MethodPost, "/seller/payments", url.Values{"method": {"bank_transfer"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "account name is required")

	resp, _ = do(t, app, http.MethodPost, "/seller/payments", url.Values{
		"method": {"bank_transfer"}, "provider": {"BCA"}, "account_name": {"Sri Wahyuni"}, "account_number": {"1234567890"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Len(t, store.payments, 1)
	assert.Equal(t, int64(1), store.payments[0].SellerID)

	resp, body = do(t, app, http.MethodGet, "/seller/payments", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Bank transfer")
	assert.Contains(t, body, "1234567890")

	resp, _ = do(t, app, http.MethodPost, "/seller/payments/42/delete", url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/seller/payments/1/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, store.payments)
}

func TestShow(t *testing.T) {
	store, products := fixtures()

	t.Run("approved shop lists active products", func(t *testing.T) {
		app := newTestApp(t, store, products, 0)
		resp, body := do(t, app, http.MethodGet, "/sellers/dapur-bu-sri", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Gudeg Komplit")
		assert.NotContains(t, body, "Bakpia Kacang Hijau")
		assert.Contains(t, body, "https://wa.me/6281234567890")
	})

	t.Run("pending shop is hidden from visitors", func(t *testing.T) {
		app := newTestApp(t, store, products, 0)
		resp, _ := do(t, app, http.MethodGet, "/sellers/kue-baru", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("pending shop is visible to its owner", func(t *testing.T) {
		app := newTestApp(t, store, products, 11)
		resp, _ := do(t, app, http.MethodGet, "/sellers/kue-baru", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("pending shop is visible to admins", func(t *testing.T) {
		app := newTestApp(t, store, products, adminUserID)
		resp, _ := do(t, app, http.MethodGet, "/sellers/kue-baru", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("pending shop is hidden from other sellers", func(t *testing.T) {
		app := newTestApp(t, store, products, 10)
		resp, _ := do(t, app, http.MethodGet, "/sellers/kue-baru", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown slug", func(t *testing.T) {
		app := newTestApp(t, store, products, 0)
		resp, _ := do(t, app, http.MethodGet, "/sellers/nope", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCatalogPDF(t *testing.T) {
	store, products := fixtures()
	app := newTestApp(t, store, products, 10)

	resp, body := do(t, app, http.MethodGet, "/seller/catalog.pdf", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "dapur-bu-sri-catalogue.pdf")
	assert.True(t, strings.HasPrefix(body, "%PDF-"))
}

func TestBuildCatalog_ManyProducts(t *testing.T) {
	items := make([]domain.Product, 0, 80)
	for i := 0; i < 80; i++ {
		items = append(items, domain.Product{Name: "Keripik Tempe Pedas Manis Ukuran Besar", Category: "snacks", Price: decimal.NewFromInt(12500), Stock: i})
	}
	out, err := BuildCatalog(Catalog{
		Seller:   domain.SellerProfile{ShopName: "Café Nusantara", City: "Bandung"},
		Products: items,
		Payments: []domain.PaymentMethod{{Method: domain.PaymentQRIS}},
		Now:      time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, bytes.Count(out, []byte("/Type /Page\n")), 1)
}
