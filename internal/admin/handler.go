package admin

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/RiskiJayaPutra/whfood/internal/audit"
	"github.com/RiskiJayaPutra/whfood/internal/auth"
	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/metrics"
	"github.com/RiskiJayaPutra/whfood/internal/web"
	"github.com/RiskiJayaPutra/whfood/internal/whatsapp"
)

const notifyTimeout = 15 * time.Second

type Store interface {
	Stats(ctx context.Context) (Stats, error)
	Sellers(ctx context.Context, status domain.SellerStatus) ([]SellerRow, error)
	SetSellerStatus(ctx context.Context, id int64, status domain.SellerStatus) (domain.SellerProfile, error)
	Products(ctx context.Context, query string, status domain.ProductStatus) ([]domain.Product, error)
	SetProductStatus(ctx context.Context, id int64, status domain.ProductStatus) error
	DeleteProduct(ctx context.Context, id int64) (string, error)
	Reviews(ctx context.Context, status domain.ReviewStatus) ([]domain.Review, error)
	SetReviewStatus(ctx context.Context, id int64, status domain.ReviewStatus) error
	DeleteReview(ctx context.Context, id int64) error
}

type AuditLog interface {
	Write(ctx context.Context, e audit.Entry) error
	Recent(ctx context.Context, limit int) ([]audit.Record, error)
}

type ImageStore interface {
	Delete(name string) error
}

type Handler struct {
	Store   Store
	Audit   AuditLog
	Notify  whatsapp.Notifier
	Images  ImageStore
	Metrics *metrics.Metrics
	Render  *web.Renderer
	Log     *zap.Logger
	BaseURL string
}

var sellerStatuses = []domain.SellerStatus{domain.SellerPending, domain.SellerApproved, domain.SellerSuspended}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// notFound maps a missing row to a 404 with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, dbutil.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, msg)
	}
	return err
}

func (h *Handler) record(c *fiber.Ctx, action, entity string, id int64, meta map[string]any) {
	h.Metrics.Moderated(action)
	err := h.Audit.Write(c.UserContext(), audit.Entry{
		ActorID:    auth.UserID(c),
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		IP:         c.IP(),
		UserAgent:  c.Get(fiber.HeaderUserAgent),
		Metadata:   meta,
	})
	if err != nil {
		h.Log.Warn("audit write failed", zap.String("action", action), zap.Int64("entity_id", id), zap.Error(err))
	}
}

// Dashboard handles GET /admin.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	stats, err := h.Store.Stats(ctx)
	if err != nil {
		return err
	}
	recent, err := h.Audit.Recent(ctx, 20)
	if err != nil {
		return err
	}
	return h.Render.Page(c, "admin/dashboard", fiber.Map{
		"Title": "Admin",
		"Stats": stats,
		"Audit": recent,
	})
}

// Sellers handles GET /admin/sellers?status=.
func (h *Handler) Sellers(c *fiber.Ctx) error {
	status := domain.SellerStatus(c.Query("status"))
	if !status.Valid() {
		status = ""
	}
	rows, err := h.Store.Sellers(c.UserContext(), status)
	if err != nil {
		return err
	}
	return h.Render.Page(c, "admin/sellers", fiber.Map{
		"Title":    "Sellers",
		"Sellers":  rows,
		"Status":   status,
		"Statuses": sellerStatuses,
	})
}

// SetSellerStatus handles POST /admin/sellers/:id/status.
func (h *Handler) SetSellerStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	status := domain.SellerStatus(c.FormValue("status"))
	if !status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}

	shop, err := h.Store.SetSellerStatus(c.UserContext(), id, status)
	if err != nil {
		return notFound(err, "seller not found")
	}
	h.record(c, "seller."+string(status), "seller", id, map[string]any{"shop": shop.ShopName})

	if status == domain.SellerApproved && shop.WhatsApp != "" {
		h.notifyApproved(shop)
	}
	return h.Render.Flash.Redirect(c, "/admin/sellers", web.FlashSuccess, shop.ShopName+" is now "+string(status))
}

// notifyApproved tells the shop owner on WhatsApp without holding up the request.
func (h *Handler) notifyApproved(shop domain.SellerProfile) {
	if h.Notify == nil {
		return
	}
	body := "Hi " + shop.ShopName + ", your shop on WHFood has been approved. Your products are now visible to buyers."
	if h.BaseURL != "" {
		body += " " + h.BaseURL + "/sellers/" + shop.Slug
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := h.Notify.Send(ctx, shop.WhatsApp, body); err != nil {
			h.Log.Warn("approval notification failed", zap.Int64("seller_id", shop.ID), zap.Error(err))
		}
	}()
}

// Products handles GET /admin/products?q=&status=.
func (h *Handler) Products(c *fiber.Ctx) error {
	query := c.Query("q")
	status := domain.ProductStatus(c.Query("status"))
	if !status.Valid() {
		status = ""
	}
	items, err := h.Store.Products(c.UserContext(), query, status)
	if err != nil {
		return err
	}
	return h.Render.Page(c, "admin/products", fiber.Map{
		"Title":    "Products",
		"Products": items,
		"Query":    query,
		"Status":   string(status),
	})
}

// SetProductStatus handles POST /admin/products/:id/status.
func (h *Handler) SetProductStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	status := domain.ProductStatus(c.FormValue("status"))
	if !status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}
	if err := h.Store.SetProductStatus(c.UserContext(), id, status); err != nil {
		return notFound(err, "product not found")
	}
	h.record(c, "product."+string(status), "product", id, nil)
	return h.Render.Flash.Redirect(c, "/admin/products", web.FlashSuccess, "Product updated")
}

// DeleteProduct handles POST /admin/products/:id/delete.
func (h *Handler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	image, err := h.Store.DeleteProduct(c.UserContext(), id)
	if err != nil {
		return notFound(err, "product not found")
	}
	if image != "" && h.Images != nil {
		if err := h.Images.Delete(image); err != nil {
			h.Log.Warn("delete product image", zap.String("image", image), zap.Error(err))
		}
	}
	h.record(c, "product.delete", "product", id, nil)
	return h.Render.Flash.Redirect(c, "/admin/products", web.FlashSuccess, "Product deleted")
}

// Reviews handles GET /admin/reviews?status=.
func (h *Handler) Reviews(c *fiber.Ctx) error {
	status := domain.ReviewStatus(c.Query("status"))
	if !status.Valid() {
		status = ""
	}
	items, err := h.Store.Reviews(c.UserContext(), status)
	if err != nil {
		return err
	}
	return h.Render.Page(c, "admin/reviews", fiber.Map{
		"Title":   "Reviews",
		"Reviews": items,
		"Status":  string(status),
	})
}

// SetReviewStatus handles POST /admin/reviews/:id/status.
func (h *Handler) SetReviewStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	status := domain.ReviewStatus(c.FormValue("status"))
	if !status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}
	if err := h.Store.SetReviewStatus(c.UserContext(), id, status); err != nil {
		return notFound(err, "review not found")
	}
	h.record(c, "review."+string(status), "review", id, nil)
	return h.Render.Flash.Redirect(c, "/admin/reviews", web.FlashSuccess, "Review updated")
}

// DeleteReview handles POST /admin/reviews/:id/delete.
func (h *Handler) DeleteReview(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteReview(c.UserContext(), id); err != nil {
		return notFound(err, "review not found")
	}
	h.record(c, "review.delete", "review", id, nil)
	return h.Render.Flash.Redirect(c, "/admin/reviews", web.FlashSuccess, "Review deleted")
}
