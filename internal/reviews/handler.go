package reviews

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/RiskiJayaPutra/whfood/internal/auth"
	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/metrics"
	"github.com/RiskiJayaPutra/whfood/internal/validate"
	"github.com/RiskiJayaPutra/whfood/internal/web"
)

type Store interface {
	Target(ctx context.Context, productID int64) (Target, error)
	Upsert(ctx context.Context, rv domain.Review) (int64, error)
	Visible(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, error)
	Summary(ctx context.Context, productID int64) (domain.ReviewSummary, error)
}

type Handler struct {
	Reviews  Store
	Metrics  *metrics.Metrics
	Render   *web.Renderer
	Validate *validate.Validator
	Log      *zap.Logger
}

type reviewForm struct {
	Rating  int    `form:"rating" validate:"required,min=1,max=5"`
	Comment string `form:"comment" validate:"max=1000"`
}

type listResponse struct {
	Items   []domain.Review `json:"items"`
	Average float64         `json:"average"`
	Count   int             `json:"count"`
	Page    int             `json:"page"`
	HasMore bool            `json:"has_more"`
}

// target resolves the product in the URL or query. Products that are not public
// cannot be reviewed and their reviews are not listed.
func (h *Handler) target(ctx context.Context, raw string) (Target, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return Target{}, fiber.NewError(fiber.StatusBadRequest, "product_id required")
	}
	t, err := h.Reviews.Target(ctx, id)
	if errors.Is(err, dbutil.ErrNotFound) || (err == nil && !t.Public) {
		return t, fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	return t, err
}

// Submit handles POST /products/:id/reviews.
func (h *Handler) Submit(c *fiber.Ctx) error {
	t, err := h.target(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	uid := auth.UserID(c)
	back := "/products/" + strconv.FormatInt(t.ProductID, 10) + "#reviews"

	if t.OwnerUserID == uid {
		return fiber.NewError(fiber.StatusForbidden, "you cannot review your own product")
	}

	var form reviewForm
	if err := c.BodyParser(&form); err != nil {
		return h.Render.Flash.Redirect(c, back, web.FlashError, "choose a rating from 1 to 5")
	}
	form.Comment = h.Validate.Text(form.Comment)
	if err := h.Validate.Struct(form); err != nil {
		var verrs validate.Errors
		if !errors.As(err, &verrs) {
			return err
		}
		return h.Render.Flash.Redirect(c, back, web.FlashError, verrs.Error())
	}

	id, err := h.Reviews.Upsert(c.UserContext(), domain.Review{
		ProductID: t.ProductID,
		UserID:    uid,
		Rating:    form.Rating,
		Comment:   form.Comment,
	})
	if err != nil {
		return err
	}
	h.Metrics.ReviewSubmitted()
	h.Log.Info("review saved", zap.Int64("review_id", id), zap.Int64("product_id", t.ProductID), zap.Int64("user_id", uid))
	return h.Render.Flash.Redirect(c, back, web.FlashSuccess, "Thanks for your review!")
}

// List handles GET /api/reviews?product_id=&page=.
func (h *Handler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	t, err := h.target(ctx, c.Query("product_id"))
	if err != nil {
		return err
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	items, err := h.Reviews.Visible(ctx, t.ProductID, domain.ReviewsPageSize+1, (page-1)*domain.ReviewsPageSize)
	if err != nil {
		return err
	}
	hasMore := len(items) > domain.ReviewsPageSize
	if hasMore {
		items = items[:domain.ReviewsPageSize]
	}

	summary, err := h.Reviews.Summary(ctx, t.ProductID)
	if err != nil {
		return err
	}

	return c.JSON(listResponse{
		Items:   items,
		Average: summary.Average,
		Count:   summary.Count,
		Page:    page,
		HasMore: hasMore,
	})
}
