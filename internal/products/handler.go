package products

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/RiskiJayaPutra/whfood/internal/auth"
	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/metrics"
	"github.com/RiskiJayaPutra/whfood/internal/validate"
	"github.com/RiskiJayaPutra/whfood/internal/web"
	"github.com/RiskiJayaPutra/whfood/internal/whatsapp"
)

const (
	homeLimit        = 8
	relatedLimit     = 4
	searchTermsLimit = 1000
)

type Store interface {
	ByID(ctx context.Context, id int64) (domain.Product, error)
	BySeller(ctx context.Context, sellerID int64, activeOnly bool) ([]domain.Product, error)
	List(ctx context.Context, p ListParams) ([]domain.Product, int, error)
	Popular(ctx context.Context, limit int, exclude []int64) ([]domain.Product, error)
	IncrementView(ctx context.Context, id int64) error
	SearchTerms(ctx context.Context, limit int) ([]string, error)
	Create(ctx context.Context, sellerID int64, in Input) (int64, error)
	Update(ctx context.Context, sellerID, id int64, in Input) error
	Delete(ctx context.Context, sellerID, id int64) (string, error)
}

type SellerStore interface {
	ByID(ctx context.Context, id int64) (domain.SellerProfile, error)
	ByUserID(ctx context.Context, userID int64) (domain.SellerProfile, error)
	PaymentMethods(ctx context.Context, sellerID int64) ([]domain.PaymentMethod, error)
}

type ReviewReader interface {
	Visible(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, error)
	Summary(ctx context.Context, productID int64) (domain.ReviewSummary, error)
	ByUser(ctx context.Context, productID, userID int64) (domain.Review, error)
}

type Recommender interface {
	Recommend(ctx context.Context, userID int64, limit int) ([]domain.Product, error)
	Related(ctx context.Context, p domain.Product, limit int) ([]domain.Product, error)
}

type Tracker interface {
	RecordView(ctx context.Context, userID, productID int64) error
	RecordSearch(ctx context.Context, userID int64, keyword string) error
}

type ImageStore interface {
	SaveMultipart(fh *multipart.FileHeader) (string, error)
	Delete(name string) error
}

type Handler struct {
	Products    Store
	Sellers     SellerStore
	Reviews     ReviewReader
	Recommend   Recommender
	Activity    Tracker
	Images      ImageStore
	Metrics     *metrics.Metrics
	Render      *web.Renderer
	Validate    *validate.Validator
	Log         *zap.Logger
	CountryCode string
	BaseURL     string
}

func (h *Handler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()

	popular, err := h.Products.Popular(ctx, homeLimit, nil)
	if err != nil {
		return err
	}

	var recommended []domain.Product
	if uid := auth.UserID(c); uid != 0 {
		recommended, err = h.Recommend.Recommend(ctx, uid, homeLimit)
		if err != nil {
			h.Log.Warn("recommendations unavailable", zap.Int64("user_id", uid), zap.Error(err))
			recommended = nil
		}
	}

	return h.Render.Page(c, "home", fiber.Map{
		"Title":       h.Render.SiteName,
		"Recommended": recommended,
		"Popular":     popular,
	})
}

func (h *Handler) Index(c *fiber.Ctx) error {
	params := ParseListParams(c)
	items, total, suggestion, err := h.search(c, params, true)
	if err != nil {
		return err
	}

	title := "All products"
	switch {
	case params.Query != "":
		title = "Search: " + params.Query
	case params.Category != "":
		title = domain.CategoryLabel(params.Category)
	}

	return h.Render.Page(c, "products/index", fiber.Map{
		"Title":      title,
		"Params":     params,
		"MinPrice":   c.Query("min_price"),
		"MaxPrice":   c.Query("max_price"),
		"Sorts":      Sorts,
		"Products":   items,
		"Total":      total,
		"Suggestion": suggestion,
		"Pager":      NewPager("/products", params, total),
	})
}

// search runs the listing and, for a keyword search, records it and finds a suggestion
// when nothing matched. Only page loads are recorded; the JSON API is called as the user types.
func (h *Handler) search(c *fiber.Ctx, params ListParams, record bool) ([]domain.Product, int, string, error) {
	ctx := c.UserContext()
	items, total, err := h.Products.List(ctx, params)
	if err != nil {
		return nil, 0, "", err
	}
	if params.Query == "" {
		return items, total, "", nil
	}

	if record {
		h.Metrics.Searched(total > 0)
		if uid := auth.UserID(c); uid != 0 {
			if err := h.Activity.RecordSearch(ctx, uid, params.Query); err != nil {
				h.Log.Warn("record search", zap.Int64("user_id", uid), zap.Error(err))
			}
		}
	}

	suggestion := ""
	if total == 0 {
		terms, err := h.Products.SearchTerms(ctx, searchTermsLimit)
		if err != nil {
			h.Log.Warn("load search terms", zap.Error(err))
		}
		suggestion = Suggest(params.Query, terms)
	}
	return items, total, suggestion, nil
}

// loadVisible fetches the product and its shop. Hidden products and products of
// unapproved shops are only visible to their seller and to admins.
func (h *Handler) loadVisible(c *fiber.Ctx) (domain.Product, domain.SellerProfile, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return domain.Product{}, domain.SellerProfile{}, fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	ctx := c.UserContext()

	p, err := h.Products.ByID(ctx, id)
	if errors.Is(err, dbutil.ErrNotFound) {
		return p, domain.SellerProfile{}, fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		return p, domain.SellerProfile{}, err
	}
	seller, err := h.Sellers.ByID(ctx, p.SellerID)
	if err != nil {
		return p, seller, err
	}

	public := p.Status == domain.ProductActive && seller.Status == domain.SellerApproved
	if !public && seller.UserID != auth.UserID(c) && auth.Role(c) != domain.RoleAdmin {
		return p, seller, fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	return p, seller, nil
}

func (h *Handler) Show(c *fiber.Ctx) error {
	p, seller, err := h.loadVisible(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	uid := auth.UserID(c)

	if err := h.Products.IncrementView(ctx, p.ID); err != nil {
		h.Log.Warn("increment view count", zap.Int64("product_id", p.ID), zap.Error(err))
	} else {
		p.ViewCount++
	}
	if uid != 0 {
		if err := h.Activity.RecordView(ctx, uid, p.ID); err != nil {
			h.Log.Warn("record view", zap.Int64("user_id", uid), zap.Error(err))
		}
	}
	h.Metrics.ProductViewed()

	payments, err := h.Sellers.PaymentMethods(ctx, seller.ID)
	if err != nil {
		return err
	}
	summary, err := h.Reviews.Summary(ctx, p.ID)
	if err != nil {
		return err
	}
	reviews, err := h.Reviews.Visible(ctx, p.ID, domain.ReviewsPageSize, 0)
	if err != nil {
		return err
	}
	related, err := h.Recommend.Related(ctx, p, relatedLimit)
	if err != nil {
		h.Log.Warn("related products unavailable", zap.Int64("product_id", p.ID), zap.Error(err))
		related = nil
	}

	canReview := uid != 0 && seller.UserID != uid
	var mine *domain.Review
	if canReview {
		r, err := h.Reviews.ByUser(ctx, p.ID, uid)
		switch {
		case err == nil:
			mine = &r
		case !errors.Is(err, dbutil.ErrNotFound):
			return err
		}
	}

	return h.Render.Page(c, "products/show", fiber.Map{
		"Title":         p.Name,
		"Product":       p,
		"Seller":        seller,
		"Payments":      payments,
		"Summary":       summary,
		"Reviews":       reviews,
		"Related":       related,
		"CanReview":     canReview,
		"MyReview":      mine,
		"RatingOptions": []int{5, 4, 3, 2, 1},
		"Errors":        map[string]string(nil),
	})
}

// Contact sends the buyer to the seller's WhatsApp chat with an order message filled in.
func (h *Handler) Contact(c *fiber.Ctx) error {
	p, seller, err := h.loadVisible(c)
	if err != nil {
		return err
	}
	if whatsapp.NormalizePhone(seller.WhatsApp, h.CountryCode) == "" {
		return fiber.NewError(fiber.StatusNotFound, "this seller has no WhatsApp number yet")
	}

	h.Metrics.ContactClicked()
	h.Log.Info("whatsapp contact",
		zap.Int64("product_id", p.ID),
		zap.Int64("seller_id", seller.ID),
		zap.Int64("user_id", auth.UserID(c)),
	)

	link := h.BaseURL + "/products/" + strconv.FormatInt(p.ID, 10)
	msg := whatsapp.OrderMessage(p.Name, p.Price, link)
	return c.Redirect(whatsapp.ChatURL(seller.WhatsApp, h.CountryCode, msg), fiber.StatusFound)
}
