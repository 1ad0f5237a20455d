package products

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

const maxPopularLimit = 24

type listResponse struct {
	Items      []domain.Product `json:"items"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	Total      int              `json:"total"`
	Suggestion string           `json:"suggestion"`
}

// APIPopular handles GET /api/products-popular?limit=.
func (h *Handler) APIPopular(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", homeLimit)
	if limit < 1 {
		limit = homeLimit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}

	items, err := h.Products.Popular(c.UserContext(), limit, nil)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": items})
}

// APIList handles GET /api/products with the same filters as the listing page.
func (h *Handler) APIList(c *fiber.Ctx) error {
	params := ParseListParams(c)
	items, total, suggestion, err := h.search(c, params, false)
	if err != nil {
		return err
	}
	return c.JSON(listResponse{
		Items:      items,
		Page:       params.Page,
		PerPage:    params.PerPage,
		Total:      total,
		Suggestion: suggestion,
	})
}
