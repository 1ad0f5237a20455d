package products

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/money"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
	SortRating    = "rating"

	DefaultPerPage = 12
	MaxPerPage     = 48
	maxQueryLen    = 100
)

type SortOption struct {
	Value string
	Label string
}

var Sorts = []SortOption{
	{SortNewest, "Newest"},
	{SortPopular, "Most viewed"},
	{SortRating, "Best rated"},
	{SortPriceAsc, "Price: low to high"},
	{SortPriceDesc, "Price: high to low"},
}

// ListParams filters the public product listing. Zero values mean "no filter".
type ListParams struct {
	Query    string
	Category string
	City     string
	SellerID int64
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Page     int
	PerPage  int
}

// Normalize clamps paging, drops unknown sorts and categories, and orders the price range.
func (p *ListParams) Normalize() {
	p.Query = strings.TrimSpace(p.Query)
	if r := []rune(p.Query); len(r) > maxQueryLen {
		p.Query = string(r[:maxQueryLen])
	}
	p.City = strings.TrimSpace(p.City)
	if !domain.IsCategory(p.Category) {
		p.Category = ""
	}
	if !validSort(p.Sort) {
		p.Sort = SortNewest
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.MinPrice != nil && p.MaxPrice != nil && p.MinPrice.GreaterThan(*p.MaxPrice) {
		p.MinPrice, p.MaxPrice = p.MaxPrice, p.MinPrice
	}
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Values encodes the filters back into a query string, without the page.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.City != "" {
		v.Set("city", p.City)
	}
	if p.MinPrice != nil {
		v.Set("min_price", p.MinPrice.String())
	}
	if p.MaxPrice != nil {
		v.Set("max_price", p.MaxPrice.String())
	}
	if p.Sort != "" && p.Sort != SortNewest {
		v.Set("sort", p.Sort)
	}
	return v
}

func validSort(s string) bool {
	for _, o := range Sorts {
		if o.Value == s {
			return true
		}
	}
	return false
}

// ParseListParams reads the listing filters from the query string. Malformed
// numbers are ignored rather than rejected.
func ParseListParams(c *fiber.Ctx) ListParams {
	p := ListParams{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		City:     c.Query("city"),
		Sort:     c.Query("sort"),
		Page:     c.QueryInt("page", 1),
		PerPage:  c.QueryInt("per_page", DefaultPerPage),
	}
	p.MinPrice = optionalPrice(c.Query("min_price"))
	p.MaxPrice = optionalPrice(c.Query("max_price"))
	if id, err := strconv.ParseInt(c.Query("seller_id"), 10, 64); err == nil && id > 0 {
		p.SellerID = id
	}
	p.Normalize()
	return p
}

func optionalPrice(raw string) *decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	d, err := money.ParsePrice(raw)
	if err != nil {
		return nil
	}
	return &d
}

// Pager is the page navigation shown under listings.
type Pager struct {
	Page    int
	Pages   int
	HasPrev bool
	HasNext bool
	PrevURL string
	NextURL string
}

func NewPager(path string, p ListParams, total int) Pager {
	pages := (total + p.PerPage - 1) / p.PerPage
	if pages < 1 {
		pages = 1
	}
	pg := Pager{Page: p.Page, Pages: pages, HasPrev: p.Page > 1, HasNext: p.Page < pages}
	link := func(page int) string {
		v := p.Values()
		if page > 1 {
			v.Set("page", strconv.Itoa(page))
		}
		if len(v) == 0 {
			return path
		}
		return path + "?" + v.Encode()
	}
	if pg.HasPrev {
		pg.PrevURL = link(p.Page - 1)
	}
	if pg.HasNext {
		pg.NextURL = link(p.Page + 1)
	}
	return pg
}
