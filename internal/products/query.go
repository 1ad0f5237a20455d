package products

import (
	"fmt"
	"strings"

	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
)

// productSelect joins the seller and the visible-review aggregate onto each product row.
const productSelect = `
SELECT p.id, p.seller_id, p.name, p.description, p.category, p.price, p.stock, p.image_path,
       p.status, p.moderated, p.view_count, p.created_at, p.updated_at,
       s.shop_name, s.slug, s.city, s.whatsapp,
       COALESCE(rv.avg_rating, 0)::float8 AS avg_rating,
       COALESCE(rv.reviews_count, 0)::int AS reviews_count
FROM products p
JOIN seller_profiles s ON s.id = p.seller_id
LEFT JOIN LATERAL (
    SELECT AVG(r.rating) AS avg_rating, COUNT(*) AS reviews_count
    FROM reviews r
    WHERE r.product_id = p.id AND r.status = 'visible'
) rv ON TRUE`

const publicOnly = `p.status = 'active' AND s.status = 'approved'`

var orderBy = map[string]string{
	SortNewest:    "p.created_at DESC, p.id DESC",
	SortPriceAsc:  "p.price ASC, p.id DESC",
	SortPriceDesc: "p.price DESC, p.id DESC",
	SortPopular:   "p.view_count DESC, p.created_at DESC, p.id DESC",
	SortRating:    "avg_rating DESC, reviews_count DESC, p.id DESC",
}

// where accumulates AND-ed conditions with numbered placeholders.
type where struct {
	conds []string
	args  []any
}

func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *where) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// buildListQuery returns the page query, the matching count query and the shared
// arguments. The page query takes two extra arguments for LIMIT and OFFSET.
func buildListQuery(p ListParams) (listSQL, countSQL string, args []any) {
	w := &where{}
	w.add(publicOnly)

	if p.Query != "" {
		ph := w.arg(dbutil.ContainsPattern(p.Query))
		w.add(fmt.Sprintf("(p.name ILIKE %[1]s OR p.description ILIKE %[1]s OR s.shop_name ILIKE %[1]s)", ph))
	}
	if p.Category != "" {
		w.add("p.category = " + w.arg(p.Category))
	}
	if p.City != "" {
		w.add("LOWER(s.city) = LOWER(" + w.arg(p.City) + ")")
	}
	if p.SellerID > 0 {
		w.add("p.seller_id = " + w.arg(p.SellerID))
	}
	if p.MinPrice != nil {
		w.add("p.price >= " + w.arg(p.MinPrice.String()) + "::numeric")
	}
	if p.MaxPrice != nil {
		w.add("p.price <= " + w.arg(p.MaxPrice.String()) + "::numeric")
	}

	order, ok := orderBy[p.Sort]
	if !ok {
		order = orderBy[SortNewest]
	}

	n := len(w.args)
	listSQL = productSelect + w.String() +
		" ORDER BY " + order +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	countSQL = `SELECT COUNT(*) FROM products p JOIN seller_profiles s ON s.id = p.seller_id` + w.String()
	return listSQL, countSQL, w.args
}

// buildMatchQuery selects public products matching any of values through matchCond,
// which receives the placeholder of one value. Products in exclude are skipped.
func buildMatchQuery(matchCond func(ph string) string, values []string, exclude []int64, order string, limit int) (string, []any) {
	w := &where{}
	w.add(publicOnly)

	if len(values) > 0 {
		ors := make([]string, 0, len(values))
		for _, v := range values {
			ors = append(ors, matchCond(w.arg(v)))
		}
		w.add("(" + strings.Join(ors, " OR ") + ")")
	}
	if len(exclude) > 0 {
		w.add("NOT (p.id = ANY(" + w.arg(exclude) + "))")
	}

	sql := productSelect + w.String() + " ORDER BY " + order + " LIMIT " + w.arg(limit)
	return sql, w.args
}
