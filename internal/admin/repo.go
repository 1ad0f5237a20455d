package admin

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

const listLimit = 200

type Repo struct {
	DB *pgxpool.Pool
}

// Stats are the overview counters.
type Stats struct {
	Users          int64 `json:"users"`
	Sellers        int64 `json:"sellers"`
	PendingSellers int64 `json:"pending_sellers"`
	Products       int64 `json:"products"`
	Reviews        int64 `json:"reviews"`
}

// SellerRow is a shop with its owner for the moderation list.
type SellerRow struct {
	ID           int64
	Slug         string
	ShopName     string
	WhatsApp     string
	City         string
	Status       domain.SellerStatus
	OwnerName    string
	OwnerEmail   string
	ProductCount int
}

func (r Repo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.DB.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM users),
		       (SELECT COUNT(*) FROM seller_profiles),
		       (SELECT COUNT(*) FROM seller_profiles WHERE status = 'pending'),
		       (SELECT COUNT(*) FROM products),
		       (SELECT COUNT(*) FROM reviews)`,
	).Scan(&s.Users, &s.Sellers, &s.PendingSellers, &s.Products, &s.Reviews)
	return s, err
}

// Sellers lists shops, pending first, optionally filtered by status.
func (r Repo) Sellers(ctx context.Context, status domain.SellerStatus) ([]SellerRow, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT s.id, s.slug, s.shop_name, s.whatsapp, s.city, s.status, u.name, u.email,
		       (SELECT COUNT(*) FROM products p WHERE p.seller_id = s.id)::int
		FROM seller_profiles s
		JOIN users u ON u.id = s.user_id
		WHERE ($1 = '' OR s.status = $1)
		ORDER BY (s.status = 'pending') DESC, s.created_at DESC
		LIMIT $2`, string(status), listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SellerRow{}
	for rows.Next() {
		var s SellerRow
		if err := rows.Scan(&s.ID, &s.Slug, &s.ShopName, &s.WhatsApp, &s.City, &s.Status,
			&s.OwnerName, &s.OwnerEmail, &s.ProductCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetSellerStatus updates the shop and returns it so the owner can be notified.
func (r Repo) SetSellerStatus(ctx context.Context, id int64, status domain.SellerStatus) (domain.SellerProfile, error) {
	var p domain.SellerProfile
	err := r.DB.QueryRow(ctx, `
		UPDATE seller_profiles SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, shop_name, slug, whatsapp, city, status`,
		id, status,
	).Scan(&p.ID, &p.UserID, &p.ShopName, &p.Slug, &p.WhatsApp, &p.City, &p.Status)
	return p, dbutil.WrapError(err)
}

const productsSQL = `
SELECT p.id, p.seller_id, p.name, p.category, p.price, p.status, p.view_count, p.created_at, s.shop_name
FROM products p
JOIN seller_profiles s ON s.id = p.seller_id
WHERE ($1 = '' OR p.name ILIKE $1)
  AND ($2 = '' OR p.status = $2)
ORDER BY p.created_at DESC
LIMIT $3`

func (r Repo) Products(ctx context.Context, query string, status domain.ProductStatus) ([]domain.Product, error) {
	rows, err := r.DB.Query(ctx, productsSQL, dbutil.ContainsPattern(query), string(status), listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Category, &p.Price, &p.Status,
			&p.ViewCount, &p.CreatedAt, &p.ShopName); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const setProductStatusSQL = `UPDATE products SET status = $2, moderated = ($2 = 'hidden'), updated_at = NOW() WHERE id = $1`

// SetProductStatus hides or restores a product. A hide is flagged as moderated so the seller cannot lift it.
func (r Repo) SetProductStatus(ctx context.Context, id int64, status domain.ProductStatus) error {
	return dbutil.ExpectRows(r.DB.Exec(ctx, setProductStatusSQL, id, string(status)))
}

// DeleteProduct returns the removed product's image file name.
func (r Repo) DeleteProduct(ctx context.Context, id int64) (string, error) {
	var image string
	err := r.DB.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING image_path`, id).Scan(&image)
	return image, dbutil.WrapError(err)
}

func (r Repo) Reviews(ctx context.Context, status domain.ReviewStatus) ([]domain.Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT r.id, r.product_id, p.name, r.user_id, u.name, r.rating, r.comment, r.status, r.created_at
		FROM reviews r
		JOIN products p ON p.id = r.product_id
		JOIN users u ON u.id = r.user_id
		WHERE ($1 = '' OR r.status = $1)
		ORDER BY r.created_at DESC
		LIMIT $2`, string(status), listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.ProductName, &rv.UserID, &rv.UserName,
			&rv.Rating, &rv.Comment, &rv.Status, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r Repo) SetReviewStatus(ctx context.Context, id int64, status domain.ReviewStatus) error {
	return dbutil.ExpectRows(r.DB.Exec(ctx,
		`UPDATE reviews SET status = $2, updated_at = NOW() WHERE id = $1`, id, status))
}

func (r Repo) DeleteReview(ctx context.Context, id int64) error {
	return dbutil.ExpectRows(r.DB.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id))
}
