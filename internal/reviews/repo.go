package reviews

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

type Repo struct {
	DB *pgxpool.Pool
}

// Target is the product a review is written for.
type Target struct {
	ProductID   int64
	OwnerUserID int64
	Public      bool
}

const reviewSelect = `
SELECT r.id, r.product_id, r.user_id, u.name, r.rating, r.comment, r.status, r.created_at, r.updated_at
FROM reviews r
JOIN users u ON u.id = r.user_id`

func scanReview(row pgx.Row) (domain.Review, error) {
	var r domain.Review
	err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.UserName, &r.Rating, &r.Comment, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r Repo) Target(ctx context.Context, productID int64) (Target, error) {
	t := Target{ProductID: productID}
	err := r.DB.QueryRow(ctx, `
		SELECT s.user_id, (p.status = 'active' AND s.status = 'approved')
		FROM products p
		JOIN seller_profiles s ON s.id = p.seller_id
		WHERE p.id = $1`, productID,
	).Scan(&t.OwnerUserID, &t.Public)
	return t, dbutil.WrapError(err)
}

const upsertSQL = `
INSERT INTO reviews (product_id, user_id, rating, comment)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_id, user_id) DO UPDATE
SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
RETURNING id`

// Upsert creates the user's review of a product or replaces its rating and comment.
// A review hidden by an admin stays hidden.
func (r Repo) Upsert(ctx context.Context, rv domain.Review) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, upsertSQL,
		rv.ProductID, rv.UserID, rv.Rating, rv.Comment,
	).Scan(&id)
	return id, dbutil.WrapError(err)
}

func (r Repo) Visible(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, error) {
	rows, err := r.DB.Query(ctx, reviewSelect+`
		WHERE r.product_id = $1 AND r.status = 'visible'
		ORDER BY r.updated_at DESC, r.id DESC
		LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r Repo) Summary(ctx context.Context, productID int64) (domain.ReviewSummary, error) {
	var s domain.ReviewSummary
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)::int
		FROM reviews
		WHERE product_id = $1 AND status = 'visible'`, productID,
	).Scan(&s.Average, &s.Count)
	return s, err
}

func (r Repo) ByUser(ctx context.Context, productID, userID int64) (domain.Review, error) {
	rv, err := scanReview(r.DB.QueryRow(ctx, reviewSelect+`
		WHERE r.product_id = $1 AND r.user_id = $2`, productID, userID))
	return rv, dbutil.WrapError(err)
}
