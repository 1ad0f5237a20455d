package sellers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

type Repo struct {
	DB *pgxpool.Pool
}

// ProfileUpdate carries the seller-editable shop fields.
type ProfileUpdate struct {
	ShopName    string
	WhatsApp    string
	City        string
	Address     string
	Description string
}

// Stats is the seller dashboard summary.
type Stats struct {
	Products  int     `json:"products"`
	Active    int     `json:"active"`
	Views     int64   `json:"views"`
	Reviews   int     `json:"reviews"`
	AvgRating float64 `json:"avg_rating"`
}

const profileColumns = `id, user_id, shop_name, slug, description, whatsapp, address, city, status, created_at, updated_at`

func scanProfile(row pgx.Row) (domain.SellerProfile, error) {
	var p domain.SellerProfile
	err := row.Scan(&p.ID, &p.UserID, &p.ShopName, &p.Slug, &p.Description, &p.WhatsApp,
		&p.Address, &p.City, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, dbutil.WrapError(err)
}

func (r Repo) ByUserID(ctx context.Context, userID int64) (domain.SellerProfile, error) {
	return scanProfile(r.DB.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM seller_profiles WHERE user_id = $1`, userID))
}

func (r Repo) ByID(ctx context.Context, id int64) (domain.SellerProfile, error) {
	return scanProfile(r.DB.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM seller_profiles WHERE id = $1`, id))
}

func (r Repo) BySlug(ctx context.Context, slug string) (domain.SellerProfile, error) {
	return scanProfile(r.DB.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM seller_profiles WHERE slug = $1`, slug))
}

// UpdateProfile keeps the slug stable so shared links survive a rename.
func (r Repo) UpdateProfile(ctx context.Context, sellerID int64, in ProfileUpdate) error {
	return dbutil.ExpectRows(r.DB.Exec(ctx, `
		UPDATE seller_profiles
		SET shop_name = $2, whatsapp = $3, city = $4, address = $5, description = $6, updated_at = NOW()
		WHERE id = $1`,
		sellerID, in.ShopName, in.WhatsApp, in.City, in.Address, in.Description,
	))
}

func (r Repo) PaymentMethods(ctx context.Context, sellerID int64) ([]domain.PaymentMethod, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, seller_id, method, provider, account_name, account_number, created_at
		FROM seller_payment_methods
		WHERE seller_id = $1
		ORDER BY created_at, id`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.PaymentMethod{}
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(&m.ID, &m.SellerID, &m.Method, &m.Provider, &m.AccountName, &m.AccountNumber, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r Repo) AddPaymentMethod(ctx context.Context, m domain.PaymentMethod) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO seller_payment_methods (seller_id, method, provider, account_name, account_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		m.SellerID, m.Method, m.Provider, m.AccountName, m.AccountNumber,
	).Scan(&id)
	return id, dbutil.WrapError(err)
}

// DeletePaymentMethod only removes rows owned by sellerID.
func (r Repo) DeletePaymentMethod(ctx context.Context, sellerID, id int64) error {
	return dbutil.ExpectRows(r.DB.Exec(ctx,
		`DELETE FROM seller_payment_methods WHERE id = $1 AND seller_id = $2`, id, sellerID))
}

func (r Repo) Stats(ctx context.Context, sellerID int64) (Stats, error) {
	var s Stats
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*)::int,
		       COUNT(*) FILTER (WHERE status = 'active')::int,
		       COALESCE(SUM(view_count), 0)::bigint
		FROM products
		WHERE seller_id = $1`, sellerID,
	).Scan(&s.Products, &s.Active, &s.Views)
	if err != nil {
		return Stats{}, fmt.Errorf("product stats: %w", err)
	}

	err = r.DB.QueryRow(ctx, `
		SELECT COUNT(*)::int, COALESCE(AVG(r.rating), 0)::float8
		FROM reviews r
		JOIN products p ON p.id = r.product_id
		WHERE p.seller_id = $1 AND r.status = 'visible'`, sellerID,
	).Scan(&s.Reviews, &s.AvgRating)
	if err != nil {
		return Stats{}, fmt.Errorf("review stats: %w", err)
	}
	return s, nil
}
