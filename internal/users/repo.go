package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

type Repo struct {
	DB *pgxpool.Pool
}

// NewUser is a validated sign-up. Shop is set only for sellers.
type NewUser struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         domain.Role
	Shop         *NewShop
}

type NewShop struct {
	ShopName string
	City     string
}

const userColumns = `id, name, email, phone, password_hash, role, created_at, last_seen_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.LastSeenAt)
	return u, dbutil.WrapError(err)
}

// Create inserts the user and, for sellers, a pending shop in the same transaction.
func (r Repo) Create(ctx context.Context, in NewUser) (domain.User, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	u, err := scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		in.Name, normalizeEmail(in.Email), in.Phone, in.PasswordHash, in.Role,
	))
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	if in.Role == domain.RoleSeller && in.Shop != nil {
		if err := insertShop(ctx, tx, u.ID, in.Phone, *in.Shop); err != nil {
			return domain.User{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func insertShop(ctx context.Context, tx pgx.Tx, userID int64, whatsapp string, shop NewShop) error {
	base := domain.Slugify(shop.ShopName)
	if base == "" {
		base = "shop"
	}

	slug := base
	for attempt := 0; attempt < 3; attempt++ {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO seller_profiles (user_id, shop_name, slug, whatsapp, city, status)
			VALUES ($1, $2, $3, $4, $5, 'pending')
			ON CONFLICT (slug) DO NOTHING
			RETURNING id`,
			userID, shop.ShopName, slug, whatsapp, shop.City,
		).Scan(&id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("insert seller profile: %w", dbutil.WrapError(err))
		}
		slug = base + "-" + uuid.NewString()[:6]
	}
	return fmt.Errorf("insert seller profile: %w", dbutil.ErrDuplicate)
}

func (r Repo) ByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.DB.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email)))
}

func (r Repo) ByID(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.DB.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r Repo) TouchLastSeen(ctx context.Context, userID int64) error {
	_, err := r.DB.Exec(ctx, `UPDATE users SET last_seen_at = NOW() WHERE id = $1`, userID)
	return err
}

// EnsureAdmin creates an admin account or promotes and re-keys an existing one.
func (r Repo) EnsureAdmin(ctx context.Context, name, email, passwordHash string) (domain.User, error) {
	return scanUser(r.DB.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (email) DO UPDATE
		SET role = 'admin', password_hash = EXCLUDED.password_hash
		RETURNING `+userColumns,
		name, normalizeEmail(email), passwordHash,
	))
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
