package products

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

type Repo struct {
	DB *pgxpool.Pool
}

// Input is the seller-editable part of a product.
type Input struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int
	ImagePath   string
	Status      domain.ProductStatus
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &p.ImagePath,
		&p.Status, &p.Moderated, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
		&p.ShopName, &p.SellerSlug, &p.City, &p.WhatsApp,
		&p.AvgRating, &p.ReviewsCount,
	)
	return p, err
}

func (r Repo) query(ctx context.Context, sql string, args ...any) ([]domain.Product, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ByID returns the product whatever its status; callers decide who may see it.
func (r Repo) ByID(ctx context.Context, id int64) (domain.Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	return p, dbutil.WrapError(err)
}

func (r Repo) BySeller(ctx context.Context, sellerID int64, activeOnly bool) ([]domain.Product, error) {
	sql := productSelect + ` WHERE p.seller_id = $1`
	if activeOnly {
		sql += ` AND p.status = 'active'`
	}
	return r.query(ctx, sql+` ORDER BY p.created_at DESC, p.id DESC`, sellerID)
}

func (r Repo) List(ctx context.Context, p ListParams) ([]domain.Product, int, error) {
	p.Normalize()
	listSQL, countSQL, args := buildListQuery(p)

	var total int
	if err := r.DB.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	if total == 0 {
		return []domain.Product{}, 0, nil
	}

	items, err := r.query(ctx, listSQL, append(args, p.PerPage, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return items, total, nil
}

func (r Repo) Popular(ctx context.Context, limit int, exclude []int64) ([]domain.Product, error) {
	sql, args := buildMatchQuery(nil, nil, exclude, orderBy[SortPopular], limit)
	return r.query(ctx, sql, args...)
}

func (r Repo) ByCategories(ctx context.Context, categories []string, exclude []int64, limit int) ([]domain.Product, error) {
	if len(categories) == 0 {
		return []domain.Product{}, nil
	}
	sql, args := buildMatchQuery(func(ph string) string {
		return "p.category = " + ph
	}, categories, exclude, orderBy[SortPopular], limit)
	return r.query(ctx, sql, args...)
}

func (r Repo) ByKeywords(ctx context.Context, keywords []string, exclude []int64, limit int) ([]domain.Product, error) {
	patterns := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k != "" {
			patterns = append(patterns, dbutil.ContainsPattern(k))
		}
	}
	if len(patterns) == 0 {
		return []domain.Product{}, nil
	}
	sql, args := buildMatchQuery(func(ph string) string {
		return "(p.name ILIKE " + ph + " OR p.description ILIKE " + ph + ")"
	}, patterns, exclude, orderBy[SortPopular], limit)
	return r.query(ctx, sql, args...)
}

func (r Repo) IncrementView(ctx context.Context, id int64) error {
	_, err := r.DB.Exec(ctx, `UPDATE products SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

// SearchTerms lists public product names for "did you mean" suggestions.
func (r Repo) SearchTerms(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT DISTINCT LOWER(p.name)
		FROM products p
		JOIN seller_profiles s ON s.id = p.seller_id
		WHERE `+publicOnly+`
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r Repo) Create(ctx context.Context, sellerID int64, in Input) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products (seller_id, name, description, category, price, stock, image_path, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		sellerID, in.Name, in.Description, in.Category, in.Price.String(), in.Stock, in.ImagePath, in.Status,
	).Scan(&id)
	return id, dbutil.WrapError(err)
}

// updateSQL keeps a moderated product hidden whatever status the seller sends.
const updateSQL = `
UPDATE products
SET name = $3, description = $4, category = $5, price = $6, stock = $7,
    image_path = COALESCE(NULLIF($8, ''), image_path),
    status = CASE WHEN moderated THEN 'hidden' ELSE $9 END, updated_at = NOW()
WHERE id = $1 AND seller_id = $2`

// Update only touches a product owned by sellerID. An empty ImagePath keeps the current image.
func (r Repo) Update(ctx context.Context, sellerID, id int64, in Input) error {
	return dbutil.ExpectRows(r.DB.Exec(ctx, updateSQL,
		id, sellerID, in.Name, in.Description, in.Category, in.Price.String(), in.Stock, in.ImagePath, in.Status,
	))
}

// Delete removes a product owned by sellerID and returns its image so the file can go too.
func (r Repo) Delete(ctx context.Context, sellerID, id int64) (string, error) {
	var image string
	err := r.DB.QueryRow(ctx,
		`DELETE FROM products WHERE id = $1 AND seller_id = $2 RETURNING image_path`,
		id, sellerID,
	).Scan(&image)
	return image, dbutil.WrapError(err)
}
