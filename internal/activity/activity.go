// Package activity stores what signed-in users look at and search for.
package activity

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const maxKeywordLen = 100

type Repo struct {
	DB *pgxpool.Pool
}

func (r Repo) RecordView(ctx context.Context, userID, productID int64) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO user_product_views (user_id, product_id) VALUES ($1, $2)`, userID, productID)
	return err
}

// RecordSearch stores the keyword lowercased so repeated searches collapse.
func (r Repo) RecordSearch(ctx context.Context, userID int64, keyword string) error {
	keyword = NormalizeKeyword(keyword)
	if keyword == "" {
		return nil
	}
	_, err := r.DB.Exec(ctx,
		`INSERT INTO user_searches (user_id, keyword) VALUES ($1, $2)`, userID, keyword)
	return err
}

const (
	recentCategoriesSQL = `
SELECT p.category
FROM user_product_views v
JOIN products p ON p.id = v.product_id
WHERE v.user_id = $1
GROUP BY p.category
ORDER BY MAX(v.viewed_at) DESC
LIMIT $2`

	recentKeywordsSQL = `
SELECT keyword
FROM user_searches
WHERE user_id = $1
GROUP BY keyword
ORDER BY MAX(searched_at) DESC
LIMIT $2`

	viewedProductsSQL = `
SELECT product_id
FROM user_product_views
WHERE user_id = $1
GROUP BY product_id
ORDER BY MAX(viewed_at) DESC
LIMIT $2`
)

// RecentCategories returns up to limit distinct categories of viewed products, most recent first.
func (r Repo) RecentCategories(ctx context.Context, userID int64, limit int) ([]string, error) {
	return r.column(ctx, recentCategoriesSQL, userID, limit)
}

// RecentKeywords returns up to limit distinct search keywords, most recent first.
func (r Repo) RecentKeywords(ctx context.Context, userID int64, limit int) ([]string, error) {
	return r.column(ctx, recentKeywordsSQL, userID, limit)
}

// ViewedProductIDs returns the most recently viewed distinct products.
func (r Repo) ViewedProductIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	rows, err := r.DB.Query(ctx, viewedProductsSQL, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r Repo) column(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
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

// NormalizeKeyword lowercases, collapses whitespace and truncates a search keyword.
func NormalizeKeyword(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if r := []rune(s); len(r) > maxKeywordLen {
		s = string(r[:maxKeywordLen])
	}
	return s
}
