// Package recommend blends a user's recent categories and searches with popular
// products into a short, de-duplicated list.
package recommend

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

const (
	DefaultLimit = 8
	MaxLimit     = 24

	recentCategories = 3
	recentKeywords   = 5
	viewedWindow     = 50
)

type History interface {
	RecentCategories(ctx context.Context, userID int64, limit int) ([]string, error)
	RecentKeywords(ctx context.Context, userID int64, limit int) ([]string, error)
	ViewedProductIDs(ctx context.Context, userID int64, limit int) ([]int64, error)
}

type Catalog interface {
	Popular(ctx context.Context, limit int, exclude []int64) ([]domain.Product, error)
	ByCategories(ctx context.Context, categories []string, exclude []int64, limit int) ([]domain.Product, error)
	ByKeywords(ctx context.Context, keywords []string, exclude []int64, limit int) ([]domain.Product, error)
}

type Engine struct {
	History History
	Catalog Catalog
	// Timeout bounds one Recommend or Related call; zero means no extra bound.
	Timeout time.Duration
}

func New(h History, c Catalog) *Engine {
	return &Engine{History: h, Catalog: c, Timeout: 3 * time.Second}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.Timeout)
}

// Recommend picks products from the user's recent categories, then recent search
// keywords, then popular products, skipping products the user has already viewed
// in the first two sources. Anonymous users (userID 0) get popular products.
func (e *Engine) Recommend(ctx context.Context, userID int64, limit int) ([]domain.Product, error) {
	limit = clampLimit(limit)
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if userID == 0 {
		items, err := e.Catalog.Popular(ctx, limit, nil)
		if err != nil {
			return nil, fmt.Errorf("recommend: popular: %w", err)
		}
		return Blend(limit, items), nil
	}

	var (
		categories []string
		keywords   []string
		viewed     []int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if categories, err = e.History.RecentCategories(gctx, userID, recentCategories); err != nil {
			return fmt.Errorf("recent categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if keywords, err = e.History.RecentKeywords(gctx, userID, recentKeywords); err != nil {
			return fmt.Errorf("recent keywords: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if viewed, err = e.History.ViewedProductIDs(gctx, userID, viewedWindow); err != nil {
			return fmt.Errorf("viewed products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	var byCategory, byKeyword []domain.Product
	if len(categories) > 0 {
		items, err := e.Catalog.ByCategories(ctx, categories, viewed, limit)
		if err != nil {
			return nil, fmt.Errorf("recommend: by category: %w", err)
		}
		byCategory = items
	}
	if len(keywords) > 0 && len(Blend(limit, byCategory)) < limit {
		items, err := e.Catalog.ByKeywords(ctx, keywords, viewed, limit)
		if err != nil {
			return nil, fmt.Errorf("recommend: by keyword: %w", err)
		}
		byKeyword = items
	}

	picked := Blend(limit, byCategory, byKeyword)
	if len(picked) >= limit {
		return picked, nil
	}

	popular, err := e.Catalog.Popular(ctx, limit, ids(picked))
	if err != nil {
		return nil, fmt.Errorf("recommend: popular: %w", err)
	}
	return Blend(limit, picked, popular), nil
}

// Related lists other products in p's category, topped up with popular products.
func (e *Engine) Related(ctx context.Context, p domain.Product, limit int) ([]domain.Product, error) {
	limit = clampLimit(limit)
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	same, err := e.Catalog.ByCategories(ctx, []string{p.Category}, []int64{p.ID}, limit)
	if err != nil {
		return nil, fmt.Errorf("related: by category: %w", err)
	}
	picked := Blend(limit, same)
	if len(picked) >= limit {
		return picked, nil
	}

	popular, err := e.Catalog.Popular(ctx, limit, append(ids(picked), p.ID))
	if err != nil {
		return nil, fmt.Errorf("related: popular: %w", err)
	}
	return Blend(limit, picked, popular), nil
}

// Blend concatenates lists in order, keeps the first occurrence of each product ID
// and stops at limit. The result is never nil.
func Blend(limit int, lists ...[]domain.Product) []domain.Product {
	out := make([]domain.Product, 0, limit)
	seen := make(map[int64]struct{}, limit)
	for _, list := range lists {
		for _, p := range list {
			if len(out) >= limit {
				return out
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func ids(items []domain.Product) []int64 {
	out := make([]int64, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}
