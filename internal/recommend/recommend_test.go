package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeHistory struct {
	categories []string
	keywords   []string
	viewed     []int64
	err        error
}

func (f fakeHistory) RecentCategories(context.Context, int64, int) ([]string, error) {
	return f.categories, f.err
}

func (f fakeHistory) RecentKeywords(context.Context, int64, int) ([]string, error) {
	return f.keywords, nil
}

func (f fakeHistory) ViewedProductIDs(context.Context, int64, int) ([]int64, error) {
	return f.viewed, nil
}

// fakeCatalog serves products in popularity order and records the calls it receives.
type fakeCatalog struct {
	items []domain.Product

	mu    sync.Mutex
	calls []string
}

func (f *fakeCatalog) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func excluded(id int64, exclude []int64) bool {
	for _, e := range exclude {
		if e == id {
			return true
		}
	}
	return false
}

func (f *fakeCatalog) filter(limit int, exclude []int64, keep func(domain.Product) bool) []domain.Product {
	out := []domain.Product{}
	for _, p := range f.items {
		if len(out) == limit {
			break
		}
		if !excluded(p.ID, exclude) && keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeCatalog) Popular(_ context.Context, limit int, exclude []int64) ([]domain.Product, error) {
	f.record("popular")
	return f.filter(limit, exclude, func(domain.Product) bool { return true }), nil
}

func (f *fakeCatalog) ByCategories(_ context.Context, cats []string, exclude []int64, limit int) ([]domain.Product, error) {
	f.record("categories")
	return f.filter(limit, exclude, func(p domain.Product) bool {
		for _, c := range cats {
			if p.Category == c {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeCatalog) ByKeywords(_ context.Context, kws []string, exclude []int64, limit int) ([]domain.Product, error) {
	f.record("keywords")
	return f.filter(limit, exclude, func(p domain.Product) bool {
		for _, k := range kws {
			if k == p.Name {
				return true
			}
		}
		return false
	}), nil
}

func catalog() *fakeCatalog {
	return &fakeCatalog{items: []domain.Product{
		{ID: 1, Name: "rendang", Category: "meals"},
		{ID: 2, Name: "cendol", Category: "drinks"},
		{ID: 3, Name: "gudeg", Category: "meals"},
		{ID: 4, Name: "lapis", Category: "cakes"},
		{ID: 5, Name: "soto", Category: "meals"},
		{ID: 6, Name: "bolu", Category: "cakes"},
		{ID: 7, Name: "teh", Category: "drinks"},
	}}
}

func productIDs(items []domain.Product) []int64 {
	return ids(items)
}

func TestRecommend_Anonymous(t *testing.T) {
	cat := catalog()
	e := New(fakeHistory{}, cat)

	got, err := e.Recommend(context.Background(), 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, productIDs(got))
	assert.Equal(t, []string{"popular"}, cat.calls)
}

func TestRecommend_BlendsSourcesInOrder(t *testing.T) {
	cat := catalog()
	e := New(fakeHistory{categories: []string{"cakes"}, keywords: []string{"cendol", "bolu"}, viewed: []int64{4}}, cat)

	got, err := e.Recommend(context.Background(), 42, 5)
	require.NoError(t, err)

	// cakes minus viewed 4 -> 6; keywords -> 2 (6 already picked); popular fills the rest.
	assert.Equal(t, []int64{6, 2, 1, 3, 4}, productIDs(got))
	assert.Equal(t, []string{"categories", "keywords", "popular"}, cat.calls)
}

func TestRecommend_StopsWhenFull(t *testing.T) {
	cat := catalog()
	e := New(fakeHistory{categories: []string{"meals"}, keywords: []string{"teh"}}, cat)

	got, err := e.Recommend(context.Background(), 42, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, productIDs(got))
	assert.Equal(t, []string{"categories"}, cat.calls)
}

func TestRecommend_NoHistoryFallsBackToPopular(t *testing.T) {
	e := New(fakeHistory{}, catalog())
	got, err := e.Recommend(context.Background(), 42, 0)
	require.NoError(t, err)
	assert.Len(t, got, 7)
}

func TestRecommend_LimitIsClamped(t *testing.T) {
	many := &fakeCatalog{}
	for i := int64(1); i <= 40; i++ {
		many.items = append(many.items, domain.Product{ID: i, Category: "meals"})
	}
	e := New(fakeHistory{}, many)

	got, err := e.Recommend(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Len(t, got, MaxLimit)

	got, err = e.Recommend(context.Background(), 0, -1)
	require.NoError(t, err)
	assert.Len(t, got, DefaultLimit)
}

func TestRecommend_HistoryError(t *testing.T) {
	boom := errors.New("db down")
	e := New(fakeHistory{err: boom}, catalog())

	_, err := e.Recommend(context.Background(), 42, 4)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "recent categories")
}

func TestRelated(t *testing.T) {
	cat := catalog()
	e := New(fakeHistory{}, cat)

	got, err := e.Related(context.Background(), domain.Product{ID: 3, Category: "meals"}, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 5, 2, 4}, productIDs(got))
	for _, p := range got {
		assert.NotEqual(t, int64(3), p.ID)
	}
}

func TestBlend(t *testing.T) {
	a := []domain.Product{{ID: 1}, {ID: 2}, {ID: 1}}
	b := []domain.Product{{ID: 2}, {ID: 3}, {ID: 4}}

	assert.Equal(t, []int64{1, 2, 3}, productIDs(Blend(3, a, b)))
	assert.Equal(t, []int64{1, 2, 3, 4}, productIDs(Blend(10, a, b)))
	assert.NotNil(t, Blend(5))
	assert.Empty(t, Blend(5, nil, nil))
}
