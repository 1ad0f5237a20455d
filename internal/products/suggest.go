package products

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

// Suggest returns the candidate closest to query by edit distance, or "" when nothing
// is within max(2, len(query)/3). Whole names and their single words are both
// considered, along with category names.
func Suggest(query string, candidates []string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ""
	}
	limit := utf8.RuneCountInString(q) / 3
	if limit < 2 {
		limit = 2
	}

	terms := make([]string, 0, len(candidates)*2+len(domain.Categories)*2)
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		terms = append(terms, c)
		if words := strings.Fields(c); len(words) > 1 {
			terms = append(terms, words...)
		}
	}
	for _, cat := range domain.Categories {
		terms = append(terms, cat.Slug, strings.ToLower(cat.Label))
	}

	best, bestDist := "", limit+1
	for _, t := range terms {
		if t == q {
			continue
		}
		d := levenshtein.ComputeDistance(q, t)
		if d < bestDist || (d == bestDist && best != "" && len(t) < len(best)) {
			best, bestDist = t, d
		}
	}
	return best
}
