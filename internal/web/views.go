package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/money"
)

//go:embed views
var viewsFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded assets served under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// NewEngine builds the template engine over the embedded views directory.
func NewEngine(reload bool) *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.Reload(reload)
	engine.AddFuncMap(Funcs())
	return engine
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"rupiah":        func(d decimal.Decimal) string { return money.FormatRupiah(d) },
		"categoryLabel": domain.CategoryLabel,
		"stars":         Stars,
		"starsN":        func(n int) string { return Stars(float64(n)) },
		"imageURL":      ImageURL,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"rating":        func(f float64) string { return fmt.Sprintf("%.1f", f) },
		"add":           func(a, b int) int { return a + b },
		"sub":           func(a, b int) int { return a - b },
	}
}

// Stars renders a rating as five filled/empty stars, rounding to the nearest whole star.
func Stars(rating float64) string {
	n := int(rating + 0.5)
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func ImageURL(path string) string {
	if path == "" {
		return "/static/placeholder.svg"
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "/") {
		return path
	}
	return "/uploads/" + path
}
