package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/RiskiJayaPutra/whfood/internal/admin"
	"github.com/RiskiJayaPutra/whfood/internal/auth"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/metrics"
	"github.com/RiskiJayaPutra/whfood/internal/products"
	"github.com/RiskiJayaPutra/whfood/internal/reviews"
	"github.com/RiskiJayaPutra/whfood/internal/sellers"
	"github.com/RiskiJayaPutra/whfood/internal/users"
	"github.com/RiskiJayaPutra/whfood/internal/web"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

type Router struct {
	Users    *users.Handler
	Sellers  *sellers.Handler
	Products *products.Handler
	Reviews  *reviews.Handler
	Admin    *admin.Handler
	Metrics  *metrics.Metrics

	Ping       Pinger
	UploadDir  string
	CORSOrigin string
	AuthLimit  fiber.Handler
	WriteLimit fiber.Handler
}

func passThrough(c *fiber.Ctx) error { return c.Next() }

func orPass(h fiber.Handler) fiber.Handler {
	if h == nil {
		return passThrough
	}
	return h
}

// RegisterRoutes mounts every page, JSON endpoint and ops route on app.
func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Get("/healthz", r.health)
	if r.Metrics != nil {
		app.Get("/metrics", r.Metrics.Handler())
	}

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   web.Static(),
		MaxAge: 3600,
	}))
	if r.UploadDir != "" {
		app.Static("/uploads", r.UploadDir, fiber.Static{MaxAge: 86400})
	}

	authLimit := orPass(r.AuthLimit)
	write := orPass(r.WriteLimit)

	api := app.Group("/api", CorsMiddleware(r.CORSOrigin))
	api.Get("/products-popular", r.Products.APIPopular)
	api.Get("/products", r.Products.APIList)
	api.Get("/reviews", r.Reviews.List)

	app.Get("/", r.Products.Home)
	app.Get("/products", r.Products.Index)
	app.Get("/products/:id<int>", r.Products.Show)
	app.Get("/products/:id<int>/contact", r.Products.Contact)
	app.Post("/products/:id<int>/reviews", auth.RequireUser(), write, r.Reviews.Submit)
	app.Get("/sellers/:slug", r.Sellers.Show)

	app.Get("/login", r.Users.ShowLogin)
	app.Post("/login", authLimit, r.Users.Login)
	app.Get("/register", r.Users.ShowRegister)
	app.Post("/register", authLimit, r.Users.Register)
	app.Post("/logout", r.Users.Logout)

	seller := app.Group("/seller", auth.RequireRole(domain.RoleSeller), write)
	seller.Get("/", r.Sellers.Dashboard)
	seller.Get("/profile", r.Sellers.ShowProfile)
	seller.Post("/profile", r.Sellers.UpdateProfile)
	seller.Get("/payments", r.Sellers.Payments)
	seller.Post("/payments", r.Sellers.AddPayment)
	seller.Post("/payments/:id<int>/delete", r.Sellers.DeletePayment)
	seller.Get("/products/new", r.Products.NewForm)
	seller.Post("/products", r.Products.Create)
	seller.Get("/products/:id<int>/edit", r.Products.EditForm)
	seller.Post("/products/:id<int>", r.Products.Update)
	seller.Post("/products/:id<int>/delete", r.Products.Delete)
	seller.Get("/catalog.pdf", r.Sellers.CatalogPDF)

	a := app.Group("/admin", admin.RequireAdmin(), write)
	a.Get("/", r.Admin.Dashboard)
	a.Get("/sellers", r.Admin.Sellers)
	a.Post("/sellers/:id<int>/status", r.Admin.SetSellerStatus)
	a.Get("/products", r.Admin.Products)
	a.Post("/products/:id<int>/status", r.Admin.SetProductStatus)
	a.Post("/products/:id<int>/delete", r.Admin.DeleteProduct)
	a.Get("/reviews", r.Admin.Reviews)
	a.Post("/reviews/:id<int>/status", r.Admin.SetReviewStatus)
	a.Post("/reviews/:id<int>/delete", r.Admin.DeleteReview)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "page not found")
	})
}

func (r *Router) health(c *fiber.Ctx) error {
	if r.Ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
