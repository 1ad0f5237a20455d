package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

// CSRF protects every unsafe form post; templates render the token as the hidden _csrf field.
func CSRF(storage fiber.Storage, secure bool) fiber.Handler {
	return csrf.New(csrf.Config{
		KeyLookup:      "form:_csrf",
		CookieName:     "whfood_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		Expiration:     2 * time.Hour,
		ContextKey:     "csrf",
		Storage:        storage,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fiber.NewError(fiber.StatusForbidden, "your form has expired, please reload the page and try again")
		},
	})
}
