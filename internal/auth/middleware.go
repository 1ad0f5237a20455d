package auth

import (
	"context"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

// Toucher records activity for a signed-in user.
type Toucher interface {
	TouchLastSeen(ctx context.Context, userID int64) error
}

type Middleware struct {
	Tokens       *Tokens
	Users        Toucher
	CookieSecure bool
}

// LoadUser reads the session cookie, if any, and exposes the user through Locals.
// It never rejects a request; see RequireUser / RequireRole.
func (m *Middleware) LoadUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(CookieName)
		if raw == "" {
			return c.Next()
		}

		sess, err := m.Tokens.Parse(raw)
		if err != nil {
			m.ClearCookie(c)
			return c.Next()
		}

		c.Locals("user_id", sess.UserID)
		c.Locals("role", sess.Role)
		c.Locals("user_name", sess.Name)

		// Update last_seen_at (best-effort, do not block request)
		if m.Users != nil {
			go func(uid int64) {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = m.Users.TouchLastSeen(ctx, uid)
			}(sess.UserID)
		}

		return c.Next()
	}
}

// RequireUser sends anonymous visitors to the login page.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == 0 {
			if isAPI(c) {
				return fiber.NewError(fiber.StatusUnauthorized, "login required")
			}
			return c.Redirect("/login?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// RequireRole allows only users with one of the given roles.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == 0 {
			return RequireUser()(c)
		}
		have := Role(c)
		for _, r := range roles {
			if have == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "you do not have access to this page")
	}
}

func (m *Middleware) SetCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   m.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
}

func (m *Middleware) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   m.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}

func UserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("user_id").(int64)
	return id
}

func Role(c *fiber.Ctx) domain.Role {
	r, _ := c.Locals("role").(domain.Role)
	return r
}

func UserName(c *fiber.Ctx) string {
	n, _ := c.Locals("user_name").(string)
	return n
}

func isAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return len(p) >= 5 && p[:5] == "/api/"
}
