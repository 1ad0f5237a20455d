package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/RiskiJayaPutra/whfood/internal/auth"
)

// RateLimitAuth limits login and registration to max requests per minute per IP.
// A nil storage keeps counters in process memory.
func RateLimitAuth(max int, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Storage:    storage,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodPost
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return "auth:" + c.IP()
		},
		LimitReached: tooManyRequests,
	})
}

// RateLimitWrite limits writes to max requests per minute per user, or per IP when anonymous.
func RateLimitWrite(max int, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		max = 60
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Storage:    storage,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			if uid := auth.UserID(c); uid != 0 {
				return "write:user:" + strconv.FormatInt(uid, 10)
			}
			return "write:ip:" + c.IP()
		},
		LimitReached: tooManyRequests,
	})
}

func tooManyRequests(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusTooManyRequests, "too many requests, please slow down")
}
