package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const genericError = "something went wrong, please try again"

// ErrorHandler turns handler errors into a JSON body for /api routes and the error page otherwise.
func ErrorHandler(log *zap.Logger, r *Renderer) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := genericError

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			message = genericError
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(code).JSON(fiber.Map{"error": message})
		}

		c.Status(code)
		if rerr := r.Page(c, "errors/error", fiber.Map{
			"Title":   "Error",
			"Code":    code,
			"Message": message,
		}); rerr != nil {
			log.Error("render error page", zap.Error(rerr))
			return c.Status(code).SendString(message)
		}
		return nil
	}
}
