package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"

	flashKindKey = "flash_kind"
	flashMsgKey  = "flash_msg"
)

type Flash struct {
	Kind    string
	Message string
}

// Flashes keeps one-shot messages in the session between a redirect and the next page.
type Flashes struct {
	Store *session.Store
	Log   *zap.Logger
}

func NewFlashes(storage fiber.Storage, secure bool, log *zap.Logger) *Flashes {
	return &Flashes{
		Store: session.New(session.Config{
			Storage:        storage,
			KeyLookup:      "cookie:whfood_flash",
			CookieHTTPOnly: true,
			CookieSecure:   secure,
			CookieSameSite: "Lax",
		}),
		Log: log,
	}
}

func (f *Flashes) Set(c *fiber.Ctx, kind, msg string) {
	sess, err := f.Store.Get(c)
	if err != nil {
		f.Log.Warn("flash session unavailable", zap.Error(err))
		return
	}
	sess.Set(flashKindKey, kind)
	sess.Set(flashMsgKey, msg)
	if err := sess.Save(); err != nil {
		f.Log.Warn("flash save failed", zap.Error(err))
	}
}

func (f *Flashes) Pop(c *fiber.Ctx) (Flash, bool) {
	if c.Cookies("whfood_flash") == "" {
		return Flash{}, false
	}
	sess, err := f.Store.Get(c)
	if err != nil {
		return Flash{}, false
	}
	msg, _ := sess.Get(flashMsgKey).(string)
	if msg == "" {
		return Flash{}, false
	}
	kind, _ := sess.Get(flashKindKey).(string)
	sess.Delete(flashKindKey)
	sess.Delete(flashMsgKey)
	if err := sess.Save(); err != nil {
		f.Log.Warn("flash save failed", zap.Error(err))
	}
	return Flash{Kind: kind, Message: msg}, true
}

// Redirect sets a flash and redirects with 303 so the browser follows up with GET.
func (f *Flashes) Redirect(c *fiber.Ctx, to, kind, msg string) error {
	f.Set(c, kind, msg)
	return c.Redirect(to, fiber.StatusSeeOther)
}
