package web

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/RiskiJayaPutra/whfood/internal/auth"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
)

const layout = "layouts/main"

// CurrentUser is the signed-in user as seen by templates.
type CurrentUser struct {
	ID   int64
	Name string
	Role domain.Role
}

func (u CurrentUser) IsSeller() bool { return u.Role == domain.RoleSeller }
func (u CurrentUser) IsAdmin() bool  { return u.Role == domain.RoleAdmin }

type Renderer struct {
	SiteName string
	Flash    *Flashes
}

// Page renders name inside the main layout with the values every page needs.
func (r *Renderer) Page(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["SiteName"] = r.SiteName
	data["Categories"] = domain.Categories
	data["Path"] = c.Path()
	data["Year"] = time.Now().Year()
	if _, ok := data["Title"]; !ok {
		data["Title"] = r.SiteName
	}
	if token, ok := c.Locals("csrf").(string); ok {
		data["CSRF"] = token
	}
	if id := auth.UserID(c); id != 0 {
		data["User"] = &CurrentUser{ID: id, Name: auth.UserName(c), Role: auth.Role(c)}
	}
	if r.Flash != nil {
		if f, ok := r.Flash.Pop(c); ok {
			data["Flash"] = f
		}
	}
	return c.Render(name, data, layout)
}
