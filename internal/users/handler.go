package users

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/RiskiJayaPutra/whfood/internal/auth"
	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/validate"
	"github.com/RiskiJayaPutra/whfood/internal/web"
)

type Store interface {
	Create(ctx context.Context, in NewUser) (domain.User, error)
	ByEmail(ctx context.Context, email string) (domain.User, error)
}

type Handler struct {
	Users    Store
	Tokens   *auth.Tokens
	Auth     *auth.Middleware
	Render   *web.Renderer
	Validate *validate.Validator
	Log      *zap.Logger
}

type registerForm struct {
	Role            string `form:"role" validate:"required,oneof=buyer seller"`
	Name            string `form:"name" validate:"required,min=2,max=100"`
	Email           string `form:"email" validate:"required,email,max=255"`
	Phone           string `form:"phone" validate:"required_if=Role seller,phone"`
	ShopName        string `form:"shop_name" validate:"required_if=Role seller,max=100"`
	City            string `form:"city" validate:"required_if=Role seller,max=100"`
	Password        string `form:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

func (h *Handler) ShowLogin(c *fiber.Ctx) error {
	if auth.UserID(c) != 0 {
		return c.Redirect(safeNext(c.Query("next")), fiber.StatusSeeOther)
	}
	return h.Render.Page(c, "auth/login", fiber.Map{
		"Title": "Log in",
		"Next":  safeNext(c.Query("next")),
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}

	u, err := h.Users.ByEmail(c.UserContext(), form.Email)
	switch {
	case errors.Is(err, dbutil.ErrNotFound):
		err = auth.ErrInvalidCredentials
	case err != nil:
		return err
	default:
		err = auth.CheckPassword(u.PasswordHash, form.Password)
	}
	if err != nil {
		h.Log.Info("login rejected", zap.String("email", form.Email))
		c.Status(fiber.StatusUnauthorized)
		return h.Render.Page(c, "auth/login", fiber.Map{
			"Title": "Log in",
			"Next":  safeNext(form.Next),
			"Email": form.Email,
			"Error": "invalid email or password",
		})
	}

	if err := h.startSession(c, u); err != nil {
		return err
	}

	next := safeNext(form.Next)
	if next == "/" && u.Role == domain.RoleAdmin {
		next = "/admin"
	}
	return h.Render.Flash.Redirect(c, next, web.FlashSuccess, "Welcome back, "+u.Name+"!")
}

func (h *Handler) ShowRegister(c *fiber.Ctx) error {
	role := c.Query("role", string(domain.RoleBuyer))
	return h.Render.Page(c, "auth/register", fiber.Map{
		"Title":  "Sign up",
		"Form":   registerForm{Role: role},
		"Errors": map[string]string(nil),
	})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var form registerForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}
	form.Name = h.Validate.Text(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.ShopName = h.Validate.Text(form.ShopName)
	form.City = h.Validate.Text(form.City)

	if err := h.Validate.Struct(form); err != nil {
		var verrs validate.Errors
		if !errors.As(err, &verrs) {
			return err
		}
		return h.registerPage(c, form, verrs.Messages())
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return err
	}

	in := NewUser{
		Name:         form.Name,
		Email:        form.Email,
		Phone:        form.Phone,
		PasswordHash: hash,
		Role:         domain.Role(form.Role),
	}
	if in.Role == domain.RoleSeller {
		in.Shop = &NewShop{ShopName: form.ShopName, City: form.City}
	}

	u, err := h.Users.Create(c.UserContext(), in)
	if errors.Is(err, dbutil.ErrDuplicate) {
		return h.registerPage(c, form, map[string]string{"email": "this email is already registered"})
	}
	if err != nil {
		return err
	}
	h.Log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))

	if err := h.startSession(c, u); err != nil {
		return err
	}
	if u.Role == domain.RoleSeller {
		return h.Render.Flash.Redirect(c, "/seller", web.FlashSuccess,
			"Your shop is waiting for admin approval. Meanwhile, complete your profile and add products.")
	}
	return h.Render.Flash.Redirect(c, "/", web.FlashSuccess, "Welcome to WHFood, "+u.Name+"!")
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	h.Auth.ClearCookie(c)
	return h.Render.Flash.Redirect(c, "/", web.FlashSuccess, "You have been logged out.")
}

func (h *Handler) registerPage(c *fiber.Ctx, form registerForm, errs map[string]string) error {
	form.Password, form.PasswordConfirm = "", ""
	c.Status(fiber.StatusUnprocessableEntity)
	return h.Render.Page(c, "auth/register", fiber.Map{
		"Title":  "Sign up",
		"Form":   form,
		"Errors": errs,
	})
}

func (h *Handler) startSession(c *fiber.Ctx, u domain.User) error {
	token, err := h.Tokens.Issue(auth.Session{UserID: u.ID, Role: u.Role, Name: u.Name})
	if err != nil {
		return err
	}
	h.Auth.SetCookie(c, token)
	return nil
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
