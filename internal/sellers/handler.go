package sellers

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
	"github.com/RiskiJayaPutra/whfood/internal/whatsapp"
)

type Store interface {
	ByUserID(ctx context.Context, userID int64) (domain.SellerProfile, error)
	BySlug(ctx context.Context, slug string) (domain.SellerProfile, error)
	UpdateProfile(ctx context.Context, sellerID int64, in ProfileUpdate) error
	PaymentMethods(ctx context.Context, sellerID int64) ([]domain.PaymentMethod, error)
	AddPaymentMethod(ctx context.Context, m domain.PaymentMethod) (int64, error)
	DeletePaymentMethod(ctx context.Context, sellerID, id int64) error
	Stats(ctx context.Context, sellerID int64) (Stats, error)
}

// ProductLister is the slice of the product store the seller pages need.
type ProductLister interface {
	BySeller(ctx context.Context, sellerID int64, activeOnly bool) ([]domain.Product, error)
}

type Handler struct {
	Sellers     Store
	Products    ProductLister
	Render      *web.Renderer
	Validate    *validate.Validator
	Log         *zap.Logger
	CountryCode string
}

type profileForm struct {
	ShopName    string `form:"shop_name" validate:"required,min=2,max=100"`
	WhatsApp    string `form:"whatsapp" validate:"required,phone"`
	City        string `form:"city" validate:"required,max=100"`
	Address     string `form:"address" validate:"max=255"`
	Description string `form:"description" validate:"max=2000"`
}

type paymentForm struct {
	Method        string `form:"method" validate:"required,payment_method"`
	Provider      string `form:"provider" validate:"max=100"`
	AccountName   string `form:"account_name" validate:"required_if=Method bank_transfer,max=100"`
	AccountNumber string `form:"account_number" validate:"required_if=Method bank_transfer,max=50"`
}

var paymentKinds = []domain.PaymentMethodKind{
	domain.PaymentBankTransfer,
	domain.PaymentEWallet,
	domain.PaymentQRIS,
	domain.PaymentCashOnDelivery,
}

// current loads the signed-in seller's shop.
func (h *Handler) current(c *fiber.Ctx) (domain.SellerProfile, error) {
	p, err := h.Sellers.ByUserID(c.UserContext(), auth.UserID(c))
	if errors.Is(err, dbutil.ErrNotFound) {
		return p, fiber.NewError(fiber.StatusNotFound, "seller profile not found")
	}
	return p, err
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	seller, err := h.current(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	stats, err := h.Sellers.Stats(ctx, seller.ID)
	if err != nil {
		return err
	}
	products, err := h.Products.BySeller(ctx, seller.ID, false)
	if err != nil {
		return err
	}

	return h.Render.Page(c, "seller/dashboard", fiber.Map{
		"Title":    "My shop",
		"Seller":   seller,
		"Stats":    stats,
		"Products": products,
	})
}

func (h *Handler) ShowProfile(c *fiber.Ctx) error {
	seller, err := h.current(c)
	if err != nil {
		return err
	}
	return h.Render.Page(c, "seller/profile", fiber.Map{
		"Title": "Shop profile",
		"Form": profileForm{
			ShopName:    seller.ShopName,
			WhatsApp:    seller.WhatsApp,
			City:        seller.City,
			Address:     seller.Address,
			Description: seller.Description,
		},
		"Errors": map[string]string(nil),
	})
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	seller, err := h.current(c)
	if err != nil {
		return err
	}

	var form profileForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}
	form.ShopName = h.Validate.Text(form.ShopName)
	form.WhatsApp = strings.TrimSpace(form.WhatsApp)
	form.City = h.Validate.Text(form.City)
	form.Address = h.Validate.Text(form.Address)
	form.Description = h.Validate.Text(form.Description)

	if err := h.Validate.Struct(form); err != nil {
		var verrs validate.Errors
		if !errors.As(err, &verrs) {
			return err
		}
		c.Status(fiber.StatusUnprocessableEntity)
		return h.Render.Page(c, "seller/profile", fiber.Map{
			"Title":  "Shop profile",
			"Form":   form,
			"Errors": verrs.Messages(),
		})
	}

	if err := h.Sellers.UpdateProfile(c.UserContext(), seller.ID, ProfileUpdate(form)); err != nil {
		return err
	}
	return h.Render.Flash.Redirect(c, "/seller", web.FlashSuccess, "Shop profile saved.")
}

func (h *Handler) Payments(c *fiber.Ctx) error {
	seller, err := h.current(c)
	if err != nil {
		return err
	}
	return h.paymentsPage(c, seller, paymentForm{Method: string(domain.PaymentBankTransfer)}, nil)
}

func (h *Handler) AddPayment(c *fiber.Ctx) error {
	seller, err := h.current(c)
	if err != nil {
		return err
	}

	var form paymentForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}
	form.Provider = h.Validate.Text(form.Provider)
	form.AccountName = h.Validate.Text(form.AccountName)
	form.AccountNumber = h.Validate.Text(form.AccountNumber)

	if err := h.Validate.Struct(form); err != nil {
		var verrs validate.Errors
		if !errors.As(err, &verrs) {
			return err
		}
		c.Status(fiber.StatusUnprocessableEntity)
		return h.paymentsPage(c, seller, form, verrs.Messages())
	}

	_, err = h.Sellers.AddPaymentMethod(c.UserContext(), domain.PaymentMethod{
		SellerID:      seller.ID,
		Method:        domain.PaymentMethodKind(form.Method),
		Provider:      form.Provider,
		AccountName:   form.AccountName,
		AccountNumber: form.AccountNumber,
	})
	if err != nil {
		return err
	}
	return h.Render.Flash.Redirect(c, "/seller/payments", web.FlashSuccess, "Payment method added.")
}

func (h *Handler) DeletePayment(c *fiber.Ctx) error {
	seller, err := h.current(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	err = h.Sellers.DeletePaymentMethod(c.UserContext(), seller.ID, int64(id))
	if errors.Is(err, dbutil.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "payment method not found")
	}
	if err != nil {
		return err
	}
	return h.Render.Flash.Redirect(c, "/seller/payments", web.FlashSuccess, "Payment method removed.")
}

func (h *Handler) paymentsPage(c *fiber.Ctx, seller domain.SellerProfile, form paymentForm, errs map[string]string) error {
	payments, err := h.Sellers.PaymentMethods(c.UserContext(), seller.ID)
	if err != nil {
		return err
	}
	return h.Render.Page(c, "seller/payments", fiber.Map{
		"Title":    "Payment methods",
		"Payments": payments,
		"Methods":  paymentKinds,
		"Form":     form,
		"Errors":   errs,
	})
}

// Show is the public shop page. Shops that are not approved are visible only to their owner.
func (h *Handler) Show(c *fiber.Ctx) error {
	seller, err := h.Sellers.BySlug(c.UserContext(), c.Params("slug"))
	if errors.Is(err, dbutil.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "shop not found")
	}
	if err != nil {
		return err
	}
	if seller.Status != domain.SellerApproved && seller.UserID != auth.UserID(c) && auth.Role(c) != domain.RoleAdmin {
		return fiber.NewError(fiber.StatusNotFound, "shop not found")
	}

	ctx := c.UserContext()
	products, err := h.Products.BySeller(ctx, seller.ID, true)
	if err != nil {
		return err
	}
	payments, err := h.Sellers.PaymentMethods(ctx, seller.ID)
	if err != nil {
		return err
	}

	return h.Render.Page(c, "sellers/show", fiber.Map{
		"Title":       seller.ShopName,
		"Seller":      seller,
		"WhatsAppURL": whatsapp.ChatURL(seller.WhatsApp, h.CountryCode, "Hello "+seller.ShopName+", I found your shop on WHFood."),
		"Payments":    payments,
		"Products":    products,
	})
}

func (h *Handler) CatalogPDF(c *fiber.Ctx) error {
	seller, err := h.current(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	products, err := h.Products.BySeller(ctx, seller.ID, true)
	if err != nil {
		return err
	}
	payments, err := h.Sellers.PaymentMethods(ctx, seller.ID)
	if err != nil {
		return err
	}

	body, err := BuildCatalog(Catalog{
		Seller:      seller,
		Products:    products,
		Payments:    payments,
		WhatsApp:    whatsapp.NormalizePhone(seller.WhatsApp, h.CountryCode),
		GeneratedBy: h.Render.SiteName,
	})
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+seller.Slug+`-catalogue.pdf"`)
	return c.Send(body)
}
