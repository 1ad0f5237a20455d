package products

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/RiskiJayaPutra/whfood/internal/auth"
	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/domain"
	"github.com/RiskiJayaPutra/whfood/internal/money"
	"github.com/RiskiJayaPutra/whfood/internal/uploads"
	"github.com/RiskiJayaPutra/whfood/internal/validate"
	"github.com/RiskiJayaPutra/whfood/internal/web"
)

const maxStock = 100000

type productForm struct {
	Name        string `form:"name" validate:"required,min=2,max=120"`
	Category    string `form:"category" validate:"required,category"`
	Status      string `form:"status" validate:"omitempty,oneof=active hidden"`
	Price       string `form:"price" validate:"required"`
	Stock       string `form:"stock"`
	Description string `form:"description" validate:"max=2000"`
}

func formFromProduct(p domain.Product) productForm {
	return productForm{
		Name:        p.Name,
		Category:    p.Category,
		Status:      string(p.Status),
		Price:       p.Price.String(),
		Stock:       strconv.Itoa(p.Stock),
		Description: p.Description,
	}
}

func (h *Handler) currentSeller(c *fiber.Ctx) (domain.SellerProfile, error) {
	s, err := h.Sellers.ByUserID(c.UserContext(), auth.UserID(c))
	if errors.Is(err, dbutil.ErrNotFound) {
		return s, fiber.NewError(fiber.StatusNotFound, "seller profile not found")
	}
	return s, err
}

func (h *Handler) NewForm(c *fiber.Ctx) error {
	if _, err := h.currentSeller(c); err != nil {
		return err
	}
	return h.formPage(c, nil, productForm{Category: domain.Categories[0].Slug, Status: string(domain.ProductActive), Stock: "1"}, nil)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	seller, err := h.currentSeller(c)
	if err != nil {
		return err
	}

	form, in, errs := h.parseForm(c)
	if len(errs) == 0 {
		in.ImagePath, errs = h.saveImage(c)
	}
	if len(errs) > 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.formPage(c, nil, form, errs)
	}

	id, err := h.Products.Create(c.UserContext(), seller.ID, in)
	if err != nil {
		h.dropImage(in.ImagePath)
		return err
	}
	h.Log.Info("product created", zap.Int64("product_id", id), zap.Int64("seller_id", seller.ID))
	return h.Render.Flash.Redirect(c, "/seller", web.FlashSuccess, fmt.Sprintf("%q has been added.", in.Name))
}

func (h *Handler) EditForm(c *fiber.Ctx) error {
	_, p, err := h.ownedProduct(c)
	if err != nil {
		return err
	}
	return h.formPage(c, &p, formFromProduct(p), nil)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	seller, p, err := h.ownedProduct(c)
	if err != nil {
		return err
	}

	form, in, errs := h.parseForm(c)
	if len(errs) == 0 {
		in.ImagePath, errs = h.saveImage(c)
	}
	if len(errs) > 0 {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.formPage(c, &p, form, errs)
	}
	if p.Moderated {
		in.Status = domain.ProductHidden
	}

	err = h.Products.Update(c.UserContext(), seller.ID, p.ID, in)
	if err != nil {
		h.dropImage(in.ImagePath)
		if errors.Is(err, dbutil.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}
	if in.ImagePath != "" && p.ImagePath != "" {
		h.dropImage(p.ImagePath)
	}
	return h.Render.Flash.Redirect(c, "/seller", web.FlashSuccess, fmt.Sprintf("%q has been updated.", in.Name))
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	seller, err := h.currentSeller(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	image, err := h.Products.Delete(c.UserContext(), seller.ID, id)
	if errors.Is(err, dbutil.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		return err
	}
	h.dropImage(image)
	return h.Render.Flash.Redirect(c, "/seller", web.FlashSuccess, "Product deleted.")
}

// ownedProduct loads the product in the URL and checks it belongs to the signed-in seller.
func (h *Handler) ownedProduct(c *fiber.Ctx) (domain.SellerProfile, domain.Product, error) {
	seller, err := h.currentSeller(c)
	if err != nil {
		return seller, domain.Product{}, err
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return seller, domain.Product{}, fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	p, err := h.Products.ByID(c.UserContext(), id)
	if errors.Is(err, dbutil.ErrNotFound) || (err == nil && p.SellerID != seller.ID) {
		return seller, p, fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	return seller, p, err
}

func (h *Handler) parseForm(c *fiber.Ctx) (productForm, Input, map[string]string) {
	var form productForm
	if err := c.BodyParser(&form); err != nil {
		return form, Input{}, map[string]string{"name": "the form could not be read, please try again"}
	}
	form.Name = h.Validate.Text(form.Name)
	form.Description = h.Validate.Text(form.Description)
	form.Price = strings.TrimSpace(form.Price)
	form.Stock = strings.TrimSpace(form.Stock)

	errs := map[string]string{}
	if err := h.Validate.Struct(form); err != nil {
		var verrs validate.Errors
		if !errors.As(err, &verrs) {
			errs["name"] = err.Error()
		}
		for k, v := range verrs.Messages() {
			errs[k] = v
		}
	}

	in := Input{
		Name:        form.Name,
		Description: form.Description,
		Category:    form.Category,
		Status:      domain.ProductStatus(form.Status),
	}
	if in.Status == "" {
		in.Status = domain.ProductActive
	}

	if _, ok := errs["price"]; !ok {
		price, err := money.ParsePrice(form.Price)
		switch {
		case err != nil:
			errs["price"] = "enter a price like 15000 or 15.000"
		case price.IsZero():
			errs["price"] = "price must be more than 0"
		default:
			in.Price = price
		}
	}

	if form.Stock != "" {
		n, err := strconv.Atoi(form.Stock)
		if err != nil || n < 0 || n > maxStock {
			errs["stock"] = fmt.Sprintf("stock must be a whole number between 0 and %d", maxStock)
		}
		in.Stock = n
	}

	return form, in, errs
}

// saveImage stores the optional "image" upload and returns its file name.
func (h *Handler) saveImage(c *fiber.Ctx) (string, map[string]string) {
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || fh.Size == 0 {
		return "", nil
	}
	name, err := h.Images.SaveMultipart(fh)
	switch {
	case err == nil:
		return name, nil
	case errors.Is(err, uploads.ErrTooLarge):
		return "", map[string]string{"image": "the photo is too large"}
	case errors.Is(err, uploads.ErrUnsupported):
		return "", map[string]string{"image": "upload a JPEG, PNG or WebP photo"}
	}
	h.Log.Error("save product image", zap.Error(err))
	return "", map[string]string{"image": "the photo could not be saved, please try again"}
}

func (h *Handler) dropImage(name string) {
	if name == "" {
		return
	}
	if err := h.Images.Delete(name); err != nil {
		h.Log.Warn("delete product image", zap.String("image", name), zap.Error(err))
	}
}

func (h *Handler) formPage(c *fiber.Ctx, p *domain.Product, form productForm, errs map[string]string) error {
	title, action := "Add product", "/seller/products"
	if p != nil {
		title, action = "Edit product", "/seller/products/"+strconv.FormatInt(p.ID, 10)
	}
	return h.Render.Page(c, "seller/product_form", fiber.Map{
		"Title":   title,
		"Product": p,
		"Action":  action,
		"Form":    form,
		"Errors":  errs,
	})
}
