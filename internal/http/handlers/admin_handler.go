package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"vinyltech/internal/domain"
	applog "vinyltech/internal/log"
	"vinyltech/internal/media"
	"vinyltech/internal/repos"
	"vinyltech/internal/services"
	"vinyltech/internal/validate"
)

type AdminHandler struct {
	Admin   *services.AdminService
	Catalog *services.CatalogService
	Orders  *repos.OrderRepo
	Media   *media.Store
}

// GET /admin shows products and recent orders on one page.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	products, err := h.Catalog.ListAll()
	if err != nil {
		applog.Error(c, "admin.products.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the admin page"})
	}
	orders, err := h.Orders.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the admin page"})
	}
	return render(c, "admin", fiber.Map{"Products": products, "Orders": orders})
}

// productInput parses the shared create/update form. Numeric fields are
// rejected before anything is written.
func (h *AdminHandler) productInput(c *fiber.Ctx) (services.ProductInput, error) {
	price, okP := validate.Price(c.FormValue("price"))
	stock, okS := validate.Stock(c.FormValue("stock"))
	fe := domain.FieldErrors{}
	if !okP {
		fe["price"] = "must be a non-negative number"
	}
	if !okS {
		fe["stock"] = "must be a non-negative whole number"
	}
	if len(fe) > 0 {
		return services.ProductInput{}, fe
	}

	in := services.ProductInput{
		Name:        c.FormValue("name"),
		SKU:         c.FormValue("sku"),
		Category:    c.FormValue("category"),
		Description: c.FormValue("description"),
		Price:       price,
		Stock:       stock,
		ImageURL:    c.FormValue("image_url"),
	}
	if fh, err := c.FormFile("image"); err == nil && fh != nil && fh.Size > 0 {
		path, err := h.Media.SaveUpload(c, fh)
		if err != nil {
			return services.ProductInput{}, domain.FieldErrors{"image": err.Error()}
		}
		in.UploadedImage = path
	}
	return in, nil
}

func adminFail(c *fiber.Ctx, action string, err error) error {
	switch {
	case domain.IsValidation(err):
		applog.Security(c, action+".validation.fail", map[string]any{"err": err.Error()})
	case errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrReferencedByOrder),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrIllegalTransition):
		applog.Info(c, action+".rejected", map[string]any{"err": err.Error()})
	default:
		applog.Error(c, action, err, nil)
	}
	return c.Status(failStatus(err)).SendString(userMessage(err))
}

func userMessage(err error) string {
	switch {
	case domain.IsValidation(err):
		return err.Error()
	case errors.Is(err, domain.ErrDuplicateSKU):
		return "That SKU is already in use"
	case errors.Is(err, domain.ErrReferencedByOrder):
		return "This product appears on existing orders and cannot be deleted"
	case errors.Is(err, domain.ErrNotFound):
		return "Not found"
	case errors.Is(err, domain.ErrInvalidStatus):
		return "Unknown order status"
	case errors.Is(err, domain.ErrIllegalTransition):
		return "That status change is not allowed"
	default:
		return "Something went wrong. Please try again."
	}
}

// POST /admin/product/create
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	in, err := h.productInput(c)
	if err != nil {
		return adminFail(c, "admin.product.create", err)
	}
	p, err := h.Admin.CreateProduct(in)
	if err != nil {
		return adminFail(c, "admin.product.create", err)
	}
	applog.Audit(c, "admin.product.create", map[string]any{"product_id": p.ID})
	return c.Redirect("/admin")
}

// POST /admin/product/:id/update
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return adminFail(c, "admin.product.update", domain.ErrNotFound)
	}
	in, err := h.productInput(c)
	if err != nil {
		return adminFail(c, "admin.product.update", err)
	}
	if _, err := h.Admin.UpdateProduct(id, in); err != nil {
		return adminFail(c, "admin.product.update", err)
	}
	applog.Audit(c, "admin.product.update", map[string]any{"product_id": id})
	return c.Redirect("/admin")
}

// POST /admin/product/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return adminFail(c, "admin.product.delete", domain.ErrNotFound)
	}
	if err := h.Admin.DeleteProduct(id); err != nil {
		return adminFail(c, "admin.product.delete", err)
	}
	applog.Audit(c, "admin.product.delete", map[string]any{"product_id": id})
	return c.Redirect("/admin")
}

// POST /admin/order/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return adminFail(c, "admin.order.status", domain.ErrNotFound)
	}
	status := c.FormValue("status")
	if err := h.Admin.UpdateOrderStatus(id, status); err != nil {
		return adminFail(c, "admin.order.status", err)
	}
	applog.Audit(c, "admin.order.status", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin")
}
