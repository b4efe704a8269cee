package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vinyltech/internal/domain"
	applog "vinyltech/internal/log"
	"vinyltech/internal/repos"
	"vinyltech/internal/services"
	"vinyltech/internal/validate"
)

type CheckoutHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Orders   *repos.OrderRepo
	Account  *services.AccountService

	// AdminEmail may view any order, not just its own.
	AdminEmail string
}

// GET /checkout
func (h *CheckoutHandler) Form(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cu, _ := c.Locals("customer").(*domain.Customer)
	summary, err := h.Cart.Summarize(sid)
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	if summary.Empty() {
		return c.Redirect("/cart")
	}
	// Server-issued key: duplicate form submits collapse onto one order.
	return render(c, "checkout", fiber.Map{
		"Cart":           summary,
		"Address":        cu,
		"IdempotencyKey": uuid.NewString(),
	})
}

// POST /checkout
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cu, _ := c.Locals("customer").(*domain.Customer)
	if cu == nil {
		return c.Redirect("/login")
	}

	addr := domain.ShippingAddress{
		FirstName:    c.FormValue("first_name"),
		LastName:     c.FormValue("last_name"),
		Phone:        c.FormValue("phone"),
		AddressLine1: c.FormValue("address_line1"),
		AddressLine2: c.FormValue("address_line2"),
		City:         c.FormValue("city"),
		State:        c.FormValue("state"),
		PostalCode:   c.FormValue("postal_code"),
		Country:      c.FormValue("country"),
	}

	order, err := h.Checkout.Place(sid, cu.ID, addr, c.FormValue("idempotency_key"))
	if err != nil {
		var fe domain.FieldErrors
		switch {
		case errors.As(err, &fe):
			applog.Security(c, "checkout.validation.fail", map[string]any{"fields": fe})
			summary, serr := h.Cart.Summarize(sid)
			if serr != nil {
				return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
			}
			c.Status(failStatus(err))
			// keep what the user typed so only flagged fields need fixing
			return render(c, "checkout", fiber.Map{
				"Cart": summary, "Address": addr, "Errors": fe,
				"IdempotencyKey": c.FormValue("idempotency_key"),
			})
		case errors.Is(err, domain.ErrEmptyCart):
			return c.Redirect("/cart")
		case errors.Is(err, domain.ErrInsufficientStock):
			applog.Info(c, "checkout.stock.fail", map[string]any{"customer_id": cu.ID})
			return c.Status(failStatus(err)).SendString("An item in your cart just sold out. Please review your cart and try again.")
		default:
			applog.Error(c, "checkout.place", err, map[string]any{"customer_id": cu.ID})
			return c.Status(failStatus(err)).SendString("Could not place your order. Nothing has been charged; please try again.")
		}
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id": order.ID, "customer_id": cu.ID, "total": order.Total,
	})
	return c.Redirect("/order/" + strconv.FormatInt(order.ID, 10))
}

// GET /order/:id is owner-only; the admin account may view any order.
func (h *CheckoutHandler) OrderView(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Order not found")
	}
	cu, _ := c.Locals("customer").(*domain.Customer)
	if cu == nil {
		return c.Redirect("/login")
	}
	o, err := h.Orders.Get(id)
	if err != nil {
		return notFound(c, "Order not found")
	}
	if o.CustomerID != cu.ID && !strings.EqualFold(cu.Email, h.AdminEmail) {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id, "customer_id": cu.ID})
		return notFound(c, "Order not found")
	}
	items, err := h.Orders.Items(id)
	if err != nil {
		applog.Error(c, "order.items.load", err, map[string]any{"order_id": id})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the order"})
	}
	return render(c, "order", fiber.Map{"Order": o, "Items": items})
}
