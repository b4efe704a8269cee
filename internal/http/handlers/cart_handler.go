package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"vinyltech/internal/domain"
	applog "vinyltech/internal/log"
	"vinyltech/internal/services"
	"vinyltech/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	summary, err := h.Cart.Summarize(sid)
	if err != nil {
		applog.Error(c, "cart.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{"Cart": summary})
}

// POST /cart/add
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	pid, ok := validate.ID(c.FormValue("product_id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product_id"})
		return c.Redirect("/cart")
	}
	qty := validate.Qty(c.FormValue("quantity"))
	if qty < 1 {
		qty = 1
	}
	err := h.Cart.Add(sid, pid, qty)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInsufficientStock):
		// A friendly notice, not a failure: the product vanished or sold out.
		applog.Info(c, "cart.add.unavailable", map[string]any{"product_id": pid})
	case err != nil:
		applog.Error(c, "cart.add", err, map[string]any{"product_id": pid})
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update your cart")
	}
	return c.Redirect("/cart")
}

// POST /cart/update
func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	pid, ok := validate.ID(c.FormValue("product_id"))
	if !ok {
		return c.Redirect("/cart")
	}
	qty := validate.Qty(c.FormValue("quantity"))
	if err := h.Cart.Update(sid, pid, qty); err != nil {
		applog.Error(c, "cart.update", err, map[string]any{"product_id": pid})
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update your cart")
	}
	return c.Redirect("/cart")
}

// POST /cart/remove/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	pid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Redirect("/cart")
	}
	if err := h.Cart.Remove(sid, pid); err != nil {
		applog.Error(c, "cart.remove", err, map[string]any{"product_id": pid})
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update your cart")
	}
	return c.Redirect("/cart")
}
