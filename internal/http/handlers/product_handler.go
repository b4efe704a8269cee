package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "vinyltech/internal/log"
	"vinyltech/internal/repos"
	"vinyltech/internal/services"
	"vinyltech/internal/validate"
)

type ProductHandler struct {
	Catalog  *services.CatalogService
	Sessions *repos.SessionRepo
}

// GET /product/:slug also accepts a bare numeric id, which 301s to the
// canonical slug URL.
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	raw := c.Params("slug")
	id, ok := validate.SlugID(raw)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product", "value": raw})
		return notFound(c, "This item is no longer available")
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return notFound(c, "This item is no longer available")
	}
	if slug := p.Slug(); raw != slug {
		return c.Redirect("/product/"+slug, fiber.StatusMovedPermanently)
	}

	sid := ensureSID(c)
	if err := h.Sessions.Touch(sid); err != nil {
		applog.Error(c, "session.touch", err, nil)
	}
	// Shown beneath the product: up to 3 other items the visitor looked at.
	recent, err := h.Sessions.RecentViews(sid, p.ID, 3)
	if err != nil {
		applog.Error(c, "product.recent.load", err, nil)
		recent = nil
	}
	if err := h.Sessions.RecordView(sid, p.ID); err != nil {
		applog.Error(c, "product.recent.record", err, nil)
	}

	return render(c, "product", fiber.Map{"P": p, "Recent": recent})
}
