package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "vinyltech/internal/log"
	"vinyltech/internal/services"
)

type PageHandler struct {
	Catalog *services.CatalogService
}

// GET /
func (h *PageHandler) Home(c *fiber.Ctx) error {
	samples, err := h.Catalog.HomeSamples()
	if err != nil {
		applog.Error(c, "home.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the storefront"})
	}
	return render(c, "index", fiber.Map{"Samples": samples})
}

// GET /about
func (h *PageHandler) About(c *fiber.Ctx) error {
	return render(c, "about", fiber.Map{})
}

// GET /products
func (h *PageHandler) Products(c *fiber.Ctx) error {
	products, err := h.Catalog.ListAll()
	if err != nil {
		applog.Error(c, "products.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	return render(c, "products", fiber.Map{"Products": products})
}

// Category returns the handler for one category page
// (/turntables, /speakers, /amplifiers).
func (h *PageHandler) Category(title, category string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := h.Catalog.ListByCategory(category)
		if err != nil {
			applog.Error(c, "category.load", err, map[string]any{"category": category})
			return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products"})
		}
		return render(c, "category", fiber.Map{"Title": title, "Items": items})
	}
}
