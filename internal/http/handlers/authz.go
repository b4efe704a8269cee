package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "vinyltech/internal/log"
	"vinyltech/internal/services"
)

// AttachCustomer resolves the session's customer, if any, for templates
// and downstream handlers.
func AttachCustomer(account *services.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if cu, err := account.Current(sid); err == nil && cu != nil {
				c.Locals("customer", cu)
			}
		}
		return c.Next()
	}
}

// RequireCustomer redirects anonymous visitors to the login page.
func RequireCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("customer") == nil {
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// RequireAdmin allows only the configured admin account through. Admin
// identity is config-driven; customers carry no role column.
func RequireAdmin(adminEmail string, account *services.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		cu, err := account.Current(sid)
		if err != nil || cu == nil || !strings.EqualFold(cu.Email, adminEmail) {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		c.Locals("customer", cu)
		return c.Next()
	}
}
