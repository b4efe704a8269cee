package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vinyltech/internal/domain"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if cu := c.Locals("customer"); cu != nil {
		data["Customer"] = cu
	}
	if _, present := data["CSRFToken"]; !present {
		tok, _ := c.Locals("CSRFToken").(string)
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}

// failStatus maps the error taxonomy onto a response status.
func failStatus(err error) int {
	switch {
	case domain.IsValidation(err):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrReferencedByOrder),
		errors.Is(err, domain.ErrIllegalTransition):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidStatus):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ensureSID guarantees a session cookie.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}
