package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"vinyltech/internal/domain"
	applog "vinyltech/internal/log"
	"vinyltech/internal/repos"
	"vinyltech/internal/services"
	"vinyltech/internal/validate"
)

type AuthHandler struct {
	Account *services.AccountService
	Orders  *repos.OrderRepo
}

// GET /signup
func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	return render(c, "signup", signupForm("", "", ""))
}

func signupForm(first, last, email string) fiber.Map {
	return fiber.Map{"FirstName": first, "LastName": last, "Email": email, "Err": ""}
}

// POST /signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	sid := ensureSID(c)
	in := services.SignupInput{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Email:     c.FormValue("email"),
		Password:  c.FormValue("password"),
	}
	_, err := h.Account.Signup(sid, in)
	if err != nil {
		var fe domain.FieldErrors
		switch {
		case errors.As(err, &fe):
			applog.Security(c, "signup.validation.fail", map[string]any{"fields": fe})
			c.Status(failStatus(err))
			data := signupForm(in.FirstName, in.LastName, in.Email)
			data["Errors"] = fe
			return render(c, "signup", data)
		case errors.Is(err, domain.ErrDuplicateEmail):
			applog.Info(c, "signup.duplicate", map[string]any{"email": in.Email})
			c.Status(failStatus(err))
			data := signupForm(in.FirstName, in.LastName, in.Email)
			data["Err"] = "That email is already registered. Try logging in instead."
			return render(c, "signup", data)
		default:
			applog.Error(c, "signup.fail", err, nil)
			return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not create your account"})
		}
	}
	applog.Audit(c, "signup.success", map[string]any{"email": in.Email})
	return c.Redirect("/account")
}

// GET /login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		applog.Security(c, "login.fail", map[string]any{"reason": "bad_email_format"})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Err": "Invalid email or password"})
	}
	_, err := h.Account.Login(sid, email, c.FormValue("password"))
	if err != nil {
		// Same message whether the email exists or not.
		applog.Security(c, "login.fail", map[string]any{"email": email})
		c.Status(failStatus(domain.ErrInvalidCredentials))
		return render(c, "login", fiber.Map{"Err": "Invalid email or password"})
	}
	applog.Audit(c, "login.success", map[string]any{"email": email})
	return c.Redirect("/account")
}

// GET /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Account.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	})
	applog.Audit(c, "logout", nil)
	return c.Redirect("/")
}

// GET /account shows the profile plus order history.
func (h *AuthHandler) AccountPage(c *fiber.Ctx) error {
	cu, _ := c.Locals("customer").(*domain.Customer)
	if cu == nil {
		return c.Redirect("/login")
	}
	orders, err := h.Orders.ListByCustomer(cu.ID)
	if err != nil {
		applog.Error(c, "account.orders.load", err, nil)
		orders = nil
	}
	return render(c, "account", fiber.Map{"Orders": orders})
}
