package main

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"vinyltech/internal/config"
	"vinyltech/internal/http/handlers"
	applog "vinyltech/internal/log"
	"vinyltech/internal/media"
	"vinyltech/internal/repos"
)

func main() {
	cfg := config.Load()
	applog.Setup(cfg.LogLevel)

	db, err := repos.OpenDB(cfg.DBDSN, cfg.Seed)
	if err != nil {
		log.Fatal(err)
	}

	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	mediaStore, err := media.NewStore(mediaDir)
	if err != nil {
		log.Fatal(err)
	}

	engine := html.New("./web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	app.Server().MaxRequestBodySize = 4 << 20 // product image uploads

	deps := handlers.NewDeps(db, cfg, mediaStore)

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.AttachCustomer(deps.Account))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	app.Static("/static", "./web/static")
	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	// ---------- Public pages ----------
	app.Get("/", deps.PageHandler.Home)
	app.Get("/about", deps.PageHandler.About)
	app.Get("/products", deps.PageHandler.Products)
	app.Get("/turntables", deps.PageHandler.Category("Turntables", "Turntable"))
	app.Get("/speakers", deps.PageHandler.Category("Speakers", "Speaker"))
	app.Get("/amplifiers", deps.PageHandler.Category("Amplifiers", "Amplifier"))
	app.Get("/product/:slug", deps.ProductHandler.Detail)

	// ---------- Cart ----------
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart/add", deps.CartHandler.Add)
	app.Post("/cart/update", deps.CartHandler.Update)
	app.Post("/cart/remove/:id", deps.CartHandler.Remove)

	// ---------- Auth ----------
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.auth.hit", nil)
			tok, _ := c.Locals("CSRFToken").(string)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{
				"Err": "Too many attempts. Please try again later.", "CSRFToken": tok,
			})
		},
	})
	app.Get("/signup", deps.AuthHandler.SignupForm)
	app.Post("/signup", authLimiter, deps.AuthHandler.Signup)
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", authLimiter, deps.AuthHandler.Login)
	app.Get("/logout", deps.AuthHandler.Logout)
	app.Get("/account", handlers.RequireCustomer(), deps.AuthHandler.AccountPage)

	// ---------- Checkout & orders ----------
	app.Get("/checkout", handlers.RequireCustomer(), deps.CheckoutHandler.Form)
	app.Post("/checkout", handlers.RequireCustomer(), deps.CheckoutHandler.Place)
	app.Get("/order/:id", handlers.RequireCustomer(), deps.CheckoutHandler.OrderView)

	// ---------- Admin ----------
	admin := app.Group("/admin", handlers.RequireAdmin(cfg.AdminEmail, deps.Account))
	admin.Get("/", deps.AdminHandler.Dashboard)
	admin.Post("/product/create", deps.AdminHandler.CreateProduct)
	admin.Post("/product/:id/update", deps.AdminHandler.UpdateProduct)
	admin.Post("/product/:id/delete", deps.AdminHandler.DeleteProduct)
	admin.Post("/order/:id/status", deps.AdminHandler.UpdateOrderStatus)

	// ---------- Health & 404 ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(cfg.Addr))
}
