package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"vinyltech/internal/config"
	"vinyltech/internal/http/handlers"
	"vinyltech/internal/media"
	"vinyltech/internal/repos"
)

func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{AdminEmail: "admin@vinyltech.test"}
	store, err := media.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("media store: %v", err)
	}
	deps := handlers.NewDeps(db, cfg, store)

	engine := html.New("../../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(handlers.AttachCustomer(deps.Account))

	app.Get("/", deps.PageHandler.Home)
	app.Get("/products", deps.PageHandler.Products)
	app.Get("/turntables", deps.PageHandler.Category("Turntables", "Turntable"))
	app.Get("/product/:slug", deps.ProductHandler.Detail)
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart/add", deps.CartHandler.Add)
	app.Post("/cart/remove/:id", deps.CartHandler.Remove)
	app.Get("/checkout", handlers.RequireCustomer(), deps.CheckoutHandler.Form)
	app.Post("/checkout", handlers.RequireCustomer(), deps.CheckoutHandler.Place)
	app.Get("/order/:id", handlers.RequireCustomer(), deps.CheckoutHandler.OrderView)
	app.Get("/login", deps.AuthHandler.LoginForm)
	admin := app.Group("/admin", handlers.RequireAdmin(cfg.AdminEmail, deps.Account))
	admin.Get("/", deps.AdminHandler.Dashboard)

	return app, db
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func formPost(path, body string) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestProductNumericIDRedirectsToSlug(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/product/1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusMovedPermanently {
		t.Fatalf("want 301, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if loc != "/product/1-classic-belt-drive-turntable" {
		t.Fatalf("unexpected redirect target %q", loc)
	}

	resp, err = app.Test(httptest.NewRequest("GET", loc, nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200 at slug URL, got %d", resp.StatusCode)
	}
}

func TestProductUnknownIs404(t *testing.T) {
	app, _ := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/product/9999", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}

func TestCartAddViewRemoveFlow(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(formPost("/cart/add", "product_id=1&quantity=2"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("want 302 after add, got %d", resp.StatusCode)
	}
	sid := cookieValue(resp, "sid")
	if sid == "" {
		t.Fatal("no session cookie issued")
	}

	req := httptest.NewRequest("GET", "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Classic Belt-Drive Turntable") {
		t.Fatal("cart page does not show the added product")
	}

	req = formPost("/cart/remove/1", "")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("want 302 after remove, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, _ = app.Test(req)
	body, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Your cart is empty") {
		t.Fatal("cart should be empty after remove")
	}
}

func TestCheckoutRequiresLogin(t *testing.T) {
	app, _ := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/checkout", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("want redirect to /login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestCheckoutValidationKeepsSubmittedAddress(t *testing.T) {
	app, db := newTestApp(t)

	if _, err := db.Exec(`INSERT INTO customers(first_name,last_name,email,password_hash)
	  VALUES('Ada','Lovelace','ada@example.com','$2a$12$x')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO sessions(id,customer_id) VALUES('sid-ada', 1)`); err != nil {
		t.Fatal(err)
	}

	// city is missing; the typed street must survive the re-render
	req := formPost("/checkout",
		"first_name=Ada&last_name=Lovelace&address_line1=12+Analog+Ave&state=VIC&postal_code=3000")
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-ada"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 on validation failure, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "12 Analog Ave") {
		t.Fatal("submitted address line was not kept on the re-rendered form")
	}
	if !strings.Contains(string(body), "city") {
		t.Fatal("missing city was not flagged")
	}
}

func TestOrderViewIsOwnerOnly(t *testing.T) {
	app, db := newTestApp(t)

	mustExec := func(q string, args ...any) int64 {
		res, err := db.Exec(q, args...)
		if err != nil {
			t.Fatal(err)
		}
		id, _ := res.LastInsertId()
		return id
	}
	owner := mustExec(`INSERT INTO customers(first_name,last_name,email,password_hash)
	  VALUES('Ada','Lovelace','ada@example.com','$2a$12$x')`)
	other := mustExec(`INSERT INTO customers(first_name,last_name,email,password_hash)
	  VALUES('Bob','Smith','bob@example.com','$2a$12$x')`)
	admin := mustExec(`INSERT INTO customers(first_name,last_name,email,password_hash)
	  VALUES('Site','Admin','admin@vinyltech.test','$2a$12$x')`)
	oid := mustExec(`INSERT INTO orders(customer_id,status,subtotal,total) VALUES(?, 'pending', 10, 10)`, owner)
	mustExec(`INSERT INTO order_items(order_id,product_id,quantity,unit_price,line_total)
	  VALUES(?,1,1,10,10)`, oid)
	mustExec(`INSERT INTO sessions(id,customer_id) VALUES('sid-owner',?)`, owner)
	mustExec(`INSERT INTO sessions(id,customer_id) VALUES('sid-other',?)`, other)
	mustExec(`INSERT INTO sessions(id,customer_id) VALUES('sid-admin',?)`, admin)

	get := func(sid string) int {
		req := httptest.NewRequest("GET", "/order/1", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp.StatusCode
	}
	if got := get("sid-owner"); got != http.StatusOK {
		t.Fatalf("owner should see the order, got %d", got)
	}
	if got := get("sid-other"); got != http.StatusNotFound {
		t.Fatalf("non-owner should get 404, got %d", got)
	}
	if got := get("sid-admin"); got != http.StatusOK {
		t.Fatalf("admin account should see any order, got %d", got)
	}
}

func TestAdminRequiresConfiguredAccount(t *testing.T) {
	app, db := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous admin access should redirect, got %d", resp.StatusCode)
	}

	if _, err := db.Exec(`INSERT INTO customers(first_name,last_name,email,password_hash)
	  VALUES('Bob','Smith','bob@example.com','$2a$12$x')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO sessions(id,customer_id) VALUES('sid-bob', 1)`); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("GET", "/admin/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-bob"})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin should get 403, got %d", resp.StatusCode)
	}
}
