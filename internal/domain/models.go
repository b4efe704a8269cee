package domain

import (
	"regexp"
	"strconv"
	"strings"
)

type Product struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	SKU         string  `db:"sku"`
	Category    string  `db:"category"`
	Description string  `db:"description"`
	Price       float64 `db:"price"`
	Stock       int     `db:"stock"`
	Image       string  `db:"image"`
	CreatedAt   string  `db:"created_at"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slug returns the canonical URL form "{id}-{kebab-name}".
func (p Product) Slug() string {
	name := slugStrip.ReplaceAllString(strings.ToLower(p.Name), "-")
	name = strings.Trim(name, "-")
	return strconv.FormatInt(p.ID, 10) + "-" + name
}

type Customer struct {
	ID           int64  `db:"id"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	Email        string `db:"email"`
	Phone        string `db:"phone"`
	AddressLine1 string `db:"address_line1"`
	AddressLine2 string `db:"address_line2"`
	City         string `db:"city"`
	State        string `db:"state"`
	PostalCode   string `db:"postal_code"`
	Country      string `db:"country"`
	PasswordHash string `db:"password_hash"`
	Salt         string `db:"salt"`
	CreatedAt    string `db:"created_at"`
}

func (c Customer) Credential() Credential {
	return Credential{Hash: c.PasswordHash, Salt: c.Salt}
}

// ShippingAddress is the set of fields checkout persists on the customer.
type ShippingAddress struct {
	FirstName    string `validate:"required"`
	LastName     string `validate:"required"`
	Phone        string `validate:"omitempty,max=30"`
	AddressLine1 string `validate:"required"`
	AddressLine2 string
	City         string `validate:"required"`
	State        string `validate:"required"`
	PostalCode   string `validate:"required"`
	Country      string
}

type Order struct {
	ID             int64   `db:"id"`
	CustomerID     int64   `db:"customer_id"`
	Status         Status  `db:"status"`
	Subtotal       float64 `db:"subtotal"`
	Tax            float64 `db:"tax"`
	Shipping       float64 `db:"shipping"`
	Total          float64 `db:"total"`
	IdempotencyKey string  `db:"idempotency_key"`
	PlacedAt       string  `db:"placed_at"`
}

// OrderItem snapshots the catalog price at purchase time; later catalog
// edits never change a placed order.
type OrderItem struct {
	OrderID   int64   `db:"order_id"`
	ProductID int64   `db:"product_id"`
	Quantity  int     `db:"quantity"`
	UnitPrice float64 `db:"unit_price"`
	LineTotal float64 `db:"line_total"`
}
