package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"vinyltech/internal/domain"
	"vinyltech/internal/repos"
)

var shippingValidator = validator.New()

// ValidateShipping checks the required shipping fields up front, before
// anything is written.
func ValidateShipping(a domain.ShippingAddress) error {
	err := shippingValidator.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := domain.FieldErrors{}
	for _, v := range verrs {
		switch v.Tag() {
		case "required":
			fe[fieldLabel(v.Field())] = "is required"
		default:
			fe[fieldLabel(v.Field())] = "is invalid"
		}
	}
	return fe
}

func fieldLabel(structField string) string {
	switch structField {
	case "FirstName":
		return "first_name"
	case "LastName":
		return "last_name"
	case "AddressLine1":
		return "address_line1"
	case "AddressLine2":
		return "address_line2"
	case "PostalCode":
		return "postal_code"
	default:
		return strings.ToLower(structField)
	}
}

type CheckoutService struct {
	DB        *sqlx.DB
	Cart      *CartService
	Customers *repos.CustomerRepo
	Orders    *repos.OrderRepo
	Prods     *repos.ProductRepo
}

func NewCheckoutService(db *sqlx.DB, cart *CartService, customers *repos.CustomerRepo,
	orders *repos.OrderRepo, prods *repos.ProductRepo) *CheckoutService {
	return &CheckoutService{DB: db, Cart: cart, Customers: customers, Orders: orders, Prods: prods}
}

// Place runs the whole pipeline in one transaction: persist the shipping
// address, re-validate and decrement stock per line, insert the order and
// its price snapshots, clear the cart. Replaying an idempotency key
// returns the order that key already created.
func (s *CheckoutService) Place(sessionID string, customerID int64,
	addr domain.ShippingAddress, idemKey string) (domain.Order, error) {

	if idemKey != "" {
		if prior, err := s.Orders.ByIdempotencyKey(idemKey); err == nil {
			return prior, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, err
		}
	}

	if err := ValidateShipping(addr); err != nil {
		return domain.Order{}, err
	}

	summary, err := s.Cart.Snapshot(sessionID)
	if err != nil {
		return domain.Order{}, err
	}
	if summary.Empty() {
		return domain.Order{}, domain.ErrEmptyCart
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrOrderPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.Customers.UpdateAddressTx(tx, customerID, addr); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrOrderPersistence, err)
	}

	for _, it := range summary.Items {
		if err := s.Prods.DecrementStock(tx, it.Product.ID, it.Quantity); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return domain.Order{}, err
			}
			return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrOrderPersistence, err)
		}
	}

	order := domain.Order{
		CustomerID:     customerID,
		Status:         domain.StatusPending,
		Subtotal:       summary.Subtotal,
		Tax:            0,
		Shipping:       0,
		Total:          summary.Subtotal,
		IdempotencyKey: idemKey,
	}
	orderID, err := s.Orders.CreateTx(tx, order)
	if err != nil {
		// A concurrent submit with the same key may have won the race.
		if idemKey != "" && strings.Contains(err.Error(), "UNIQUE") {
			_ = tx.Rollback()
			if prior, lerr := s.Orders.ByIdempotencyKey(idemKey); lerr == nil {
				return prior, nil
			}
		}
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrOrderPersistence, err)
	}
	order.ID = orderID

	for _, it := range summary.Items {
		line := domain.OrderItem{
			OrderID:   orderID,
			ProductID: it.Product.ID,
			Quantity:  it.Quantity,
			UnitPrice: it.Product.Price,
			LineTotal: it.LineTotal,
		}
		if err := s.Orders.InsertItemTx(tx, line); err != nil {
			return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrOrderPersistence, err)
		}
	}

	if err := s.Cart.Carts.ClearTx(tx, sessionID); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrOrderPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrOrderPersistence, err)
	}
	return order, nil
}
