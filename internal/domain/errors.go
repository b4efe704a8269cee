package domain

import (
	"errors"
	"sort"
	"strings"
)

// Request-boundary error taxonomy. Handlers map these onto a user-facing
// message and status code; anything else is treated as a store fault.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateSKU       = errors.New("sku already in use")
	ErrReferencedByOrder  = errors.New("product is referenced by an order")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderPersistence   = errors.New("order could not be saved")
	ErrInvalidStatus      = errors.New("unknown order status")
	ErrIllegalTransition  = errors.New("status change not allowed")
)

// FieldErrors carries per-field validation failures back to a form.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(fe))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func IsValidation(err error) bool {
	var fe FieldErrors
	return errors.As(err, &fe)
}
