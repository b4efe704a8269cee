package services

import (
	"errors"
	"fmt"

	"vinyltech/internal/domain"
	"vinyltech/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

func clamp(qty, stock int) int {
	if qty < 1 {
		qty = 1
	}
	if qty > stock {
		qty = stock
	}
	return qty
}

// Add increases a line by qty (at least 1), clamped to current stock.
// Unknown products and zero-stock products are a no-op so the storefront
// can show a friendly message instead of failing the request.
func (s *CartService) Add(sessionID string, productID int64, qty int) error {
	p, err := s.Prods.Get(productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if p.Stock <= 0 {
		return domain.ErrInsufficientStock
	}
	if qty < 1 {
		qty = 1
	}
	existing := 0
	lines, err := s.Carts.Lines(sessionID)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if l.ProductID == productID {
			existing = l.Quantity
		}
	}
	return s.Carts.Set(sessionID, productID, clamp(existing+qty, p.Stock))
}

// Update sets a line's quantity; zero or negative removes the line.
func (s *CartService) Update(sessionID string, productID int64, qty int) error {
	if qty <= 0 {
		return s.Carts.Remove(sessionID, productID)
	}
	p, err := s.Prods.Get(productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// line points at a vanished product; drop it
			return s.Carts.Remove(sessionID, productID)
		}
		return err
	}
	if p.Stock <= 0 {
		return s.Carts.Remove(sessionID, productID)
	}
	return s.Carts.Set(sessionID, productID, clamp(qty, p.Stock))
}

func (s *CartService) Remove(sessionID string, productID int64) error {
	return s.Carts.Remove(sessionID, productID)
}

type CartItem struct {
	Product   domain.Product
	Quantity  int
	LineTotal float64
}

type CartSummary struct {
	Items    []CartItem
	Subtotal float64
}

func (cs CartSummary) Empty() bool { return len(cs.Items) == 0 }

// Summarize joins the cart against the catalog. It self-heals as it reads:
// lines for deleted or out-of-stock products are pruned, quantities above
// current stock are clamped back down and written through.
func (s *CartService) Summarize(sessionID string) (CartSummary, error) {
	lines, err := s.Carts.Lines(sessionID)
	if err != nil {
		return CartSummary{}, err
	}

	var out CartSummary
	for _, l := range lines {
		p, err := s.Prods.Get(l.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			_ = s.Carts.Remove(sessionID, l.ProductID)
			continue
		}
		if err != nil {
			return CartSummary{}, err
		}
		if p.Stock <= 0 || l.Quantity <= 0 {
			_ = s.Carts.Remove(sessionID, l.ProductID)
			continue
		}
		qty := clamp(l.Quantity, p.Stock)
		if qty != l.Quantity {
			_ = s.Carts.Set(sessionID, l.ProductID, qty)
		}
		line := CartItem{Product: p, Quantity: qty, LineTotal: p.Price * float64(qty)}
		out.Items = append(out.Items, line)
		out.Subtotal += line.LineTotal
	}
	return out, nil
}

// Snapshot joins the cart against the catalog without the repairs
// Summarize applies. Checkout reads through it: a line whose product
// vanished or whose stock no longer covers the quantity is a hard
// ErrInsufficientStock, leaving cart and stock untouched.
func (s *CartService) Snapshot(sessionID string) (CartSummary, error) {
	lines, err := s.Carts.Lines(sessionID)
	if err != nil {
		return CartSummary{}, err
	}

	var out CartSummary
	for _, l := range lines {
		p, err := s.Prods.Get(l.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			return CartSummary{}, fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, l.ProductID)
		}
		if err != nil {
			return CartSummary{}, err
		}
		if p.Stock < l.Quantity {
			return CartSummary{}, fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, p.ID)
		}
		line := CartItem{Product: p, Quantity: l.Quantity, LineTotal: p.Price * float64(l.Quantity)}
		out.Items = append(out.Items, line)
		out.Subtotal += line.LineTotal
	}
	return out, nil
}
