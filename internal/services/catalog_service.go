package services

import (
	"errors"

	"vinyltech/internal/domain"
	"vinyltech/internal/repos"
)

// Categories, in storefront navigation order.
var Categories = []string{"Turntable", "Speaker", "Amplifier"}

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) ListAll() ([]domain.Product, error) {
	return s.Prods.List()
}

func (s *CatalogService) ListByCategory(category string) ([]domain.Product, error) {
	return s.Prods.ListByCategory(category)
}

// HomeSamples picks the first product of each category for the landing
// page, skipping categories with no products yet.
func (s *CatalogService) HomeSamples() (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(Categories))
	for _, cat := range Categories {
		p, err := s.Prods.FirstByCategory(cat)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[cat] = p
	}
	return out, nil
}

func (s *CatalogService) Get(id int64) (domain.Product, error) {
	return s.Prods.Get(id)
}
