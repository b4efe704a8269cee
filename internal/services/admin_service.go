package services

import (
	"vinyltech/internal/domain"
	"vinyltech/internal/repos"
)

type AdminService struct {
	Prods  *repos.ProductRepo
	Orders *repos.OrderRepo
}

func NewAdminService(prods *repos.ProductRepo, orders *repos.OrderRepo) *AdminService {
	return &AdminService{Prods: prods, Orders: orders}
}

// ProductInput carries an already-parsed admin product form. Image
// resolution order: a freshly uploaded file wins over a supplied URL,
// which wins over whatever the record already stores.
type ProductInput struct {
	Name          string
	SKU           string
	Category      string
	Description   string
	Price         float64
	Stock         int
	UploadedImage string // path of a stored upload, empty if none
	ImageURL      string
}

func (in ProductInput) check() error {
	fe := domain.FieldErrors{}
	if in.Name == "" {
		fe["name"] = "is required"
	}
	if in.Category == "" {
		fe["category"] = "is required"
	}
	if in.Price < 0 {
		fe["price"] = "must not be negative"
	}
	if in.Stock < 0 {
		fe["stock"] = "must not be negative"
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

func (in ProductInput) image(existing string) string {
	if in.UploadedImage != "" {
		return in.UploadedImage
	}
	if in.ImageURL != "" {
		return in.ImageURL
	}
	return existing
}

func (s *AdminService) CreateProduct(in ProductInput) (domain.Product, error) {
	if err := in.check(); err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		Name: in.Name, SKU: in.SKU, Category: in.Category,
		Description: in.Description, Price: in.Price, Stock: in.Stock,
		Image: in.image(""),
	}
	id, err := s.Prods.Create(p)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	return p, nil
}

func (s *AdminService) UpdateProduct(id int64, in ProductInput) (domain.Product, error) {
	if err := in.check(); err != nil {
		return domain.Product{}, err
	}
	existing, err := s.Prods.Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		ID: id, Name: in.Name, SKU: in.SKU, Category: in.Category,
		Description: in.Description, Price: in.Price, Stock: in.Stock,
		Image: in.image(existing.Image),
	}
	if err := s.Prods.Update(p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *AdminService) DeleteProduct(id int64) error {
	return s.Prods.Delete(id)
}

// UpdateOrderStatus applies an admin status change through the legal
// transition table.
func (s *AdminService) UpdateOrderStatus(orderID int64, raw string) error {
	next, ok := domain.ParseStatus(raw)
	if !ok {
		return domain.ErrInvalidStatus
	}
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return err
	}
	if !domain.CanTransition(o.Status, next) {
		return domain.ErrIllegalTransition
	}
	if o.Status == next {
		return nil
	}
	return s.Orders.UpdateStatus(orderID, next)
}
