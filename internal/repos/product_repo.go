package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"vinyltech/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, COALESCE(sku,'') AS sku, name, category,
  COALESCE(description,'') AS description, price, stock,
  COALESCE(image,'') AS image, COALESCE(created_at,'') AS created_at`

func (r *ProductRepo) List() ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products ORDER BY id`)
	return out, err
}

func (r *ProductRepo) ListByCategory(category string) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+` FROM products WHERE category = ? ORDER BY id
	`, category)
	return out, err
}

// FirstByCategory returns the lowest-id product in a category, used for
// the home page samples.
func (r *ProductRepo) FirstByCategory(category string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT `+productCols+` FROM products WHERE category = ? ORDER BY id ASC LIMIT 1
	`, category)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) Get(id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) Create(p domain.Product) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO products(name, sku, category, description, price, stock, image)
	  VALUES(?,?,?,?,?,?,?)
	`, p.Name, nullable(p.SKU), p.Category, p.Description, p.Price, p.Stock, p.Image)
	if err != nil {
		return 0, mapProductErr(err)
	}
	return res.LastInsertId()
}

func (r *ProductRepo) Update(p domain.Product) error {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET name=?, sku=?, category=?, description=?, price=?, stock=?, image=?
	  WHERE id=?
	`, p.Name, nullable(p.SKU), p.Category, p.Description, p.Price, p.Stock, p.Image, p.ID)
	if err != nil {
		return mapProductErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete refuses to remove a product any order line still references.
func (r *ProductRepo) Delete(id int64) error {
	var refs int
	if err := r.db.Get(&refs, `SELECT COUNT(*) FROM order_items WHERE product_id=?`, id); err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrReferencedByOrder
	}
	res, err := r.db.Exec(`DELETE FROM products WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementStock subtracts "by" units inside tx if enough stock remains.
func (r *ProductRepo) DecrementStock(tx *sqlx.Tx, productID int64, by int) error {
	res, err := tx.Exec(`
	  UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?
	`, by, productID, by)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, productID)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func mapProductErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE") && strings.Contains(err.Error(), "sku") {
		return domain.ErrDuplicateSKU
	}
	return err
}
