package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vinyltech/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, customer_id, status, subtotal, tax, shipping, total,
  COALESCE(idempotency_key,'') AS idempotency_key, COALESCE(placed_at,'') AS placed_at`

// CreateTx inserts the order header inside the checkout transaction.
func (r *OrderRepo) CreateTx(tx *sqlx.Tx, o domain.Order) (int64, error) {
	res, err := tx.Exec(`
	  INSERT INTO orders(customer_id, status, subtotal, tax, shipping, total, idempotency_key)
	  VALUES(?,?,?,?,?,?,?)
	`, o.CustomerID, o.Status, o.Subtotal, o.Tax, o.Shipping, o.Total, nullable(o.IdempotencyKey))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertItemTx inserts one snapshot line inside the checkout transaction.
func (r *OrderRepo) InsertItemTx(tx *sqlx.Tx, it domain.OrderItem) error {
	_, err := tx.Exec(`
	  INSERT INTO order_items(order_id, product_id, quantity, unit_price, line_total)
	  VALUES(?,?,?,?,?)
	`, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.LineTotal)
	return err
}

func (r *OrderRepo) Get(id int64) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, err
}

// ByIdempotencyKey resolves a previously committed checkout submission.
func (r *OrderRepo) ByIdempotencyKey(key string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders WHERE idempotency_key=?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, err
}

// ItemRow joins the snapshot with the current catalog name for display.
// The money columns come from the snapshot only.
type ItemRow struct {
	ProductID int64   `db:"product_id"`
	Name      string  `db:"name"`
	Quantity  int     `db:"quantity"`
	UnitPrice float64 `db:"unit_price"`
	LineTotal float64 `db:"line_total"`
}

func (r *OrderRepo) Items(orderID int64) ([]ItemRow, error) {
	var out []ItemRow
	err := r.db.Select(&out, `
	  SELECT oi.product_id, COALESCE(p.name,'(removed)') AS name,
	         oi.quantity, oi.unit_price, oi.line_total
	  FROM order_items oi
	  LEFT JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY oi.id
	`, orderID)
	return out, err
}

func (r *OrderRepo) ListByCustomer(customerID int64) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT `+orderCols+` FROM orders
	  WHERE customer_id=? ORDER BY datetime(placed_at) DESC, id DESC
	`, customerID)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT `+orderCols+` FROM orders
	  ORDER BY datetime(placed_at) DESC, id DESC LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id int64, status domain.Status) error {
	res, err := r.db.Exec(`UPDATE orders SET status=? WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
