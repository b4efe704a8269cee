package repos

import (
	"github.com/jmoiron/sqlx"
)

// CartRepo keeps cart lines keyed by session id, decoupled from transport.
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartLine struct {
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}

// Set writes a line's quantity, creating it if absent.
func (r *CartRepo) Set(sessionID string, productID int64, qty int) error {
	_, err := r.db.Exec(`
	  INSERT INTO cart_items(session_id, product_id, quantity, updated_at)
	  VALUES(?,?,?,CURRENT_TIMESTAMP)
	  ON CONFLICT(session_id, product_id) DO UPDATE
	  SET quantity = excluded.quantity, updated_at = CURRENT_TIMESTAMP
	`, sessionID, productID, qty)
	return err
}

// Remove deletes a line. Removing an absent line is a no-op.
func (r *CartRepo) Remove(sessionID string, productID int64) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE session_id=? AND product_id=?`, sessionID, productID)
	return err
}

func (r *CartRepo) Lines(sessionID string) ([]CartLine, error) {
	var out []CartLine
	err := r.db.Select(&out, `
	  SELECT product_id, quantity FROM cart_items
	  WHERE session_id=? ORDER BY product_id
	`, sessionID)
	return out, err
}

func (r *CartRepo) Clear(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE session_id=?`, sessionID)
	return err
}

// ClearTx clears the cart inside the checkout transaction.
func (r *CartRepo) ClearTx(tx *sqlx.Tx, sessionID string) error {
	_, err := tx.Exec(`DELETE FROM cart_items WHERE session_id=?`, sessionID)
	return err
}
