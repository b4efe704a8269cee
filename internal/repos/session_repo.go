package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vinyltech/internal/domain"
)

// SessionRepo tracks visitor sessions: identity binding and the
// recently-viewed product ring.
type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

// recentViewsCap bounds how many viewed product ids a session keeps.
const recentViewsCap = 10

func (r *SessionRepo) Touch(sid string) error {
	_, err := r.db.Exec(`
	  INSERT INTO sessions(id, last_seen) VALUES(?, CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET last_seen = CURRENT_TIMESTAMP
	`, sid)
	return err
}

func (r *SessionRepo) Bind(sid string, customerID int64) error {
	_, err := r.db.Exec(`
	  INSERT INTO sessions(id, customer_id, last_seen) VALUES(?,?,CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET customer_id = excluded.customer_id,
	                                last_seen = CURRENT_TIMESTAMP
	`, sid, customerID)
	return err
}

func (r *SessionRepo) Unbind(sid string) error {
	_, err := r.db.Exec(`UPDATE sessions SET customer_id=NULL, last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

func (r *SessionRepo) Customer(sid string) (*domain.Customer, error) {
	// customerCols has a bare id column, so resolve the session first
	// instead of joining.
	var c domain.Customer
	err := r.db.Get(&c, `
	  SELECT `+customerCols+` FROM customers
	  WHERE id = (SELECT customer_id FROM sessions WHERE id = ?)
	`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// RecordView notes a product view, keeping at most recentViewsCap entries
// per session (oldest evicted first).
func (r *SessionRepo) RecordView(sid string, productID int64) error {
	// viewed_at is a table-wide sequence so back-to-back views never tie.
	if _, err := r.db.Exec(`
	  INSERT INTO recent_views(session_id, product_id, viewed_at)
	  VALUES(?,?,(SELECT COALESCE(MAX(viewed_at),0)+1 FROM recent_views))
	  ON CONFLICT(session_id, product_id) DO UPDATE
	  SET viewed_at = (SELECT COALESCE(MAX(viewed_at),0)+1 FROM recent_views)
	`, sid, productID); err != nil {
		return err
	}
	_, err := r.db.Exec(`
	  DELETE FROM recent_views
	  WHERE session_id = ? AND product_id NOT IN (
	    SELECT product_id FROM recent_views
	    WHERE session_id = ?
	    ORDER BY viewed_at DESC LIMIT ?
	  )
	`, sid, sid, recentViewsCap)
	return err
}

// RecentViews returns up to limit recently viewed products, newest first,
// excluding the product currently on screen.
func (r *SessionRepo) RecentViews(sid string, excludeProductID int64, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT p.id, COALESCE(p.sku,'') AS sku, p.name, p.category,
	         COALESCE(p.description,'') AS description, p.price, p.stock,
	         COALESCE(p.image,'') AS image, COALESCE(p.created_at,'') AS created_at
	  FROM recent_views rv JOIN products p ON p.id = rv.product_id
	  WHERE rv.session_id = ? AND rv.product_id != ?
	  ORDER BY rv.viewed_at DESC
	  LIMIT ?
	`, sid, excludeProductID, limit)
	return out, err
}
