package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"vinyltech/internal/domain"
)

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = `id, first_name, last_name, email,
  COALESCE(phone,'') AS phone,
  COALESCE(address_line1,'') AS address_line1,
  COALESCE(address_line2,'') AS address_line2,
  COALESCE(city,'') AS city, COALESCE(state,'') AS state,
  COALESCE(postal_code,'') AS postal_code, COALESCE(country,'AU') AS country,
  password_hash, COALESCE(salt,'') AS salt,
  COALESCE(created_at,'') AS created_at`

func (r *CustomerRepo) Create(c domain.Customer) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO customers(first_name, last_name, email, password_hash, salt)
	  VALUES(?,?,?,?,?)
	`, c.FirstName, c.LastName, c.Email, c.PasswordHash, c.Salt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, domain.ErrDuplicateEmail
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *CustomerRepo) ByEmail(email string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.Get(&c, `SELECT `+customerCols+` FROM customers WHERE LOWER(email)=LOWER(?)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) ByID(id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.Get(&c, `SELECT `+customerCols+` FROM customers WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCredential rewrites the stored verifier, used by the legacy
// upgrade path on login.
func (r *CustomerRepo) UpdateCredential(id int64, cred domain.Credential) error {
	_, err := r.db.Exec(`UPDATE customers SET password_hash=?, salt=? WHERE id=?`,
		cred.Hash, cred.Salt, id)
	return err
}

// UpdateAddressTx overwrites shipping fields inside the checkout
// transaction.
func (r *CustomerRepo) UpdateAddressTx(tx *sqlx.Tx, id int64, a domain.ShippingAddress) error {
	country := a.Country
	if country == "" {
		country = "AU"
	}
	_, err := tx.Exec(`
	  UPDATE customers
	  SET first_name=?, last_name=?, phone=?, address_line1=?, address_line2=?,
	      city=?, state=?, postal_code=?, country=?
	  WHERE id=?
	`, a.FirstName, a.LastName, a.Phone, a.AddressLine1, a.AddressLine2,
		a.City, a.State, a.PostalCode, country, id)
	return err
}
