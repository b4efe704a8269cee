package services_test

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinyltech/internal/domain"
	"vinyltech/internal/repos"
	"vinyltech/internal/services"
)

func insertCustomer(t *testing.T, db *sqlx.DB, email string) int64 {
	t.Helper()
	res, err := db.Exec(`
	  INSERT INTO customers(first_name, last_name, email, password_hash)
	  VALUES('Ada','Lovelace',?,'$2a$12$notarealhash')
	`, email)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func newCheckout(db *sqlx.DB) (*services.CheckoutService, *services.CartService) {
	cart := newCartService(db)
	svc := services.NewCheckoutService(db, cart,
		repos.NewCustomerRepo(db), repos.NewOrderRepo(db), repos.NewProductRepo(db))
	return svc, cart
}

func shipping() domain.ShippingAddress {
	return domain.ShippingAddress{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		AddressLine1: "12 Analog Ave",
		City:         "Melbourne",
		State:        "VIC",
		PostalCode:   "3000",
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	db := memdb(t)
	pid := insertProduct(t, db, "Classic Belt-Drive Turntable", "TT-1", "Turntable", 199.99, 12)
	cid := insertCustomer(t, db, "ada@example.com")
	svc, cart := newCheckout(db)

	require.NoError(t, cart.Add("sid-1", pid, 2))
	before, err := cart.Summarize("sid-1")
	require.NoError(t, err)

	order, err := svc.Place("sid-1", cid, shipping(), "key-1")
	require.NoError(t, err)
	require.NotZero(t, order.ID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, before.Subtotal, order.Subtotal)
	assert.Equal(t, before.Subtotal, order.Total)
	assert.Zero(t, order.Tax)
	assert.Zero(t, order.Shipping)

	// cart is cleared
	after, err := cart.Summarize("sid-1")
	require.NoError(t, err)
	assert.True(t, after.Empty())

	// stock decremented within the same transaction
	var stock int
	require.NoError(t, db.Get(&stock, `SELECT stock FROM products WHERE id=?`, pid))
	assert.Equal(t, 10, stock)

	// snapshot lines match the cart that was checked out
	items, err := repos.NewOrderRepo(db).Items(order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 199.99, items[0].UnitPrice)
	assert.Equal(t, 2*199.99, items[0].LineTotal)

	// address was persisted on the customer
	cu, err := repos.NewCustomerRepo(db).ByID(cid)
	require.NoError(t, err)
	assert.Equal(t, "12 Analog Ave", cu.AddressLine1)
	assert.Equal(t, "3000", cu.PostalCode)
}

func TestCheckoutSnapshotSurvivesPriceChange(t *testing.T) {
	db := memdb(t)
	pid := insertProduct(t, db, "Pro Reference Turntable", "TT-4", "Turntable", 599.99, 3)
	cid := insertCustomer(t, db, "ada@example.com")
	svc, cart := newCheckout(db)

	require.NoError(t, cart.Add("sid-1", pid, 1))
	order, err := svc.Place("sid-1", cid, shipping(), "")
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE products SET price=1.00 WHERE id=?`, pid)
	require.NoError(t, err)

	got, err := repos.NewOrderRepo(db).Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, got.Total)
	items, err := repos.NewOrderRepo(db).Items(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 599.99, items[0].UnitPrice)
}

func TestCheckoutValidationLeavesStateUntouched(t *testing.T) {
	db := memdb(t)
	pid := insertProduct(t, db, "Bookshelf Speaker Pair", "SP-1", "Speaker", 299.99, 5)
	cid := insertCustomer(t, db, "ada@example.com")
	svc, cart := newCheckout(db)

	require.NoError(t, cart.Add("sid-1", pid, 1))

	bad := shipping()
	bad.City = ""
	bad.PostalCode = ""
	_, err := svc.Place("sid-1", cid, bad, "")
	require.Error(t, err)
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "city")
	assert.Contains(t, fe, "postal_code")

	// nothing moved
	sum, err := cart.Summarize("sid-1")
	require.NoError(t, err)
	assert.Len(t, sum.Items, 1)
	var orders int
	require.NoError(t, db.Get(&orders, `SELECT COUNT(*) FROM orders`))
	assert.Zero(t, orders)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := memdb(t)
	cid := insertCustomer(t, db, "ada@example.com")
	svc, _ := newCheckout(db)

	_, err := svc.Place("sid-1", cid, shipping(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	db := memdb(t)
	a := insertProduct(t, db, "Product A", "A-1", "Speaker", 10, 5)
	b := insertProduct(t, db, "Product B", "B-1", "Speaker", 20, 3)
	cid := insertCustomer(t, db, "ada@example.com")
	svc, cart := newCheckout(db)

	require.NoError(t, cart.Add("sid-1", a, 2))
	require.NoError(t, cart.Add("sid-1", b, 3))

	// stock for B collapses between summarize and commit
	_, err := db.Exec(`UPDATE products SET stock=0 WHERE id=?`, b)
	require.NoError(t, err)

	_, err = svc.Place("sid-1", cid, shipping(), "")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// nothing was decremented, no order exists, the cart still holds
	// both lines for the customer to review
	var stock int
	require.NoError(t, db.Get(&stock, `SELECT stock FROM products WHERE id=?`, a))
	assert.Equal(t, 5, stock)
	var orders int
	require.NoError(t, db.Get(&orders, `SELECT COUNT(*) FROM orders`))
	assert.Zero(t, orders)
	var lines int
	require.NoError(t, db.Get(&lines, `SELECT COUNT(*) FROM cart_items WHERE session_id='sid-1'`))
	assert.Equal(t, 2, lines)
}

func TestCheckoutVanishedProductFails(t *testing.T) {
	db := memdb(t)
	pid := insertProduct(t, db, "Passive Studio Monitor", "SP-3", "Speaker", 249.99, 6)
	cid := insertCustomer(t, db, "ada@example.com")
	svc, cart := newCheckout(db)

	require.NoError(t, cart.Add("sid-1", pid, 1))
	_, err := db.Exec(`DELETE FROM products WHERE id=?`, pid)
	require.NoError(t, err)

	_, err = svc.Place("sid-1", cid, shipping(), "")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var orders int
	require.NoError(t, db.Get(&orders, `SELECT COUNT(*) FROM orders`))
	assert.Zero(t, orders)
}

func TestCheckoutIdempotencyKeyCollapsesRetries(t *testing.T) {
	db := memdb(t)
	pid := insertProduct(t, db, "Hybrid Valve Amplifier", "AM-4", "Amplifier", 899.99, 4)
	cid := insertCustomer(t, db, "ada@example.com")
	svc, cart := newCheckout(db)

	require.NoError(t, cart.Add("sid-1", pid, 1))
	first, err := svc.Place("sid-1", cid, shipping(), "key-dup")
	require.NoError(t, err)

	// the duplicate browser submit: cart is already empty, key replays
	second, err := svc.Place("sid-1", cid, shipping(), "key-dup")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var orders int
	require.NoError(t, db.Get(&orders, `SELECT COUNT(*) FROM orders`))
	assert.Equal(t, 1, orders)
}

// A write failure after the order header insert must leave no partial
// state behind; sqlmock injects the failure and verifies the rollback.
func TestCheckoutRollsBackOnItemInsertFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	cart := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))
	svc := services.NewCheckoutService(db, cart,
		repos.NewCustomerRepo(db), repos.NewOrderRepo(db), repos.NewProductRepo(db))

	mock.ExpectQuery("FROM cart_items").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity"}).AddRow(1, 2))
	mock.ExpectQuery("FROM products").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "sku", "name", "category", "description", "price", "stock", "image", "created_at",
		}).AddRow(1, "TT-1", "Turntable One", "Turntable", "", 199.99, 12, "", ""))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE customers").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET stock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err = svc.Place("sid-1", 1, shipping(), "")
	require.ErrorIs(t, err, domain.ErrOrderPersistence)
	require.NoError(t, mock.ExpectationsWereMet())
}
