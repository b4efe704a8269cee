package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string, seed bool) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if seed {
		if err := seedIfEmpty(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS customers(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT DEFAULT '',
  address_line1 TEXT DEFAULT '',
  address_line2 TEXT DEFAULT '',
  city TEXT DEFAULT '',
  state TEXT DEFAULT '',
  postal_code TEXT DEFAULT '',
  country TEXT DEFAULT 'AU',
  password_hash TEXT NOT NULL,
  salt TEXT DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email ON customers(LOWER(email));

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  sku TEXT UNIQUE,
  category TEXT NOT NULL,
  description TEXT DEFAULT '',
  price REAL NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  image TEXT DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
  status TEXT NOT NULL DEFAULT 'pending'
    CHECK (status IN ('pending','paid','shipped','cancelled','refunded')),
  subtotal REAL NOT NULL DEFAULT 0 CHECK (subtotal >= 0),
  tax REAL NOT NULL DEFAULT 0 CHECK (tax >= 0),
  shipping REAL NOT NULL DEFAULT 0 CHECK (shipping >= 0),
  total REAL NOT NULL DEFAULT 0 CHECK (total >= 0),
  idempotency_key TEXT UNIQUE,
  placed_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id);

CREATE TABLE IF NOT EXISTS order_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  unit_price REAL NOT NULL CHECK (unit_price >= 0),
  line_total REAL NOT NULL CHECK (line_total >= 0),
  UNIQUE(order_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  customer_id INTEGER NULL REFERENCES customers(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_customer ON sessions(customer_id);

CREATE TABLE IF NOT EXISTS cart_items(
  session_id TEXT NOT NULL,
  product_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  updated_at TEXT,
  PRIMARY KEY (session_id, product_id)
);

CREATE TABLE IF NOT EXISTS recent_views(
  session_id TEXT NOT NULL,
  product_id INTEGER NOT NULL,
  viewed_at INTEGER NOT NULL, -- monotonic sequence, not wall-clock
  PRIMARY KEY (session_id, product_id)
);
`
	_, err := db.Exec(schema)
	return err
}

type seedProduct struct {
	name, sku, category, description, image string
	price                                   float64
	stock                                   int
}

var seedCatalog = []seedProduct{
	{"Classic Belt-Drive Turntable", "TT-1001", "Turntable",
		"High-fidelity belt-drive turntable with adjustable counterweight and built-in phono preamp.",
		"/static/images/turntable1.jpg", 199.99, 12},
	{"Direct-Drive DJ Turntable", "TT-1002", "Turntable",
		"Robust direct-drive motor, pitch control and slip mats for DJ performance.",
		"/static/images/turntable2.jpg", 349.99, 8},
	{"Vintage Wood-Grain Turntable", "TT-1003", "Turntable",
		"Retro-styled turntable with walnut veneer finish and precision tonearm for warm analog sound.",
		"/static/images/turntable3.jpg", 279.99, 5},
	{"Pro Reference Turntable", "TT-1004", "Turntable",
		"Studio-grade turntable with quartz lock motor and anti-skate for professional mastering.",
		"/static/images/turntable4.jpg", 599.99, 3},
	{"Bookshelf Speaker Pair", "SP-2001", "Speaker",
		"Premium bookshelf speakers with rich sound quality and silk dome tweeters.",
		"/static/images/speaker1.jpg", 299.99, 15},
	{"Active Monitor Speakers", "SP-2002", "Speaker",
		"Powered studio monitors with bi-amped design for accurate frequency response.",
		"/static/images/speaker2.jpg", 449.99, 10},
	{"Floor-Standing Tower Speakers", "SP-2003", "Speaker",
		"Three-way floor speakers with dual woofers delivering deep bass and crystal clarity.",
		"/static/images/speaker3.jpg", 799.99, 6},
	{"Vintage Acoustic Speakers", "SP-2004", "Speaker",
		"Classic design speakers with mahogany cabinets and warm, natural sound signature.",
		"/static/images/speaker4.jpg", 349.99, 7},
	{"Integrated Amplifier", "AM-3001", "Amplifier",
		"High-quality integrated amplifier with phono input and 80W per channel.",
		"/static/images/amplifier1.jpg", 449.99, 11},
	{"Tube Phono Preamp", "AM-3002", "Amplifier",
		"Warm tube-driven phono stage with RIAA equalization for vinyl playback.",
		"/static/images/amplifier2.jpg", 329.99, 9},
	{"Class D Power Amplifier", "AM-3003", "Amplifier",
		"Efficient class D amplifier delivering 150W of clean power with minimal distortion.",
		"/static/images/amplifier3.jpg", 549.99, 8},
	{"Hybrid Valve Amplifier", "AM-3004", "Amplifier",
		"Premium hybrid design combining tube warmth with solid-state reliability.",
		"/static/images/amplifier4.jpg", 899.99, 4},
}

// seedIfEmpty inserts the demo catalog on first boot. Safe to run every
// start.
func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range seedCatalog {
		if _, err := tx.Exec(`
			INSERT INTO products(name, sku, category, description, image, price, stock)
			VALUES(?,?,?,?,?,?,?)
		`, p.name, p.sku, p.category, p.description, p.image, p.price, p.stock); err != nil {
			return err
		}
	}
	return tx.Commit()
}
