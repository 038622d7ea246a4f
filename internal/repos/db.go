package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Cart line items; a cart is the set of rows sharing a user_id.
CREATE TABLE IF NOT EXISTS shopcart_items(
  user_id      INTEGER NOT NULL,
  item_id      INTEGER NOT NULL,
  description  TEXT NOT NULL DEFAULT '',
  quantity     INTEGER NOT NULL CHECK (quantity > 0),
  price        TEXT NOT NULL,
  created_at   TEXT NOT NULL,
  last_updated TEXT NOT NULL,
  PRIMARY KEY (user_id, item_id)
);
CREATE INDEX IF NOT EXISTS idx_shopcart_items_user ON shopcart_items(user_id);
`
	_, err := db.Exec(schema)
	return err
}

// SeedDemo inserts a handful of demo cart rows so the console has something
// to show on a fresh database. Idempotent; safe to run every start.
func SeedDemo(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM shopcart_items`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo shopcart items")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO shopcart_items(user_id,item_id,description,quantity,price,created_at,last_updated) VALUES
	  (1, 101, 'Wireless Mouse',      2, '19.99', '2026-01-05T10:00:00Z', '2026-01-05T10:00:00Z'),
	  (1, 102, 'USB-C Hub',           1, '29.99', '2026-01-06T12:30:00Z', '2026-01-06T12:30:00Z'),
	  (2, 101, 'Wireless Mouse',      1, '19.99', '2026-01-07T09:15:00Z', '2026-01-07T09:15:00Z'),
	  (2, 205, 'Mechanical Keyboard', 1, '89.50', '2026-01-08T16:45:00Z', '2026-01-08T16:45:00Z')`)

	return tx.Commit()
}
