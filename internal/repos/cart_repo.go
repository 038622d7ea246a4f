package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"shopcarts/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// Find looks up one line item. Returns nil (not an error) when absent.
func (r *CartRepo) Find(userID, itemID int) (*domain.Item, error) {
	var it domain.Item
	err := r.db.Get(&it, `
	  SELECT user_id, item_id, description, quantity, price, created_at, last_updated
	  FROM shopcart_items WHERE user_id = ? AND item_id = ?
	`, userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ByUser returns a user's items in insertion order.
func (r *CartRepo) ByUser(userID int) ([]domain.Item, error) {
	items := []domain.Item{}
	err := r.db.Select(&items, `
	  SELECT user_id, item_id, description, quantity, price, created_at, last_updated
	  FROM shopcart_items WHERE user_id = ? ORDER BY rowid
	`, userID)
	return items, err
}

// All returns every item in insertion order, across all carts.
func (r *CartRepo) All() ([]domain.Item, error) {
	items := []domain.Item{}
	err := r.db.Select(&items, `
	  SELECT user_id, item_id, description, quantity, price, created_at, last_updated
	  FROM shopcart_items ORDER BY rowid
	`)
	return items, err
}

// Query returns the ordered items satisfying the predicate.
func (r *CartRepo) Query(keep func(domain.Item) bool) ([]domain.Item, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Item, 0, len(all))
	for _, it := range all {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Upsert inserts a new line item or adds to the existing quantity, the same
// (user_id, item_id) key meaning the same product line.
func (r *CartRepo) Upsert(it domain.Item) error {
	_, err := r.db.Exec(`
	  INSERT INTO shopcart_items(user_id,item_id,description,quantity,price,created_at,last_updated)
	  VALUES(?,?,?,?,?,?,?)
	  ON CONFLICT(user_id,item_id) DO UPDATE
	  SET quantity = quantity + excluded.quantity, last_updated = excluded.last_updated
	`, it.UserID, it.ItemID, it.Description, it.Quantity, it.Price, it.CreatedAt, it.LastUpdated)
	return err
}

// SetQuantity replaces the quantity of an existing line item. Reports whether
// a row was updated.
func (r *CartRepo) SetQuantity(userID, itemID, quantity int, now string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE shopcart_items SET quantity = ?, last_updated = ?
	  WHERE user_id = ? AND item_id = ?
	`, quantity, now, userID, itemID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes one line item. Reports whether it existed.
func (r *CartRepo) Delete(userID, itemID int) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM shopcart_items WHERE user_id = ? AND item_id = ?`, userID, itemID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteCart removes every item for a user and reports how many existed.
func (r *CartRepo) DeleteCart(userID int) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM shopcart_items WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearCart snapshots and removes a user's items in one transaction. Either
// the full snapshot is returned with all rows gone, or nothing changes.
func (r *CartRepo) ClearCart(userID int) ([]domain.Item, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	items := []domain.Item{}
	if err := tx.Select(&items, `
	  SELECT user_id, item_id, description, quantity, price, created_at, last_updated
	  FROM shopcart_items WHERE user_id = ? ORDER BY rowid
	`, userID); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, tx.Commit()
	}
	if _, err := tx.Exec(`DELETE FROM shopcart_items WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	return items, tx.Commit()
}
