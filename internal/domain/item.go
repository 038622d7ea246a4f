package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Item is a single product line in a user's cart, keyed by (user_id, item_id).
// Timestamps are stored as RFC3339 strings, matching the TEXT columns.
type Item struct {
	UserID      int             `db:"user_id" json:"user_id"`
	ItemID      int             `db:"item_id" json:"item_id"`
	Description string          `db:"description" json:"description"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"`
	CreatedAt   string          `db:"created_at" json:"created_at"`
	LastUpdated string          `db:"last_updated" json:"last_updated"`
}

// Validate enforces the field-level invariants every stored Item must satisfy.
func (it Item) Validate() error {
	if it.Price.IsNegative() {
		return NewValidationError("Price cannot be less than 0.")
	}
	if it.Price.Exponent() < -2 {
		return NewValidationError("Price cannot have more than 2 decimal places.")
	}
	if it.Quantity <= 0 {
		return NewValidationError("Quantity must be greater than 0.")
	}
	return nil
}

// Cart is the derived grouping of all Items sharing a user_id. It is never
// stored; an empty cart and a missing cart are the same thing.
type Cart struct {
	UserID int    `json:"user_id"`
	Items  []Item `json:"items"`
}

// GroupByUser buckets items per user, preserving first-seen order of users
// and of items within each user.
func GroupByUser(items []Item) []Cart {
	idx := make(map[int]int, len(items))
	carts := make([]Cart, 0, len(items))
	for _, it := range items {
		i, ok := idx[it.UserID]
		if !ok {
			i = len(carts)
			idx[it.UserID] = i
			carts = append(carts, Cart{UserID: it.UserID})
		}
		carts[i].Items = append(carts[i].Items, it)
	}
	return carts
}

func (it Item) String() string {
	return fmt.Sprintf("<Item user_id=%d item_id=%d>", it.UserID, it.ItemID)
}
