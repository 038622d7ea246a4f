package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shopcarts/internal/domain"
	"shopcarts/internal/filter"
	"shopcarts/internal/repos"
)

// CartService owns the cart aggregate rules: every mutation is validated
// before it is applied, and mutations for one user are serialized.
type CartService struct {
	Carts *repos.CartRepo
	locks userLocks
}

func NewCartService(carts *repos.CartRepo) *CartService {
	return &CartService{Carts: carts}
}

// ProductAdd is the payload of the add-with-limits operation. Stock and
// PurchaseLimit are request-scoped hints, not persisted.
type ProductAdd struct {
	ItemID        int
	Description   string
	Price         decimal.Decimal
	Quantity      int
	Stock         *int
	PurchaseLimit *int
}

// UpdateResult distinguishes a normal quantity update from a removal at
// quantity zero.
type UpdateResult struct {
	Removed bool
	Item    *domain.Item
}

// QuantityChange is one entry of a bulk cart update.
type QuantityChange struct {
	ItemID   int
	Quantity int
}

// CheckoutResult carries the human message and the decimal-safe total of the
// cleared cart.
type CheckoutResult struct {
	Message    string
	TotalPrice decimal.Decimal
}

// AddItem adds quantity to an existing line item or creates a new one, then
// returns the user's full cart.
func (s *CartService) AddItem(userID, itemID int, description string, price decimal.Decimal, quantity int) ([]domain.Item, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	it := domain.Item{
		UserID:      userID,
		ItemID:      itemID,
		Description: description,
		Quantity:    quantity,
		Price:       price,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := it.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.Carts.Upsert(it); err != nil {
		return nil, err
	}
	return s.Carts.ByUser(userID)
}

// AddProduct is the add-with-limits variant: stock and purchase-limit checks
// run against the requested quantity and again against the cumulative
// quantity when the item already exists. A failed check changes nothing.
func (s *CartService) AddProduct(userID int, p ProductAdd) ([]domain.Item, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	it := domain.Item{
		UserID:      userID,
		ItemID:      p.ItemID,
		Description: p.Description,
		Quantity:    p.Quantity,
		Price:       p.Price,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := it.Validate(); err != nil {
		return nil, err
	}
	if err := checkStockAndLimits(p.Quantity, p.Stock, p.PurchaseLimit); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	existing, err := s.Carts.Find(userID, p.ItemID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		newQty := existing.Quantity + p.Quantity
		if err := checkStockAndLimits(newQty, p.Stock, p.PurchaseLimit); err != nil {
			return nil, err
		}
		if _, err := s.Carts.SetQuantity(userID, p.ItemID, newQty, now); err != nil {
			return nil, err
		}
	} else if err := s.Carts.Upsert(it); err != nil {
		return nil, err
	}
	return s.Carts.ByUser(userID)
}

func checkStockAndLimits(quantity int, stock, purchaseLimit *int) error {
	if stock != nil && *stock < 1 {
		return domain.NewValidationError("Product is out of stock")
	}
	if stock != nil && quantity > *stock {
		return domain.Validationf("Only %d units are available", *stock)
	}
	if purchaseLimit != nil && quantity > *purchaseLimit {
		return domain.Validationf("Cannot exceed purchase limit of %d", *purchaseLimit)
	}
	return nil
}

// GetCart returns a user's items. An empty cart reads as not found.
func (s *CartService) GetCart(userID int) ([]domain.Item, error) {
	items, err := s.Carts.ByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NotFoundf("User with id '%d' was not found.", userID)
	}
	return items, nil
}

// GetItem returns one line item from a user's cart.
func (s *CartService) GetItem(userID, itemID int) (*domain.Item, error) {
	if _, err := s.GetCart(userID); err != nil {
		return nil, err
	}
	it, err := s.Carts.Find(userID, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.NotFoundf("Item %d not found in user %d's cart", itemID, userID)
	}
	return it, nil
}

// ListCarts applies the filter spec across all items and groups the matches
// by user. No matches yields an empty list, not an error.
func (s *CartService) ListCarts(spec filter.Spec) ([]domain.Cart, error) {
	items, err := s.Carts.Query(func(it domain.Item) bool { return filter.Matches(spec, it) })
	if err != nil {
		return nil, err
	}
	return domain.GroupByUser(items), nil
}

// UserCart returns one user's cart narrowed by the filter spec. A user with
// no matching items reads as not found, mirroring GetCart.
func (s *CartService) UserCart(userID int, spec filter.Spec) ([]domain.Item, error) {
	spec = spec.WithUser(userID)
	items, err := s.Carts.Query(func(it domain.Item) bool { return filter.Matches(spec, it) })
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NotFoundf("User with id '%d' was not found.", userID)
	}
	return items, nil
}

// UpdateItemQuantity replaces a line item's quantity. Zero removes the item;
// negative fails validation.
func (s *CartService) UpdateItemQuantity(userID, itemID, quantity int) (UpdateResult, error) {
	if quantity < 0 {
		return UpdateResult{}, domain.NewValidationError("Quantity cannot be negative")
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	existing, err := s.Carts.Find(userID, itemID)
	if err != nil {
		return UpdateResult{}, err
	}
	if existing == nil {
		return UpdateResult{}, domain.NotFoundf("Item %d not found in user %d's cart", itemID, userID)
	}

	if quantity == 0 {
		if _, err := s.Carts.Delete(userID, itemID); err != nil {
			return UpdateResult{}, err
		}
		return UpdateResult{Removed: true}, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.Carts.SetQuantity(userID, itemID, quantity, now); err != nil {
		return UpdateResult{}, err
	}
	existing.Quantity = quantity
	existing.LastUpdated = now
	return UpdateResult{Item: existing}, nil
}

// UpdateCart applies a list of quantity changes to an existing cart and
// returns the resulting items. Changes apply in order; a missing item aborts
// with not-found.
func (s *CartService) UpdateCart(userID int, changes []QuantityChange) ([]domain.Item, error) {
	items, err := s.Carts.ByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NotFoundf("Shopcart for user %d not found", userID)
	}
	for _, ch := range changes {
		if _, err := s.UpdateItemQuantity(userID, ch.ItemID, ch.Quantity); err != nil {
			return nil, err
		}
	}
	return s.Carts.ByUser(userID)
}

// DeleteItem removes one line item, reporting not-found when it was absent.
func (s *CartService) DeleteItem(userID, itemID int) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	existed, err := s.Carts.Delete(userID, itemID)
	if err != nil {
		return err
	}
	if !existed {
		return domain.NotFoundf("Item with id %d was not found in user %d's cart", itemID, userID)
	}
	return nil
}

// DeleteCart removes every item for a user. Reports whether anything existed;
// the HTTP layer treats delete-of-absent as success.
func (s *CartService) DeleteCart(userID int) (bool, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	n, err := s.Carts.DeleteCart(userID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Checkout totals and clears a user's cart as one transition. The total
// reflects the pre-removal snapshot; an empty cart fails with not-found and
// mutates nothing.
func (s *CartService) Checkout(userID int) (CheckoutResult, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	items, err := s.Carts.ClearCart(userID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(items) == 0 {
		return CheckoutResult{}, domain.NotFoundf("No cart found for user %d", userID)
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return CheckoutResult{
		Message:    fmt.Sprintf("Cart %d checked out successfully", userID),
		TotalPrice: total,
	}, nil
}
