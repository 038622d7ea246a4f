package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shopcarts/internal/domain"
	"shopcarts/internal/filter"
	applog "shopcarts/internal/log"
	"shopcarts/internal/services"
	"shopcarts/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) userID(c *fiber.Ctx) (int, bool) {
	id, ok := validate.ID(c.Params("user_id"))
	if !ok {
		applog.Warn(c, "validation.fail", map[string]any{"field": "user_id", "value": c.Params("user_id")})
	}
	return id, ok
}

func (h *CartHandler) itemID(c *fiber.Ctx) (int, bool) {
	id, ok := validate.ID(c.Params("item_id"))
	if !ok {
		applog.Warn(c, "validation.fail", map[string]any{"field": "item_id", "value": c.Params("item_id")})
	}
	return id, ok
}

func badParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + name})
}

// List returns all carts grouped by user, narrowed by any filter parameters.
func (h *CartHandler) List(c *fiber.Ctx) error {
	spec, err := filter.Parse(c.Queries())
	if err != nil {
		return fail(c, "shopcarts.list", err)
	}
	carts, err := h.Cart.ListCarts(spec)
	if err != nil {
		return fail(c, "shopcarts.list", err)
	}
	return c.JSON(carts)
}

// GetCart returns one user's cart, optionally filtered. Empty reads as 404.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return badParam(c, "user_id")
	}
	spec, err := filter.Parse(c.Queries())
	if err != nil {
		return fail(c, "shopcarts.get", err)
	}
	items, err := h.Cart.UserCart(userID, spec)
	if err != nil {
		return fail(c, "shopcarts.get", err)
	}
	return c.JSON([]domain.Cart{{UserID: userID, Items: items}})
}

// GetItems lists a user's items without timestamps.
func (h *CartHandler) GetItems(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return badParam(c, "user_id")
	}
	items, err := h.Cart.GetCart(userID)
	if err != nil {
		return fail(c, "shopcarts.items", err)
	}
	stripped := make([]fiber.Map, 0, len(items))
	for _, it := range items {
		stripped = append(stripped, itemWithoutTimestamps(it))
	}
	return c.JSON([]fiber.Map{{"user_id": userID, "items": stripped}})
}

// GetItem returns one line item from a user's cart.
func (h *CartHandler) GetItem(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return badParam(c, "user_id")
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return badParam(c, "item_id")
	}
	it, err := h.Cart.GetItem(userID, itemID)
	if err != nil {
		return fail(c, "shopcarts.item.get", err)
	}
	return c.JSON(it)
}

type addRequest struct {
	ItemID      *int             `json:"item_id"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
}

// Add creates a line item or adds to the quantity of an existing one.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return badParam(c, "user_id")
	}
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing JSON payload"})
	}
	if req.ItemID == nil || req.Description == nil || req.Price == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input: item_id, description and price are required"})
	}
	desc, ok := validate.Description(*req.Description)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid description"})
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	cart, err := h.Cart.AddItem(userID, *req.ItemID, desc, *req.Price, qty)
	if err != nil {
		return fail(c, "shopcarts.add", err)
	}
	applog.Audit(c, "shopcarts.add", map[string]any{"user_id": userID, "item_id": *req.ItemID, "quantity": qty})
	return c.Status(fiber.StatusCreated).JSON(cart)
}

type addProductRequest struct {
	ProductID     *int             `json:"product_id"`
	Quantity      *int             `json:"quantity"`
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	Stock         *int             `json:"stock"`
	PurchaseLimit *int             `json:"purchase_limit"`
}

// AddProduct is the add-with-limits variant: stock and purchase-limit hints
// ride along in the payload and gate the cumulative quantity.
func (h *CartHandler) AddProduct(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return badParam(c, "user_id")
	}
	var req addProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing JSON payload"})
	}
	if req.ProductID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input: missing product_id"})
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	price := decimal.Zero
	if req.Price != nil {
		price = *req.Price
	}

	cart, err := h.Cart.AddProduct(userID, services.ProductAdd{
		ItemID:        *req.ProductID,
		Description:   req.Name,
		Price:         price,
		Quantity:      qty,
		Stock:         req.Stock,
		PurchaseLimit: req.PurchaseLimit,
	})
	if err != nil {
		return fail(c, "shopcarts.add_product", err)
	}
	applog.Audit(c, "shopcarts.add_product", map[string]any{"user_id": userID, "item_id": *req.ProductID, "quantity": qty})
	return c.Status(fiber.StatusCreated).JSON(cart)
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// UpdateItem replaces a line item's quantity; zero removes it.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return badParam(c, "user_id")
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return badParam(c, "item_id")
	}
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil || req.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing JSON payload"})
	}

	res, err := h.Cart.UpdateItemQuantity(userID, itemID, *req.Quantity)
	if err != nil {
		return fail(c, "shopcarts.item.update", err)
	}
	if res.Removed {
		return c.JSON(fiber.Map{"message": fmt.Sprintf("Item %d removed from cart", itemID)})
	}
	return c.JSON(res.Item)
}

type updateCartRequest struct {
	Items []struct {
		ItemID   *int `json:"item_id"`
		Quantity *int `json:"quantity"`
	} `json:"items"`
}

// UpdateCart applies a bulk list of quantity updates to an existing cart.
func (h *CartHandler) UpdateCart(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return badParam(c, "user_id")
	}
	var req updateCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing JSON payload"})
	}
	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload: 'items' must be a list"})
	}
	changes := make([]services.QuantityChange, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ItemID == nil || it.Quantity == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input: each item needs item_id and quantity"})
		}
		changes = append(changes, services.QuantityChange{ItemID: *it.ItemID, Quantity: *it.Quantity})
	}

	items, err := h.Cart.UpdateCart(userID, changes)
	if err != nil {
		return fail(c, "shopcarts.update", err)
	}
	return c.JSON(items)
}

// DeleteItem removes one line item; absent items are a 404.
func (h *CartHandler) DeleteItem(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return badParam(c, "user_id")
	}
	itemID, ok := h.itemID(c)
	if !ok {
		return badParam(c, "item_id")
	}
	if err := h.Cart.DeleteItem(userID, itemID); err != nil {
		return fail(c, "shopcarts.item.delete", err)
	}
	applog.Audit(c, "shopcarts.item.delete", map[string]any{"user_id": userID, "item_id": itemID})
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteCart drops every item for a user. Deleting an absent cart still
// succeeds; the distinction is logged, not surfaced.
func (h *CartHandler) DeleteCart(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return badParam(c, "user_id")
	}
	existed, err := h.Cart.DeleteCart(userID)
	if err != nil {
		return fail(c, "shopcarts.delete", err)
	}
	applog.Audit(c, "shopcarts.delete", map[string]any{"user_id": userID, "existed": existed})
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout finalizes a cart: totals it, clears it, and reports both.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return badParam(c, "user_id")
	}
	res, err := h.Cart.Checkout(userID)
	if err != nil {
		return fail(c, "shopcarts.checkout", err)
	}
	applog.Audit(c, "shopcarts.checkout", map[string]any{"user_id": userID, "total_price": res.TotalPrice})
	return c.JSON(fiber.Map{"message": res.Message, "total_price": res.TotalPrice})
}
