package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"shopcarts/internal/http/handlers"
	"shopcarts/internal/repos"
)

func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	app := fiber.New()
	app.Use(requestid.New())
	handlers.Register(app, handlers.NewDeps(db))
	return app, db
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func addItem(t *testing.T, app *fiber.App, userID string, body string) {
	t.Helper()
	resp, respBody := do(t, app, jsonReq("POST", "/api/shopcarts/"+userID, body))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d body=%s", resp.StatusCode, respBody)
	}
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := do(t, app, httptest.NewRequest("GET", "/health", nil))
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "OK") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}
}

func TestAddAndGetCart(t *testing.T) {
	app, _ := newTestApp(t)

	addItem(t, app, "1", `{"item_id":101,"description":"Wireless Mouse","price":19.99,"quantity":2}`)

	// Adding the same line again sums quantity
	resp, body := do(t, app, jsonReq("POST", "/api/shopcarts/1", `{"item_id":101,"description":"Wireless Mouse","price":19.99,"quantity":3}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", resp.StatusCode, body)
	}
	var cart []struct {
		ItemID   int `json:"item_id"`
		Quantity int `json:"quantity"`
	}
	if err := json.Unmarshal([]byte(body), &cart); err != nil {
		t.Fatalf("bad body %s: %v", body, err)
	}
	if len(cart) != 1 || cart[0].Quantity != 5 {
		t.Fatalf("want one line at quantity 5, got %+v", cart)
	}

	// Cart retrieval comes back grouped under the user
	resp, body = do(t, app, httptest.NewRequest("GET", "/api/shopcarts/1", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, body)
	}
	var grouped []struct {
		UserID int `json:"user_id"`
		Items  []struct {
			ItemID int `json:"item_id"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(body), &grouped); err != nil {
		t.Fatalf("bad body %s: %v", body, err)
	}
	if len(grouped) != 1 || grouped[0].UserID != 1 || len(grouped[0].Items) != 1 {
		t.Fatalf("got %+v", grouped)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	app, _ := newTestApp(t)

	// Missing payload
	resp, _ := do(t, app, jsonReq("POST", "/api/shopcarts/1", ""))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing payload: expected 400, got %d", resp.StatusCode)
	}

	// Zero quantity
	resp, body := do(t, app, jsonReq("POST", "/api/shopcarts/1", `{"item_id":101,"description":"x","price":5,"quantity":0}`))
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "Quantity must be greater than 0.") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}

	// Bad user id in the path
	resp, _ = do(t, app, jsonReq("POST", "/api/shopcarts/abc", `{"item_id":101,"description":"x","price":5}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad user id: expected 400, got %d", resp.StatusCode)
	}
}

func TestAddProductLimits(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := do(t, app, jsonReq("POST", "/api/shopcarts/1/items", `{"product_id":101,"name":"widget","price":5.00,"quantity":3,"purchase_limit":5}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}

	resp, body = do(t, app, jsonReq("POST", "/api/shopcarts/1/items", `{"product_id":101,"name":"widget","price":5.00,"quantity":3,"purchase_limit":5}`))
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "Cannot exceed purchase limit of 5") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}

	resp, body = do(t, app, jsonReq("POST", "/api/shopcarts/2/items", `{"product_id":101,"name":"widget","price":5.00,"quantity":4,"stock":3}`))
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "Only 3 units are available") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}
}

func TestListWithFilters(t *testing.T) {
	app, _ := newTestApp(t)
	addItem(t, app, "1", `{"item_id":101,"description":"cheap","price":20.00,"quantity":2}`)
	addItem(t, app, "2", `{"item_id":102,"description":"mid","price":45.00,"quantity":4}`)
	addItem(t, app, "3", `{"item_id":103,"description":"dear","price":60.00,"quantity":6}`)

	resp, body := do(t, app, httptest.NewRequest("GET", "/api/shopcarts?price=~gt~40", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}
	var carts []struct {
		UserID int `json:"user_id"`
	}
	if err := json.Unmarshal([]byte(body), &carts); err != nil {
		t.Fatalf("bad body %s: %v", body, err)
	}
	if len(carts) != 2 || carts[0].UserID != 2 || carts[1].UserID != 3 {
		t.Fatalf("got %+v", carts)
	}

	// No matches is an empty list, not an error
	resp, body = do(t, app, httptest.NewRequest("GET", "/api/shopcarts?price=~gt~1000", nil))
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(body) != "[]" {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}

	// Malformed filters are a 400 with the parser's message
	resp, body = do(t, app, httptest.NewRequest("GET", "/api/shopcarts?quantity=~invalid~10", nil))
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "Invalid operator") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}

	resp, body = do(t, app, httptest.NewRequest("GET", "/api/shopcarts?price=10&min-price=5", nil))
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "Cannot use both") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}

	resp, body = do(t, app, httptest.NewRequest("GET", "/api/shopcarts?price_range=10,20,30", nil))
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "Invalid range format for price_range") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}
}

func TestGetAbsentCartIs404(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := do(t, app, httptest.NewRequest("GET", "/api/shopcarts/42", nil))
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "was not found") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}
}

func TestUpdateItemToZeroRemoves(t *testing.T) {
	app, _ := newTestApp(t)
	addItem(t, app, "1", `{"item_id":101,"description":"x","price":5.00,"quantity":2}`)

	resp, body := do(t, app, jsonReq("PUT", "/api/shopcarts/1/items/101", `{"quantity":0}`))
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Item 101 removed from cart") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}

	resp, body = do(t, app, httptest.NewRequest("GET", "/api/shopcarts/1/items/101", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("removed item should be 404, got %d body=%s", resp.StatusCode, body)
	}
}

func TestDeleteSemantics(t *testing.T) {
	app, _ := newTestApp(t)
	addItem(t, app, "1", `{"item_id":101,"description":"x","price":5.00,"quantity":2}`)

	// Deleting an absent item is a 404
	resp, body := do(t, app, httptest.NewRequest("DELETE", "/api/shopcarts/1/items/999", nil))
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "was not found in user 1's cart") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}

	resp, _ = do(t, app, httptest.NewRequest("DELETE", "/api/shopcarts/1/items/101", nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	// Deleting a cart is 204 even when already empty (policy: idempotent)
	resp, _ = do(t, app, httptest.NewRequest("DELETE", "/api/shopcarts/1", nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp, _ = do(t, app, httptest.NewRequest("DELETE", "/api/shopcarts/1", nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on repeat delete, got %d", resp.StatusCode)
	}
}

func TestCheckoutFlow(t *testing.T) {
	app, _ := newTestApp(t)
	addItem(t, app, "7", `{"item_id":101,"description":"mouse","price":19.99,"quantity":2}`)
	addItem(t, app, "7", `{"item_id":102,"description":"hub","price":29.99,"quantity":1}`)

	resp, body := do(t, app, jsonReq("POST", "/api/shopcarts/7/checkout", ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "Cart 7 checked out successfully") || !strings.Contains(body, "69.97") {
		t.Fatalf("unexpected body: %s", body)
	}

	// The cart is gone afterwards, so a second checkout is a 404
	resp, body = do(t, app, jsonReq("POST", "/api/shopcarts/7/checkout", ""))
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "No cart found for user 7") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}

	resp, _ = do(t, app, httptest.NewRequest("GET", "/api/shopcarts/7", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("cart should read as 404 after checkout, got %d", resp.StatusCode)
	}
}

func TestCheckoutRateLimited(t *testing.T) {
	app, _ := newTestApp(t)

	// The first ten attempts pass the throttle (and 404 on the empty cart);
	// the eleventh within the window is refused outright.
	for i := 0; i < 10; i++ {
		resp, _ := do(t, app, jsonReq("POST", "/api/shopcarts/1/checkout", ""))
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("attempt %d: expected 404, got %d", i+1, resp.StatusCode)
		}
	}
	resp, body := do(t, app, jsonReq("POST", "/api/shopcarts/1/checkout", ""))
	if resp.StatusCode != http.StatusTooManyRequests || !strings.Contains(body, "rate limit exceeded") {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}

	// Other routes are not throttled by the checkout limiter
	resp, _ = do(t, app, httptest.NewRequest("GET", "/api/shopcarts", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list should be unaffected, got %d", resp.StatusCode)
	}
}

func TestGetItemsStripsTimestamps(t *testing.T) {
	app, _ := newTestApp(t)
	addItem(t, app, "1", `{"item_id":101,"description":"x","price":5.00,"quantity":2}`)

	resp, body := do(t, app, httptest.NewRequest("GET", "/api/shopcarts/1/items", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d body=%s", resp.StatusCode, body)
	}
	if strings.Contains(body, "created_at") || strings.Contains(body, "last_updated") {
		t.Fatalf("timestamps should be stripped: %s", body)
	}
	if !strings.Contains(body, `"item_id":101`) {
		t.Fatalf("item missing from listing: %s", body)
	}
}
