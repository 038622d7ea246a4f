package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"

	applog "shopcarts/internal/log"
	"shopcarts/internal/repos"
	"shopcarts/internal/services"
)

type Deps struct {
	CartHandler *CartHandler
}

func NewDeps(db *sqlx.DB) *Deps {
	cartRepo := repos.NewCartRepo(db)
	cartSvc := services.NewCartService(cartRepo)

	return &Deps{
		CartHandler: &CartHandler{Cart: cartSvc},
	}
}

// Register wires the JSON API onto the app. The demo console route stays in
// main because it needs the template engine.
func Register(app fiber.Router, d *Deps) {
	app.Get("/health", Health)
	app.Get("/info", Info)

	// Checkout is throttled harder than the rest of the API
	checkoutLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|checkout"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Warn(c, "rate.checkout.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})

	api := app.Group("/api")
	api.Get("/shopcarts", d.CartHandler.List)
	api.Get("/shopcarts/:user_id", d.CartHandler.GetCart)
	api.Post("/shopcarts/:user_id", d.CartHandler.Add)
	api.Put("/shopcarts/:user_id", d.CartHandler.UpdateCart)
	api.Delete("/shopcarts/:user_id", d.CartHandler.DeleteCart)
	api.Get("/shopcarts/:user_id/items", d.CartHandler.GetItems)
	api.Post("/shopcarts/:user_id/items", d.CartHandler.AddProduct)
	api.Get("/shopcarts/:user_id/items/:item_id", d.CartHandler.GetItem)
	api.Put("/shopcarts/:user_id/items/:item_id", d.CartHandler.UpdateItem)
	api.Delete("/shopcarts/:user_id/items/:item_id", d.CartHandler.DeleteItem)
	api.Post("/shopcarts/:user_id/checkout", checkoutLimiter, d.CartHandler.Checkout)
}
