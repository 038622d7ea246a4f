package handlers

import "github.com/gofiber/fiber/v2"

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK"})
}

// Info describes the API surface for the demo console.
func Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    "Shopcart REST API Service",
		"version": "1.0",
		"paths": fiber.Map{
			"/api/shopcarts": fiber.Map{
				"GET": "Lists all shopcarts grouped by user",
			},
			"/api/shopcarts/{user_id}": fiber.Map{
				"POST":   "Adds an item to a user's shopcart or updates quantity if it already exists",
				"GET":    "Retrieves the shopcart with metadata",
				"PUT":    "Updates the entire shopcart",
				"DELETE": "Deletes the entire shopcart (all items)",
			},
			"/api/shopcarts/{user_id}/items": fiber.Map{
				"POST": "Adds a product to a user's shopcart or updates quantity",
				"GET":  "Lists all items in the user's shopcart (without metadata)",
			},
			"/api/shopcarts/{user_id}/items/{item_id}": fiber.Map{
				"GET":    "Retrieves a specific item from the user's shopcart",
				"PUT":    "Updates a specific item in the shopcart",
				"DELETE": "Removes an item from the shopcart",
			},
			"/api/shopcarts/{user_id}/checkout": fiber.Map{
				"POST": "Finalizes the cart: totals it and clears it",
			},
		},
	})
}
