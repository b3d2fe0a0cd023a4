package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "zonagamer/internal/log"
)

// NewApp builds the JSON API under /api/v1.
func NewApp(d *Deps) *fiber.App {
	bodyLimit := d.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}
	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
				code = fe.Code
				return c.Status(code).JSON(fiber.Map{"error": fe.Message})
			}
			applog.Error(c, "server.error", err, nil)
			return c.Status(code).JSON(fiber.Map{"error": friendlyError})
		},
	})

	app.Use(requestid.New())
	app.Use(applog.Access())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	products := &ProductHandler{Catalog: d.Catalog, RemoteWait: d.RemoteWait}
	categories := &CategoryHandler{Catalog: d.Catalog, RemoteWait: d.RemoteWait}
	search := &SearchHandler{Catalog: d.Catalog}
	inventory := &InventoryHandler{Inv: d.Inventory}
	cart := &CartHandler{Cart: d.Carts}
	auth := &AuthHandler{Auth: d.Auth}
	orders := &OrderHandler{Checkout: d.Checkout}
	admin := &AdminHandler{Products: d.Products, Users: d.Users, Catalog: d.Catalog, Sessions: d.Sessions, RemoteWait: d.RemoteWait}

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		upstream := d.Client.Health(c.UserContext()) == nil
		return c.JSON(fiber.Map{"ok": true, "remote": upstream})
	})

	// Catalog
	api.Get("/products", products.List)
	api.Get("/products/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), search.Search)
	api.Get("/products/:id", products.Detail)
	api.Get("/categories", categories.Tree)
	api.Get("/availability", limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), inventory.Check)

	// Cart
	api.Get("/cart", cart.View)
	api.Post("/cart/items", cart.Add)
	api.Post("/cart/items/:id/increment", cart.Increment)
	api.Post("/cart/items/:id/decrement", cart.Decrement)
	api.Put("/cart/items/:id", cart.SetQuantity)
	api.Delete("/cart/items/:id", cart.Remove)
	api.Delete("/cart", cart.Clear)

	// Auth (login throttled)
	loginMax, loginWindow := d.LoginMax, d.LoginWindow
	if loginMax <= 0 {
		loginMax = 5
	}
	if loginWindow <= 0 {
		loginWindow = 10 * time.Minute
	}
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        loginMax,
		Expiration: loginWindow,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), auth.Login)
	api.Post("/auth/register", auth.Register)
	api.Post("/auth/logout", auth.Logout)

	signedIn := RequireUser(d.Auth)
	api.Get("/me", signedIn, auth.Me)
	api.Put("/me", signedIn, auth.UpdateProfile)
	api.Post("/orders", signedIn, orders.Place)
	api.Get("/orders", signedIn, orders.History)

	// Admin
	adm := api.Group("/admin", RequireAdmin(d.Auth))
	adm.Get("/products", admin.ListProducts)
	adm.Post("/products", admin.CreateProduct)
	adm.Get("/products/stats", admin.ProductStats)
	adm.Post("/products/reset", admin.ResetProducts)
	adm.Put("/products/:id", admin.UpdateProduct)
	adm.Delete("/products/:id", admin.DeleteProduct)
	adm.Get("/users", admin.ListUsers)
	adm.Post("/users", admin.CreateUser)
	adm.Get("/users/stats", admin.UserStats)
	adm.Put("/users/:id/:action", admin.UserAction)
	adm.Put("/users/:id", admin.UpdateUser)
	adm.Delete("/users/:id", admin.DeleteUser)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}
