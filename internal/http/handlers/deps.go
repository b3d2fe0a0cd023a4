package handlers

import (
	"time"

	"zonagamer/internal/remote"
	"zonagamer/internal/repos"
	"zonagamer/internal/services"
)

// Deps is everything the router needs, built once at startup.
type Deps struct {
	Client    *remote.Client
	Products  *repos.ProductsCRUD
	Users     *repos.UsersCRUD
	Sessions  services.Sessions
	Catalog   *services.CatalogService
	Carts     *services.CartService
	Auth      *services.AuthService
	Checkout  *services.CheckoutService
	Inventory *services.InventoryService

	RemoteWait time.Duration
	BodyLimit  int
	// LoginMax attempts per LoginWindow and client address.
	LoginMax    int
	LoginWindow time.Duration
}
