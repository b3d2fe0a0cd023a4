package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"zonagamer/internal/services"
)

type CategoryHandler struct {
	Catalog    *services.CatalogService
	RemoteWait time.Duration
}

func (h *CategoryHandler) Tree(c *fiber.Ctx) error {
	return live(c, h.Catalog.ListCategories(c.UserContext()), h.RemoteWait)
}
