package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "zonagamer/internal/log"
	"zonagamer/internal/services"
	"zonagamer/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	raw := c.Query("q")
	q, ok := validate.Q(raw)
	if !ok {
		if raw != "" {
			applog.Security(c, "search.input.reject", map[string]any{"q_len": len(raw)})
		}
		return badRequest(c, "enter a search term")
	}
	found, src, err := h.Catalog.Search(c.UserContext(), q)
	if err != nil {
		return fail(c, "search", err)
	}
	return source(c, src).JSON(found)
}
