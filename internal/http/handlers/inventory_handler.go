package handlers

import (
	"github.com/gofiber/fiber/v2"

	"zonagamer/internal/services"
	"zonagamer/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		return badRequest(c, "missing productId")
	}
	avail, err := h.Inv.Availability(c.UserContext(), productID)
	if err != nil {
		return fail(c, "availability", err)
	}
	return c.JSON(avail)
}
