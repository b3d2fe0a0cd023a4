package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "zonagamer/internal/log"
	"zonagamer/internal/services"
)

type OrderHandler struct {
	Checkout *services.CheckoutService
}

type placeReq struct {
	Address string `json:"address"`
}

// Place serves POST /orders behind RequireUser.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := c.Cookies(sidCookie)
	var req placeReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if len(req.Address) > 200 {
		return badRequest(c, "address too long")
	}
	order, err := h.Checkout.Place(c.UserContext(), sid, req.Address)
	if err != nil {
		return fail(c, "order.place", err)
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": order.ID, "total": order.TotalPrice, "items": order.TotalItems})
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Checkout.History(c.Cookies(sidCookie))
	if err != nil {
		return fail(c, "order.history", err)
	}
	return c.JSON(orders)
}
