package handlers

import (
	"github.com/gofiber/fiber/v2"

	"zonagamer/internal/domain"
	applog "zonagamer/internal/log"
	"zonagamer/internal/services"
	"zonagamer/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type addItemReq struct {
	ProductID   string   `json:"productId"`
	Quantity    int      `json:"quantity"`
	Name        string   `json:"name" validate:"max=120"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	ImageURL    string   `json:"imageUrl" validate:"max=500"`
	Description string   `json:"description" validate:"max=2000"`
}

type setQtyReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cart, src, err := h.Cart.Get(c.UserContext(), sid)
	if err != nil {
		return fail(c, "cart.view", err)
	}
	return source(c, src).JSON(cart)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req addItemReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	productID, ok := validate.ID(req.ProductID)
	if !ok {
		return badRequest(c, "missing productId")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, "cart.add", err)
	}
	qty := validate.Qty(req.Quantity)
	details := domain.ItemDetails{Name: req.Name, Price: req.Price, ImageURL: req.ImageURL, Description: req.Description}
	cart, err := h.Cart.Add(c.UserContext(), sid, productID, qty, details)
	if err != nil {
		return fail(c, "cart.add", err)
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": productID, "qty": qty})
	return c.JSON(cart)
}

func (h *CartHandler) Increment(c *fiber.Ctx) error {
	return h.mutate(c, "cart.increment", func(sid, id string) (domain.Cart, error) {
		return h.Cart.Increment(c.UserContext(), sid, id)
	})
}

func (h *CartHandler) Decrement(c *fiber.Ctx) error {
	return h.mutate(c, "cart.decrement", func(sid, id string) (domain.Cart, error) {
		return h.Cart.Decrement(c.UserContext(), sid, id)
	})
}

// SetQuantity serves PUT /cart/items/:id; a quantity of zero removes the line.
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	var req setQtyReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Quantity = min(req.Quantity, validate.MaxQty)
	return h.mutate(c, "cart.update", func(sid, id string) (domain.Cart, error) {
		return h.Cart.SetQuantity(c.UserContext(), sid, id, req.Quantity)
	})
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	return h.mutate(c, "cart.remove", func(sid, id string) (domain.Cart, error) {
		return h.Cart.Remove(c.UserContext(), sid, id)
	})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cart, err := h.Cart.Clear(c.UserContext(), sid)
	if err != nil {
		return fail(c, "cart.clear", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) mutate(c *fiber.Ctx, action string, fn func(sid, productID string) (domain.Cart, error)) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}
	cart, err := fn(sid, id)
	if err != nil {
		return fail(c, action, err)
	}
	return c.JSON(cart)
}
