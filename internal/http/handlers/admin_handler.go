package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"zonagamer/internal/domain"
	applog "zonagamer/internal/log"
	"zonagamer/internal/remote"
	"zonagamer/internal/repos"
	"zonagamer/internal/services"
	"zonagamer/internal/validate"
)

// AdminHandler backs the dashboard: product and user management.
type AdminHandler struct {
	Products   *repos.ProductsCRUD
	Users      *repos.UsersCRUD
	Catalog    *services.CatalogService
	Sessions   services.Sessions
	RemoteWait time.Duration
}

func (h *AdminHandler) idParam(c *fiber.Ctx) (string, bool) {
	return validate.ID(c.Params("id"))
}

// GET /admin/products
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	all, err := h.Products.GetAll(c.UserContext())
	if err != nil {
		return fail(c, "admin.products.list", err)
	}
	return c.JSON(all)
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var in domain.ProductPatch
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if in.Name == nil || *in.Name == "" || in.Price == nil {
		return badRequest(c, "name and price are required")
	}
	if err := validate.Struct(in); err != nil {
		return fail(c, "admin.products.create", err)
	}
	p, err := h.Products.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "admin.products.create", err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := h.idParam(c)
	if !ok {
		return badRequest(c, "invalid product id")
	}
	var patch domain.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(patch); err != nil {
		return fail(c, "admin.products.update", err)
	}
	p, err := h.Products.Update(c.UserContext(), id, patch)
	if err != nil {
		return fail(c, "admin.products.update", err)
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": id})
	return c.JSON(p)
}

// DELETE /admin/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := h.idParam(c)
	if !ok {
		return badRequest(c, "invalid product id")
	}
	if err := h.Products.Delete(c.UserContext(), id); err != nil {
		return fail(c, "admin.products.delete", err)
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /admin/products/stats
func (h *AdminHandler) ProductStats(c *fiber.Ctx) error {
	s, err := h.Products.Stats(c.UserContext())
	if err != nil {
		return fail(c, "admin.products.stats", err)
	}
	return c.JSON(s)
}

// POST /admin/products/reset
func (h *AdminHandler) ResetProducts(c *fiber.Ctx) error {
	all, err := h.Products.Reset(c.UserContext())
	if err != nil {
		return fail(c, "admin.products.reset", err)
	}
	applog.Audit(c, "admin.products.reset", map[string]any{"count": len(all)})
	return c.JSON(all)
}

// GET /admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	tok := h.Sessions.Token(c.Cookies(sidCookie))
	return live(c, h.Catalog.ListUsers(c.UserContext(), tok), h.RemoteWait)
}

// POST /admin/users
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var in domain.NewUser
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(in); err != nil {
		return fail(c, "admin.users.create", err)
	}
	u, err := h.Users.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "admin.users.create", err)
	}
	applog.Audit(c, "admin.users.create", map[string]any{"target_id": u.ID, "role": u.Role})
	return c.Status(fiber.StatusCreated).JSON(u)
}

// PUT /admin/users/:id
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := h.idParam(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var patch domain.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(patch); err != nil {
		return fail(c, "admin.users.update", err)
	}
	u, err := h.Users.Update(c.UserContext(), id, patch)
	if err != nil {
		return fail(c, "admin.users.update", err)
	}
	applog.Audit(c, "admin.users.update", map[string]any{"target_id": id})
	return c.JSON(u)
}

// DELETE /admin/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := h.idParam(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}
	if me, _ := currentUser(c); me.ID == id {
		return badRequest(c, "cannot delete your own account")
	}
	if err := h.Users.Delete(c.UserContext(), id); err != nil {
		return fail(c, "admin.users.delete", err)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"target_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /admin/users/stats
func (h *AdminHandler) UserStats(c *fiber.Ctx) error {
	s, err := h.Users.Stats(c.UserContext())
	if err != nil {
		return fail(c, "admin.users.stats", err)
	}
	return c.JSON(s)
}

// PUT /admin/users/:id/:action with action promote|revoke|activate|deactivate
func (h *AdminHandler) UserAction(c *fiber.Ctx) error {
	id, ok := h.idParam(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}
	action := remote.UserAction(c.Params("action"))
	tok := h.Sessions.Token(c.Cookies(sidCookie))
	if err := h.Catalog.SetUserFlag(c.UserContext(), tok, id, action); err != nil {
		return fail(c, "admin.users.action", err)
	}
	applog.Audit(c, "admin.users."+string(action), map[string]any{"target_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
