package handlers

import (
	"github.com/gofiber/fiber/v2"

	"zonagamer/internal/domain"
	"zonagamer/internal/log"
	"zonagamer/internal/services"
	"zonagamer/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	email, ok := validate.Email(req.Email)
	if !ok || req.Password == "" || len(req.Password) > 72 {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	u, err := h.Auth.Login(c.UserContext(), sid, email, req.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return fail(c, "auth.login", err)
	}
	c.Locals("user_id", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	return c.JSON(u)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req domain.NewUser
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, "auth.register", err)
	}
	u, err := h.Auth.Register(c.UserContext(), sid, req)
	if err != nil {
		return fail(c, "auth.register", err)
	}
	c.Locals("user_id", u.ID)
	log.Audit(c, "auth.register", map[string]any{"email": u.Email})
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Auth.Logout(sid); err != nil {
		return fail(c, "auth.logout", err)
	}
	expireSID(c)
	log.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// Me serves GET /me behind RequireUser.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u, _ := currentUser(c)
	return c.JSON(u)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var patch domain.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := validate.Struct(patch); err != nil {
		return fail(c, "profile.update", err)
	}
	u, err := h.Auth.UpdateProfile(c.UserContext(), c.Cookies(sidCookie), patch)
	if err != nil {
		return fail(c, "profile.update", err)
	}
	log.Audit(c, "profile.update", nil)
	return c.JSON(u)
}
