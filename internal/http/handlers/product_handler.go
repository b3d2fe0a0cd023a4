package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"zonagamer/internal/services"
	"zonagamer/internal/validate"
)

type ProductHandler struct {
	Catalog    *services.CatalogService
	RemoteWait time.Duration
}

// List serves GET /products?category=a,b&featured=1.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var f services.ProductFilter
	for _, id := range strings.Split(c.Query("category"), ",") {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if _, ok := validate.ID(id); !ok {
			return badRequest(c, "invalid category id")
		}
		f.CategoryIDs = append(f.CategoryIDs, id)
	}
	f.FeaturedOnly = c.QueryBool("featured", false)
	return live(c, h.Catalog.ListProducts(c.UserContext(), f), h.RemoteWait)
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}
	p, src, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, "product.detail", err)
	}
	return source(c, src).JSON(p)
}
