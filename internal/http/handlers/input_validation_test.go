package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestValidationBadInputs(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.login(t, "s-admin", "juan@example.com")

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"search without term", fiber.MethodGet, "/api/v1/products/search", nil, http.StatusBadRequest},
		{"search markup", fiber.MethodGet, "/api/v1/products/search?q=" + url.QueryEscape("<script>"), nil, http.StatusBadRequest},
		{"search too long", fiber.MethodGet, "/api/v1/products/search?q=" + strings.Repeat("a", 51), nil, http.StatusBadRequest},
		{"search one rune", fiber.MethodGet, "/api/v1/products/search?q=z", nil, http.StatusBadRequest},
		{"product id charset", fiber.MethodGet, "/api/v1/products/" + url.PathEscape("1;drop"), nil, http.StatusBadRequest},
		{"category id charset", fiber.MethodGet, "/api/v1/products?category=" + url.QueryEscape("c1,<b>"), nil, http.StatusBadRequest},
		{"availability without id", fiber.MethodGet, "/api/v1/availability", nil, http.StatusBadRequest},
		{"cart add without product", fiber.MethodPost, "/api/v1/cart/items", map[string]any{"quantity": 1}, http.StatusBadRequest},
		{"cart add malformed json", fiber.MethodPost, "/api/v1/cart/items", []byte(`{"productId":`), http.StatusBadRequest},
		{"cart add negative price", fiber.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "1", "price": -5}, http.StatusBadRequest},
		{"register bad email", fiber.MethodPost, "/api/v1/auth/register", map[string]any{"name": "X", "email": "nope", "password": "abc"}, http.StatusBadRequest},
		{"register short password", fiber.MethodPost, "/api/v1/auth/register", map[string]any{"name": "X", "email": "x@example.com", "password": "a"}, http.StatusBadRequest},
		{"login bad email", fiber.MethodPost, "/api/v1/auth/login", map[string]any{"email": "not-an-email", "password": "x"}, http.StatusUnauthorized},
		{"admin product negative stock", fiber.MethodPost, "/api/v1/admin/products", map[string]any{"name": "X", "price": 1, "stock": -1}, http.StatusBadRequest},
		{"admin user bad role", fiber.MethodPut, "/api/v1/admin/users/u2", map[string]any{"role": "root"}, http.StatusBadRequest},
		{"address too long", fiber.MethodPost, "/api/v1/orders", map[string]any{"address": strings.Repeat("x", 201)}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := ta.do(t, tc.method, tc.path, tc.body, "s-admin")
			assert.Equal(t, tc.want, resp.StatusCode, string(body))
			assert.Contains(t, string(body), `"error"`)
		})
	}
}

func TestSearchRejectionIsLogged(t *testing.T) {
	ta := newTestApp(t, nil)

	ta.do(t, fiber.MethodGet, "/api/v1/products/search?q="+url.QueryEscape("' OR 1=1 --"), nil, "")
	logged := ta.entries("search.input.reject")
	if assert.Len(t, logged, 1) {
		assert.Equal(t, "security", logged[0].ContextMap()["kind"])
	}
}
