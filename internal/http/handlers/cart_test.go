package handlers_test

import (
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonagamer/internal/domain"
)

func TestCartLifecycle(t *testing.T) {
	ta := newTestApp(t, nil)

	resp, body := ta.do(t, fiber.MethodGet, "/api/v1/cart", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sid := cookie(resp, "sid")
	require.NotEmpty(t, sid)
	assert.Equal(t, "local", resp.Header.Get("X-Data-Source"))
	assert.Empty(t, decode[domain.Cart](t, body).Items)

	resp, body = ta.do(t, fiber.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "7", "quantity": 2}, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	cart := decode[domain.Cart](t, body)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Control DualSense", cart.Items[0].Name)
	assert.InDelta(t, 149.98, cart.TotalPrice, 1e-9)

	_, body = ta.do(t, fiber.MethodPost, "/api/v1/cart/items/7/increment", nil, sid)
	assert.Equal(t, 3, decode[domain.Cart](t, body).TotalItems)

	_, body = ta.do(t, fiber.MethodPost, "/api/v1/cart/items/7/decrement", nil, sid)
	assert.Equal(t, 2, decode[domain.Cart](t, body).TotalItems)

	_, body = ta.do(t, fiber.MethodPut, "/api/v1/cart/items/7", map[string]any{"quantity": 5}, sid)
	assert.Equal(t, 5, decode[domain.Cart](t, body).TotalItems)

	ta.do(t, fiber.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "8"}, sid)
	_, body = ta.do(t, fiber.MethodDelete, "/api/v1/cart/items/7", nil, sid)
	cart = decode[domain.Cart](t, body)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "8", cart.Items[0].ProductID)

	_, body = ta.do(t, fiber.MethodPut, "/api/v1/cart/items/8", map[string]any{"quantity": 0}, sid)
	assert.Empty(t, decode[domain.Cart](t, body).Items)

	ta.do(t, fiber.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "1", "quantity": 500}, sid)
	_, body = ta.do(t, fiber.MethodGet, "/api/v1/cart", nil, sid)
	assert.Equal(t, 50, decode[domain.Cart](t, body).TotalItems)

	resp, body = ta.do(t, fiber.MethodDelete, "/api/v1/cart", nil, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, decode[domain.Cart](t, body).TotalItems)
}

func TestCartsAreScopedPerSession(t *testing.T) {
	ta := newTestApp(t, nil)

	ta.do(t, fiber.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "2"}, "a")
	_, body := ta.do(t, fiber.MethodGet, "/api/v1/cart", nil, "b")
	assert.Empty(t, decode[domain.Cart](t, body).Items)
	_, body = ta.do(t, fiber.MethodGet, "/api/v1/cart", nil, "a")
	assert.Len(t, decode[domain.Cart](t, body).Items, 1)
}

func TestRemoteCartForServerSession(t *testing.T) {
	var added atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"token": serverToken, "user": map[string]any{"id": 42, "email": "neo@example.com"}})
	})
	mux.HandleFunc("POST /api/cart/add", func(w http.ResponseWriter, r *http.Request) {
		added.Store(true)
		writeJSON(w, http.StatusOK, map[string]any{"message": "added"})
	})
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		if !added.Load() {
			writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{
			map[string]any{"productoId": 10, "cantidad": 1, "precio": 20, "subtotal": 20},
		}})
	})
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"productoId": r.PathValue("id"), "nombre": "Game Boy", "precio": 20})
	})
	ta := newTestApp(t, mux)
	ta.login(t, "s1", "neo@example.com")

	resp, body := ta.do(t, fiber.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "10"}, "s1")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.True(t, added.Load())
	cart := decode[domain.Cart](t, body)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Game Boy", cart.Items[0].Name)
	assert.InDelta(t, 20, cart.TotalPrice, 1e-9)
}
