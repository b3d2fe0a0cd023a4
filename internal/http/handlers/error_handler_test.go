package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonagamer/internal/repos"
)

func TestErrorHandlerFriendlyMessage(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.kv.failWrites.Store(true)

	resp, body := ta.do(t, fiber.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "1"}, "s1")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "Something went wrong")
	assert.NotContains(t, string(body), "sqlite")
	assert.NotContains(t, string(body), "/var/lib")

	logged := ta.entries("cart.add.fail")
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0].ContextMap()["error"], "disk I/O")
}

func TestCorruptOrderLogIsNotLeaked(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.login(t, "s1", "maria@example.com")
	require.NoError(t, repos.Scoped(ta.kv, "s1").Set(repos.OrdersKey, "{not json"))

	resp, body := ta.do(t, fiber.MethodGet, "/api/v1/orders", nil, "s1")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "corrupt")
	assert.NotContains(t, string(body), repos.OrdersKey)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	ta := newTestApp(t, nil)

	resp, body := ta.do(t, fiber.MethodGet, "/api/v1/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"not found"}`, string(body))
}
