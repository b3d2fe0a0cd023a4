package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
	"zonagamer/internal/remote"
)

func upstream(t *testing.T, mux *http.ServeMux) *remote.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return remote.New(srv.URL+"/api", 2*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestIsServerToken(t *testing.T) {
	assert.True(t, remote.IsServerToken("aaa.bbb.ccc"))
	assert.True(t, remote.IsServerToken("a-b_c.d-e.f_g"))
	assert.False(t, remote.IsServerToken(""))
	assert.False(t, remote.IsServerToken(remote.LocalToken))
	assert.False(t, remote.IsServerToken("aaa.bbb"))
	assert.False(t, remote.IsServerToken("aaa.b b.ccc"))
}

func TestProducts_NormalizesPagedSpanishPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"content": []any{
			map[string]any{"productoId": 7, "nombreProducto": "Zelda", "precio": "59.9", "existencias": 3, "categoria": map[string]any{"categoriaId": "c2"}},
		}})
	})
	c := upstream(t, mux)

	got, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0].ID)
	assert.Equal(t, "Zelda", got[0].Name)
	assert.InDelta(t, 59.9, got[0].Price, 1e-9)
	assert.Equal(t, 3, got[0].Stock)
	require.NotNil(t, got[0].CategoryID)
	assert.Equal(t, "c2", *got[0].CategoryID)
}

func TestBearerOnlyForServerTokens(t *testing.T) {
	var seen atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("Authorization"))
		writeJSON(w, 200, map[string]any{"id": "u9", "nombre": "Ana", "apellido": "Diaz", "rol": "ROLE_ADMIN", "activo": true})
	})
	c := upstream(t, mux)
	ctx := context.Background()

	_, err := c.WithToken(remote.LocalToken).Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", seen.Load())

	tok := signed(t, jwt.MapClaims{"sub": "u9"})
	me, err := c.WithToken(tok).Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+tok, seen.Load())
	assert.Equal(t, "Ana Diaz", me.Name)
	assert.True(t, me.IsAdmin())
	assert.True(t, me.Active)
}

func TestAPIErrorMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, map[string]any{"message": "Producto no encontrado"})
	})
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		_, _ = w.Write([]byte("<html>boom</html>"))
	})
	c := upstream(t, mux)
	ctx := context.Background()

	_, err := c.Product(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	var apiErr *remote.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "Producto no encontrado", apiErr.Message)

	_, err = c.Users(ctx)
	assert.Equal(t, 500, remote.StatusOf(err))
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestTransportFailureIsRemoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := remote.New(srv.URL, 500*time.Millisecond)

	_, err := c.Products(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Zero(t, remote.StatusOf(err))
}

func TestCartEndpoints(t *testing.T) {
	var lastQty atomic.Value
	var addBody atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart/add", func(w http.ResponseWriter, r *http.Request) {
		var b map[string]any
		_ = json.NewDecoder(r.Body).Decode(&b)
		addBody.Store(b)
		writeJSON(w, 200, map[string]any{"items": []any{map[string]any{"productId": "p1", "quantity": 2}}, "totalPrice": 999})
	})
	mux.HandleFunc("PUT /api/cart/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		lastQty.Store(r.URL.Query().Get("quantity"))
		writeJSON(w, 200, map[string]any{"detalles": []any{map[string]any{"productoId": r.PathValue("id"), "cantidad": 5}}})
	})
	mux.HandleFunc("DELETE /api/cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := upstream(t, mux)
	ctx := context.Background()

	items, err := c.AddToCart(ctx, "p1", 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Nil(t, items[0].Price)
	assert.Equal(t, map[string]any{"productId": "p1", "quantity": float64(2)}, addBody.Load())

	items, err = c.UpdateCartItem(ctx, "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, "5", lastQty.Load())
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)

	assert.NoError(t, c.ClearCart(ctx))
}

func TestCategories_ComposesTreeAndStopsOnCycles(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/categorias/root", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []any{map[string]any{"categoriaId": "a", "nombreCategoria": "Consolas"}})
	})
	mux.HandleFunc("GET /api/categorias/{id}/hija", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.PathValue("id") {
		case "a":
			writeJSON(w, 200, []any{map[string]any{"categoriaId": "b", "nombreCategoria": "Retro"}})
		case "b":
			// points back at its own ancestor
			writeJSON(w, 200, []any{map[string]any{"categoriaId": "a", "nombreCategoria": "Consolas"}})
		default:
			writeJSON(w, 200, []any{})
		}
	})
	c := upstream(t, mux)

	tree, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Consolas", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Retro", tree[0].Children[0].Name)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Empty(t, tree[0].Children[0].Children[0].Children)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLogin_ReadsTokenAndFlattenedUser(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "42", "email": "ana@zg.com", "rol": "ADMIN"})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"token": tok, "nombre": "Ana", "apellido": "Diaz"})
	})
	c := upstream(t, mux)

	s, err := c.Login(context.Background(), "ana@zg.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, tok, s.Token)
	assert.Equal(t, "42", s.User.ID)
	assert.Equal(t, "Ana Diaz", s.User.Name)
	assert.Equal(t, "ana@zg.com", s.User.Email)
	assert.True(t, s.User.IsAdmin())
}

func TestLogin_RejectedCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]any{"message": "Credenciales inválidas"})
	})
	c := upstream(t, mux)

	_, err := c.Login(context.Background(), "x@y.z", "bad")
	assert.Equal(t, 401, remote.StatusOf(err))
}

func TestClaims(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "7", "name": "Luis", "role": "user"})
	c, err := remote.Claims(tok)
	require.NoError(t, err)
	assert.Equal(t, remote.TokenClaims{Subject: "7", Name: "Luis", Role: domain.RoleUser}, c)

	_, err = remote.Claims(remote.LocalToken)
	assert.Error(t, err)
}

func TestClaimsUser(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "9", "rol": "ADMINISTRADOR"})
	c, err := remote.Claims(tok)
	require.NoError(t, err)
	u := c.User()
	assert.Equal(t, "9", u.ID)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.Equal(t, normalize.DefaultUserName, u.Name)
	assert.Equal(t, normalize.DefaultUserEmail, u.Email)
	assert.True(t, u.Active)

	assert.Equal(t, domain.RoleUser, remote.TokenClaims{Subject: "3"}.User().Role)
}
