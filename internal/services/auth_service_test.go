package services_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
	"zonagamer/internal/remote"
	"zonagamer/internal/repos"
	"zonagamer/internal/services"
)

func TestLogin_LocalFallbackWhenRemoteDown(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	u, err := f.auth.Login(ctx, "s1", "juan@example.com", repos.SeedUserPassword)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, remote.LocalToken, f.sessions.Token("s1"))
	assert.True(t, f.auth.IsAdmin(ctx, "s1"))

	_, err = f.auth.Login(ctx, "s2", "juan@example.com", "nope")
	assert.ErrorIs(t, err, domain.ErrBadCreds)
	_, err = f.auth.Login(ctx, "s3", "carlos@example.com", repos.SeedUserPassword)
	assert.ErrorIs(t, err, domain.ErrBadCreds)
	assert.Empty(t, f.sessions.Token("s3"))
}

func TestLogin_RemoteRejectionDoesNotFallBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]any{"message": "Credenciales inválidas"})
	})
	f := newFixture(t, mux)

	_, err := f.auth.Login(context.Background(), "s1", "maria@example.com", repos.SeedUserPassword)
	assert.ErrorIs(t, err, domain.ErrBadCreds)
	assert.Empty(t, f.sessions.Token("s1"))
}

func TestLogin_RemoteSuccessMergesLocalCart(t *testing.T) {
	var added atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"token": serverToken, "user": map[string]any{"id": 42, "name": "Ana", "email": "ana@zg.com"}})
	})
	mux.HandleFunc("POST /api/cart/add", func(w http.ResponseWriter, r *http.Request) {
		added.Add(1)
		writeJSON(w, 200, map[string]any{"items": []any{}})
	})
	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"id": 42, "nombre": "Ana", "apellido": "Diaz", "email": "ana@zg.com"})
	})
	f := newFixture(t, mux)
	ctx := context.Background()

	_, err := f.carts.Add(ctx, "s1", "1", 1, domain.ItemDetails{})
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, "s1", "2", 2, domain.ItemDetails{})
	require.NoError(t, err)

	u, err := f.auth.Login(ctx, "s1", "ana@zg.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "42", u.ID)
	assert.Equal(t, serverToken, f.sessions.Token("s1"))
	assert.Equal(t, int32(2), added.Load())
	assert.Empty(t, repos.NewLocalCart(f.sessions.Store("s1")).Get().Items)

	me, ok := f.auth.CurrentUser(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, "Ana Diaz", me.Name)
}

func TestRegister_LocalAndProfile(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, "s1", domain.NewUser{Name: "Lucia", Email: "lucia@zg.com", Password: "abc123", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)

	cur, ok := f.auth.CurrentUser(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, u.ID, cur.ID)

	addr := "Calle 1"
	role := domain.RoleAdmin
	upd, err := f.auth.UpdateProfile(ctx, "s1", domain.UserPatch{Address: &addr, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Calle 1", upd.Address)
	assert.Equal(t, domain.RoleUser, upd.Role)

	require.NoError(t, f.auth.Logout("s1"))
	_, ok = f.auth.CurrentUser(ctx, "s1")
	assert.False(t, ok)
}

func TestCurrentUser_TokenClaimsFallbackIsNormalized(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.sessions.Store("s1").Set(services.AuthTokenKey, serverToken))

	u, ok := f.auth.CurrentUser(context.Background(), "s1")
	require.True(t, ok)
	assert.Equal(t, "42", u.ID)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, normalize.DefaultUserName, u.Name)
	assert.Equal(t, normalize.DefaultUserEmail, u.Email)
	assert.Equal(t, domain.StatusActive, u.Status)
	assert.False(t, u.IsAdmin())
}
