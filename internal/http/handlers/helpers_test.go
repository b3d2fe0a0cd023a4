package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"zonagamer/internal/http/handlers"
	applog "zonagamer/internal/log"
	"zonagamer/internal/remote"
	"zonagamer/internal/repos"
	"zonagamer/internal/services"
)

// flakyKV is a memory store whose writes can be switched off.
type flakyKV struct {
	*repos.MemoryKV
	failWrites atomic.Bool
}

func (k *flakyKV) Set(key, value string) error {
	if k.failWrites.Load() {
		return errors.New("sqlite: disk I/O error at /var/lib/zonagamer/zonagamer.db")
	}
	return k.MemoryKV.Set(key, value)
}

type testApp struct {
	app  *fiber.App
	deps *handlers.Deps
	kv   *flakyKV
	logs *observer.ObservedLogs
}

// newTestApp builds the API against mux, or against an unreachable upstream
// when mux is nil. Request logs are captured in logs.
func newTestApp(t *testing.T, mux *http.ServeMux, tune ...func(*handlers.Deps)) *testApp {
	t.Helper()
	var url string
	if mux == nil {
		srv := httptest.NewServer(http.NotFoundHandler())
		url = srv.URL
		srv.Close()
	} else {
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)
		url = srv.URL + "/api"
	}

	core, logs := observer.New(zapcore.DebugLevel)
	applog.Set(zap.New(core))
	t.Cleanup(func() { applog.Set(zap.NewNop()) })

	svcLog := zaptest.NewLogger(t)
	client := remote.New(url, time.Second)
	kv := &flakyKV{MemoryKV: repos.NewMemoryKV()}
	sessions := services.Sessions{KV: kv}
	products := repos.NewProductsCRUD(kv, repos.BuiltinCatalog{})
	users := repos.NewUsersCRUD(kv, repos.WithBcryptCost(bcrypt.MinCost))
	cats := repos.NewCategoryStore(kv, repos.BuiltinCatalog{})

	catalog := services.NewCatalogService(client, products, cats, users, svcLog)
	t.Cleanup(catalog.Close)
	carts := services.NewCartService(client, sessions, products, svcLog)
	auth := services.NewAuthService(client, users, sessions, carts, svcLog)

	d := &handlers.Deps{
		Client:     client,
		Products:   products,
		Users:      users,
		Sessions:   sessions,
		Catalog:    catalog,
		Carts:      carts,
		Auth:       auth,
		Checkout:   services.NewCheckoutService(carts, auth, sessions),
		Inventory:  services.NewInventoryService(catalog),
		RemoteWait: 2 * time.Second,
		BodyLimit:  1 << 20,
	}
	for _, fn := range tune {
		fn(d)
	}
	return &testApp{app: handlers.NewApp(d), deps: d, kv: kv, logs: logs}
}

// do sends body as JSON (raw when it is already []byte) with the given
// session cookie and returns the response and its body.
func (ta *testApp) do(t *testing.T, method, path string, body any, sid string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

// login signs sid in with a seeded account.
func (ta *testApp) login(t *testing.T, sid, email string) {
	t.Helper()
	resp, body := ta.do(t, fiber.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": repos.SeedUserPassword}, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func cookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// entries returns the captured log lines written under action.
func (ta *testApp) entries(action string) []observer.LoggedEntry {
	return ta.logs.FilterMessage(action).All()
}
