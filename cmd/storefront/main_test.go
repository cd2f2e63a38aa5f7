package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/kart-storefront/internal/checkout"
	"github.com/xenking/kart-storefront/internal/domain/auth"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

// --- Helpers ---

type env struct {
	t       *testing.T
	url     string
	session string
}

func newEnv(t *testing.T, h http.Handler) *env {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &env{t: t, url: srv.URL, session: filepath.Join(t.TempDir(), "session.yaml")}
}

// run executes one command on a fresh root, like a separate process would.
func (e *env) run(args ...string) (string, error) {
	e.t.Helper()
	root := newRootCmd(zaptest.NewLogger(e.t), nil)
	root.SetArgs(append([]string{"--api-url", e.url, "--session-file", e.session}, args...))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// --- Tests ---

func TestImage(t *testing.T) {
	e := newEnv(t, http.NotFoundHandler())

	out, err := e.run("image", `["/img/a.png","/img/b.png"]`)
	require.NoError(t, err)
	assert.Equal(t, e.url+"/img/a.png\n", out)

	out, err = e.run("image", "")
	require.NoError(t, err)
	assert.Equal(t, "/placeholder.png\n", out)
}

func TestProducts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("top") == "true" {
			writeJSON(w, []map[string]any{{"_id": "p1", "name": "Curated", "price": 10}})
			return
		}
		assert.Equal(t, "shoe", q.Get("keyword"))
		assert.Equal(t, "0-500", q.Get("priceRange"))
		assert.Equal(t, "2", q.Get("pageNumber"))
		writeJSON(w, map[string]any{
			"products": []map[string]any{{"_id": "p9", "name": "Trail Shoe", "price": 450, "overall_rating": 4.5}},
			"page":     2,
			"pages":    3,
			"total":    31,
		})
	})
	e := newEnv(t, mux)

	out, err := e.run("products")
	require.NoError(t, err)
	assert.Contains(t, out, "Top products")
	assert.Contains(t, out, "Curated")

	out, err = e.run("products", "--search", "shoe", "--price", "0-500", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Trail Shoe")
	assert.Contains(t, out, "₹450.00")
	assert.Contains(t, out, "Page 2 of 3, 31 products")

	_, err = e.run("products", "--price", "cheap")
	require.Error(t, err)
}

func TestSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"_id": "u1", "name": "Ann", "email": "ann@x.com", "role": auth.RoleAdmin, "token": "tok"})
	})
	e := newEnv(t, mux)

	out, err := e.run("whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in.\n", out)

	out, err = e.run("login", "--email", "ann@x.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ann <ann@x.com>.")

	out, err = e.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann <ann@x.com>")
	assert.Contains(t, out, "admin")

	_, err = e.run("logout")
	require.NoError(t, err)
	out, err = e.run("whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in.\n", out)
}

func TestGuardedCommands(t *testing.T) {
	e := newEnv(t, http.NotFoundHandler())

	_, err := e.run("cart")
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)

	_, err = e.run("admin", "dashboard")
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestCheckout_Validation(t *testing.T) {
	e := newEnv(t, http.NotFoundHandler())

	_, err := e.run("checkout", "--name", "Ann", "--phone", "1", "--address", "1 Road",
		"--card", "4242", "--expiry", "12/30", "--cvc", "123")
	require.ErrorIs(t, err, checkout.ErrInvalidCard)

	_, err = e.run("checkout", "--card", "4242424242424242", "--expiry", "12/30", "--cvc", "123")
	require.ErrorIs(t, err, checkout.ErrMissingShipping)
}

func TestDoctor(t *testing.T) {
	e := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []any{})
	}))

	out, err := e.run("doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "api")
	assert.Contains(t, out, "session")

	down := newEnv(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	_, err = down.run("doctor")
	require.ErrorIs(t, err, errUnhealthy)
}

func TestAdminCatalogManagement(t *testing.T) {
	var (
		mu      sync.Mutex
		catBody map[string]string
		form    url.Values
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"_id": "a1", "name": "Root", "email": "root@x.com", "role": auth.RoleAdmin, "token": "tok"})
	})
	mux.HandleFunc("GET /api/admin/categories", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]any{{"_id": "c1", "name": "Shoes", "description": "Feet"}})
	})
	mux.HandleFunc("PUT /api/admin/categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		catBody = body
		mu.Unlock()
		writeJSON(w, map[string]any{"_id": r.PathValue("id"), "name": body["name"], "description": body["description"]})
	})
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"_id": "p1", "name": "Runner", "price": 450, "stock": 3, "category": "c1", "description": "Fast"})
	})
	mux.HandleFunc("PUT /api/admin/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		mu.Lock()
		form = r.MultipartForm.Value
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	e := newEnv(t, mux)

	_, err := e.run("admin", "categories")
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)

	_, err = e.run("login", "--email", "root@x.com", "--password", "secret")
	require.NoError(t, err)

	out, err := e.run("admin", "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Shoes")

	out, err = e.run("admin", "categories", "edit", "c1", "--name", "Sneakers")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated category Sneakers.")
	mu.Lock()
	assert.Equal(t, map[string]string{"name": "Sneakers", "description": "Feet"}, catBody)
	mu.Unlock()

	_, err = e.run("admin", "categories", "add")
	require.ErrorIs(t, err, product.ErrMissingName)

	_, err = e.run("admin", "products", "edit", "p1", "--stock", "9")
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, []string{"Runner"}, form["name"])
	assert.Equal(t, []string{"450"}, form["retail_price"])
	assert.Equal(t, []string{"9"}, form["stock"])
	assert.Equal(t, []string{"c1"}, form["categoryId"])
	mu.Unlock()

	_, err = e.run("admin", "products", "edit", "p1", "--price", "cheap")
	require.Error(t, err)
}
