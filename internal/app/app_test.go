package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/kart-storefront/internal/domain/auth"
	"github.com/xenking/kart-storefront/internal/session"
)

// --- Helpers ---

func testConfig(t *testing.T, apiURL string) *Config {
	t.Helper()
	return &Config{
		APIURL:       apiURL,
		ImageBaseURL: "https://cdn.example.com",
		Environment:  EnvProduction,
		Placeholder:  "/placeholder.png",
		PageSize:     2,
		SessionFile:  filepath.Join(t.TempDir(), "session.yaml"),
		HTTP:         HTTPConfig{Timeout: 5 * time.Second, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond},
		Breaker:      BreakerConfig{FailureRatio: 0.5, MinRequests: 5, Timeout: time.Second},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// --- Tests ---

func TestNew_RestoresSession(t *testing.T) {
	gotAuth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth <- r.Header.Get("Authorization")
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"_id": "i1", "quantity": 2, "product": map[string]any{"_id": "p1", "name": "Runner", "price": 10}},
		}})
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	require.NoError(t, session.NewFile(cfg.SessionFile).Save(auth.UserInfo{ID: "u1", Token: "tok"}))

	a, err := New(zaptest.NewLogger(t), nil, cfg)
	require.NoError(t, err)
	require.True(t, a.Store.State().Auth.LoggedIn())

	items, err := a.Shop.Cart(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bearer tok", <-gotAuth)
	assert.Equal(t, items, a.Store.State().Cart.Items)
}

func TestNew_CorruptSession(t *testing.T) {
	cfg := testConfig(t, "https://api.example.com")
	require.NoError(t, os.WriteFile(cfg.SessionFile, []byte("user: ["), session.FileMode))

	a, err := New(zaptest.NewLogger(t), nil, cfg)
	require.NoError(t, err)
	assert.False(t, a.Store.State().Auth.LoggedIn())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil, nil)
	require.Error(t, err)

	_, err = New(nil, nil, testConfig(t, "not a url"))
	require.Error(t, err)
}

func TestNew_Images(t *testing.T) {
	a, err := New(nil, nil, testConfig(t, "https://api.example.com"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/img/a.png", a.Images.ResolveString("/img/a.png"))
	assert.Equal(t, "https://cdn.example.com/x.png", a.Images.ResolveString("http://cdn.example.com/x.png"))
	assert.Equal(t, "/placeholder.png", a.Images.Resolve(nil))
}

func TestCatalogView(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("top"))
		writeJSON(w, []map[string]any{
			{"_id": "p1", "name": "A", "price": 1, "image": "a.png"},
			{"_id": "p2", "name": "B", "price": 2, "image": `["b.png"]`},
			{"_id": "p3", "name": "C", "price": 3},
		})
	}))
	defer srv.Close()

	a, err := New(zaptest.NewLogger(t), nil, testConfig(t, srv.URL))
	require.NoError(t, err)

	v, err := a.CatalogView()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v.Start(ctx)
	defer v.Close()

	vm, err := v.Await(ctx)
	require.NoError(t, err)
	require.NoError(t, vm.Err)
	assert.Equal(t, 1, vm.TotalPages, "the top set is never paged")
	require.Len(t, vm.Items, 3)
	assert.Equal(t, "https://cdn.example.com/a.png", vm.Items[0].ImageURL)
	assert.Equal(t, "https://cdn.example.com/b.png", vm.Items[1].ImageURL)
	assert.Equal(t, "/placeholder.png", vm.Items[2].ImageURL)
}

func TestDoctor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []any{})
	}))
	defer srv.Close()

	a, err := New(zaptest.NewLogger(t), nil, testConfig(t, srv.URL))
	require.NoError(t, err)

	results := a.Doctor().Run(context.Background())
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err, r.Name)
	}

	srv.Close()
	results = a.Doctor().Run(context.Background())
	assert.Error(t, results[0].Err)
}
