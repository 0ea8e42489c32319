package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmesh/storefront/internal/accounts"
	"github.com/shopmesh/storefront/internal/catalog"
	"github.com/shopmesh/storefront/internal/kv"
	"github.com/shopmesh/storefront/internal/middleware"
	"github.com/shopmesh/storefront/internal/proxy"
	"github.com/shopmesh/storefront/internal/reviews"
)

// newTestServer wires the full router over in-memory storage with token
// verification disabled, the way local development runs.
func newTestServer(t *testing.T) chi.Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := kv.NewMemoryStore()
	reviewRepo := reviews.NewMemoryRepository()
	profileRepo := reviews.NewMemoryProfileRepository()

	authenticator, err := middleware.NewAuthenticator(context.Background(), "", logger)
	require.NoError(t, err)

	return NewRouter(Deps{
		Logger:   logger,
		Catalog:  catalog.NewHandler(catalog.NewService(store, nil, logger), logger),
		Accounts: accounts.NewHandler(accounts.NewService(store, nil, logger), logger),
		Reviews:  reviews.NewHandler(reviews.NewService(reviewRepo, nil, logger), logger),
		Auth: &proxy.AuthProxy{
			BaseURL:  "http://127.0.0.1:1",
			Profiles: profileRepo,
			Logger:   logger,
		},
		Payments: &proxy.PaymentProxy{APIURL: "http://127.0.0.1:1", Logger: logger},
		Images:   &proxy.ImageProxy{Logger: logger},
		Avatars: &proxy.AvatarProxy{
			BaseURL:  "http://127.0.0.1:1",
			Bucket:   "avatars",
			Profiles: profileRepo,
			Logger:   logger,
		},
		Authenticator: authenticator,
	})
}

func do(t *testing.T, router chi.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	decoded := make(map[string]any)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func TestRouter_Health(t *testing.T) {
	router := newTestServer(t)

	rec, body := do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_UnknownRouteEnvelope(t *testing.T) {
	router := newTestServer(t)

	rec, body := do(t, router, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestRouter_MethodNotAllowedEnvelope(t *testing.T) {
	router := newTestServer(t)

	rec, body := do(t, router, http.MethodPatch, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestRouter_ProductLifecycle(t *testing.T) {
	router := newTestServer(t)

	rec, body := do(t, router, http.MethodPost, "/products",
		`{"name":"Smart Watch","price":129.5,"currency":"usd","category":"wearables"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	product := body["product"].(map[string]any)
	id := product["id"].(string)
	require.NotEmpty(t, id)

	rec, body = do(t, router, http.MethodPut, "/products/"+id, `{"price":99.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := body["product"].(map[string]any)
	assert.Equal(t, 99.5, updated["price"])
	assert.Equal(t, "Smart Watch", updated["name"])

	rec, body = do(t, router, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["products"].([]any), 1)

	rec, _ = do(t, router, http.MethodDelete, "/products/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, router, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["products"])
}

func TestRouter_ReviewFlow(t *testing.T) {
	router := newTestServer(t)

	rec, body := do(t, router, http.MethodPost, "/products/hp-100/reviews",
		`{"user_id":"user-1","rating":5,"comment":"great"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	review := body["review"].(map[string]any)
	assert.Equal(t, "hp-100", review["product_id"])

	// same user, same product: conflict
	rec, _ = do(t, router, http.MethodPost, "/products/hp-100/reviews",
		`{"user_id":"user-1","rating":1,"comment":"changed my mind"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = do(t, router, http.MethodGet, "/products/hp-100/reviews/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, float64(5), body["average_rating"])
}

func TestRouter_UserRecordFlow(t *testing.T) {
	router := newTestServer(t)

	// an unknown user reads as the default shape
	rec, body := do(t, router, http.MethodGet, "/users/ada@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Empty(t, user["cart"])

	rec, _ = do(t, router, http.MethodPut, "/users/ada@example.com",
		`{"cart":[{"product_id":"hp-100","name":"Headphones","price":100,"quantity":2}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, router, http.MethodPost, "/users/ada@example.com/orders", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := body["order"].(map[string]any)
	assert.Equal(t, float64(200), order["total"])
	assert.Equal(t, "usd", order["currency"])

	rec, body = do(t, router, http.MethodGet, "/users/ada@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	user = body["user"].(map[string]any)
	assert.Empty(t, user["cart"])
	assert.Len(t, user["orders"].([]any), 1)
}

func TestRouter_InvalidEmailRejected(t *testing.T) {
	router := newTestServer(t)

	rec, body := do(t, router, http.MethodGet, "/users/not-an-email", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestRouter_PanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logger))
	r.Get("/boom", func(w http.ResponseWriter, req *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}
