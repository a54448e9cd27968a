package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/jubairbh/storefront/internal/auth"
	"github.com/jubairbh/storefront/internal/events"
	"github.com/jubairbh/storefront/internal/handlers"
	"github.com/jubairbh/storefront/internal/models"
	"github.com/jubairbh/storefront/internal/store"
)

type testEnv struct {
	Store *store.Store
	Gate  *auth.Gate
	E     *echo.Echo
}

func newTestEnv(t *testing.T, timeout time.Duration) *testEnv {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	gate := &auth.Gate{DB: s.DB(), Secret: []byte("test-secret"), TTL: time.Hour}
	producer := events.NewProducer("")

	e := New(&Deps{
		Store:          s,
		Gate:           gate,
		AuthHandler:    &handlers.AuthHandler{Store: s, Gate: gate, Producer: producer},
		ProductHandler: &handlers.ProductHandler{Store: s, Producer: producer},
		HealthHandler:  &handlers.HealthHandler{Store: s, Environment: "development"},
		Debug:          false,
		RequestTimeout: timeout,
	})

	return &testEnv{Store: s, Gate: gate, E: e}
}

func (env *testEnv) do(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/v1/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthLiveOnColdProcess(t *testing.T) {
	env := newTestEnv(t, 5*time.Second)

	rec := env.do(t, http.MethodGet, "/health/live", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Liveness must not have touched the store.
	var n int64
	require.NoError(t, env.Store.DB().Model(&models.Product{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestHealthReportsStoreAndSeeds(t *testing.T) {
	env := newTestEnv(t, 5*time.Second)

	rec := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp["status"])
	require.Equal(t, "Jubair Boot House", resp["app"])
	require.Equal(t, "serverless", resp["platform"])

	var n int64
	require.NoError(t, env.Store.DB().Model(&models.Product{}).Count(&n).Error)
	require.EqualValues(t, store.SeedProductCount(), n)
}

func TestUnmappedRouteIs404(t *testing.T) {
	env := newTestEnv(t, 5*time.Second)

	rec := env.do(t, http.MethodGet, "/no/such/page", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterCreatesCustomer(t *testing.T) {
	env := newTestEnv(t, 5*time.Second)

	payload := map[string]string{"email": "shopper@example.com", "password": "password"}
	rec := env.do(t, http.MethodPost, "/api/v1/register", payload, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "shopper@example.com", user.Email)
	require.Equal(t, models.RoleCustomer, user.Role)
	require.NotEmpty(t, user.ID)
	require.NotContains(t, rec.Body.String(), "password_hash")

	rec2 := env.do(t, http.MethodPost, "/api/v1/register", payload, "")
	require.Equal(t, http.StatusConflict, rec2.Code)
}

func TestLoginFailureSymmetry(t *testing.T) {
	env := newTestEnv(t, 5*time.Second)

	// Warm the store so a registered user exists.
	rec := env.do(t, http.MethodPost, "/api/v1/register",
		map[string]string{"email": "real@example.com", "password": "password"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	recMissing := env.do(t, http.MethodPost, "/api/v1/login",
		map[string]string{"email": "missing@example.com", "password": "anything"}, "")
	recWrong := env.do(t, http.MethodPost, "/api/v1/login",
		map[string]string{"email": "real@example.com", "password": "wrongpass"}, "")

	require.Equal(t, http.StatusUnauthorized, recMissing.Code)
	require.Equal(t, http.StatusUnauthorized, recWrong.Code)
	require.JSONEq(t, recMissing.Body.String(), recWrong.Body.String())
}

func TestSeedAdminCanLogin(t *testing.T) {
	env := newTestEnv(t, 5*time.Second)

	token := env.login(t, store.SeedAdminEmail, store.SeedAdminPassword)

	rec := env.do(t, http.MethodGet, "/api/v1/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, string(models.RoleAdmin), resp["role"])
}

func TestCustomerForbiddenOnAdminRoutes(t *testing.T) {
	env := newTestEnv(t, 5*time.Second)

	rec := env.do(t, http.MethodPost, "/api/v1/register",
		map[string]string{"email": "shopper@example.com", "password": "password"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	token := env.login(t, "shopper@example.com", "password")

	recForbidden := env.do(t, http.MethodPost, "/api/v1/admin/products",
		map[string]any{"name": "Sneaker", "price": 100.0, "category": "casual"}, token)
	require.Equal(t, http.StatusForbidden, recForbidden.Code)

	// No token at all is a 401, not a 403.
	recNoToken := env.do(t, http.MethodPost, "/api/v1/admin/products", nil, "")
	require.Equal(t, http.StatusUnauthorized, recNoToken.Code)
}

func TestAdminProductLifecycle(t *testing.T) {
	env := newTestEnv(t, 5*time.Second)
	token := env.login(t, store.SeedAdminEmail, store.SeedAdminPassword)

	recCreate := env.do(t, http.MethodPost, "/api/v1/admin/products",
		map[string]any{"name": "Monk Strap", "price": 2599.0, "stock": 12, "category": "formal"}, token)
	require.Equal(t, http.StatusCreated, recCreate.Code)

	var created models.Product
	require.NoError(t, json.Unmarshal(recCreate.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	recNegative := env.do(t, http.MethodPost, "/api/v1/admin/products",
		map[string]any{"name": "Bad", "price": -5.0, "category": "formal"}, token)
	require.Equal(t, http.StatusBadRequest, recNegative.Code)

	path := fmt.Sprintf("/api/v1/admin/products/%d", created.ID)
	recPatch := env.do(t, http.MethodPatch, path, map[string]any{"price": 1999.0}, token)
	require.Equal(t, http.StatusOK, recPatch.Code)

	var patched models.Product
	require.NoError(t, json.Unmarshal(recPatch.Body.Bytes(), &patched))
	require.Equal(t, 1999.0, patched.Price)
	require.Equal(t, "Monk Strap", patched.Name)

	recDelete := env.do(t, http.MethodDelete, path, nil, token)
	require.Equal(t, http.StatusNoContent, recDelete.Code)

	recGet := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, "")
	require.Equal(t, http.StatusNotFound, recGet.Code)
}

func TestProductListingFilters(t *testing.T) {
	env := newTestEnv(t, 5*time.Second)
	require.NoError(t, env.Store.EnsureReady(context.Background()))

	rec := env.do(t, http.MethodGet, "/api/v1/products?category=formal", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Product `json:"data"`
		Meta map[string]any   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data)
	for _, p := range resp.Data {
		require.Equal(t, "formal", p.Category)
	}

	recSearch := env.do(t, http.MethodGet, "/api/v1/products?q=Chelsea", nil, "")
	require.Equal(t, http.StatusOK, recSearch.Code)
	require.Contains(t, recSearch.Body.String(), "Chelsea Boot")
}

func TestRequestDeadlineMapsTo504(t *testing.T) {
	env := newTestEnv(t, time.Nanosecond)

	rec := env.do(t, http.MethodGet, "/api/v1/products", nil, "")
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestNoPartialRowAfterTimedOutRegistration(t *testing.T) {
	env := newTestEnv(t, time.Nanosecond)

	env.do(t, http.MethodPost, "/api/v1/register",
		map[string]string{"email": "late@example.com", "password": "password"}, "")

	// Whatever the response, the row either fully exists or not at all.
	var users []models.User
	require.NoError(t, env.Store.DB().Where("email = ?", "late@example.com").Find(&users).Error)
	for _, u := range users {
		require.NotEmpty(t, u.PasswordHash)
		require.True(t, u.Role.Valid())
	}
	require.LessOrEqual(t, len(users), 1)
}
