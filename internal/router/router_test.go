package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"product-review/internal/metrics"
	"product-review/internal/models"
	"product-review/internal/repository/repotest"
	"product-review/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	handler http.Handler
	reviews *repotest.Memory[models.Review]
	users   *repotest.Memory[models.User]
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	hash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		require.NoError(t, err)
		return string(h)
	}
	users := repotest.NewMemory(
		models.User{Username: "root", PasswordHash: hash("toor"), Role: models.RoleAdmin},
		models.User{Username: "bob", PasswordHash: hash("hunter2"), Role: models.RoleUser},
	)
	reviews := repotest.NewMemory[models.Review]()
	stores := services.CatalogStores{
		Products: repotest.NewMemory(models.Product{
			ID: 1, Name: "Kettle", CategoryID: 1,
			Category: &models.Category{ID: 1, Name: "Kitchen"},
			SellerProducts: []models.SellerProduct{
				{ID: 1, SellerID: 1, ProductID: 1, Price: 30},
				{ID: 2, SellerID: 2, ProductID: 1, Price: 10},
				{ID: 3, SellerID: 3, ProductID: 1, Price: 20},
			},
		}),
		Categories: repotest.NewMemory(models.Category{ID: 1, Name: "Kitchen"}),
		Sellers:    repotest.NewMemory[models.Seller](),
		Images:     repotest.NewMemory[models.ProductImage](),
		Listings:   repotest.NewMemory[models.SellerProduct](),
		Reviews:    reviews,
	}

	m := metrics.New("test")
	svc, err := NewServices(users, stores, services.TokenSettings{Secret: "router-secret", TTL: time.Hour}, m, zerolog.Nop())
	require.NoError(t, err)

	handler := SetupRouter(svc, Options{}, m, zerolog.Nop())
	return &testAPI{handler: handler, reviews: reviews, users: users}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp models.TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Token
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Username: "bob", Password: "hunter2"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "bob", resp.Username)
	assert.Equal(t, models.RoleUser, resp.Role)
	assert.Equal(t, "User", resp.RoleName)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ValiditySec)

	wrong := api.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Username: "bob", Password: "nope"})
	unknown := api.do(t, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Username: "eve", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
}

func TestSignUp(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"username": "carol", "password": "pw", "first_name": "Carol", "role": 0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	users, err := api.users.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, users[len(users)-1].Role)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/signup", "", models.SignUpRequest{Username: "carol", Password: "pw"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/signup", "", models.SignUpRequest{Username: "dave"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/api/v1/products", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/api/v1/products", "garbage", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/api/v1/auth/roles", "", nil).Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	userToken := api.login(t, "bob", "hunter2")
	adminToken := api.login(t, "root", "toor")

	category := models.CategoryRequest{Name: "Garden"}
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPost, "/api/v1/categories", userToken, category).Code)
	assert.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/v1/categories", adminToken, category).Code)

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, "/api/v1/users", userToken, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/users", adminToken, nil).Code)
}

func TestProductRoutes(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "bob", "hunter2")

	rec := api.do(t, http.MethodGet, "/api/v1/products/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view models.ProductView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, 0.0, view.AverageRating)
	require.Len(t, view.SellerProducts, 3)
	assert.Equal(t, 10.0, view.SellerProducts[0].Price)
	assert.Equal(t, 30.0, view.SellerProducts[2].Price)

	rec = api.do(t, http.MethodGet, "/api/v1/products/999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "Resource not found", body["message"])

	var byCategory []models.ProductView
	rec = api.do(t, http.MethodGet, "/api/v1/products/category/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&byCategory))
	assert.Len(t, byCategory, 1)

	rec = api.do(t, http.MethodGet, "/api/v1/products/category/1?offset=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&byCategory))
	assert.Empty(t, byCategory)

	rec = api.do(t, http.MethodPost, "/api/v1/products/compare", token, models.CompareRequest{ProductIDs: []int{1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewOncePerUser(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "bob", "hunter2")

	first := api.do(t, http.MethodPost, "/api/v1/products/1/reviews", token, models.ReviewRequest{Rating: 5, Comment: "solid"})
	require.Equal(t, http.StatusCreated, first.Code)

	second := api.do(t, http.MethodPost, "/api/v1/products/1/reviews", token, models.ReviewRequest{Rating: 1})
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Len(t, api.reviews.Items(), 1)

	rec := api.do(t, http.MethodGet, "/api/v1/products/1/rating", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rating models.ProductRating
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rating))
	assert.Equal(t, 5.0, rating.AverageRating)
	assert.Equal(t, 1, rating.ReviewCount)
}

func TestStoreFailureIsOpaque(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "bob", "hunter2")
	api.reviews.Err = errors.New("dial tcp 10.0.0.5:3306: connection refused")

	rec := api.do(t, http.MethodGet, "/api/v1/reviews", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	failing := SetupRouter(&Services{}, Options{HealthCheck: func(context.Context) error {
		return errors.New("db down")
	}}, nil, zerolog.Nop())
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
