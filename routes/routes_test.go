package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buzcart/buzcart-api/middleware"
	"github.com/buzcart/buzcart-api/routes"
	"github.com/buzcart/buzcart-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupRouter(t *testing.T) *gin.Engine {
	r := gin.New()
	r.Use(middleware.PrometheusMiddleware())
	routes.SetupRoutes(r, routes.Services{DB: testutil.OpenDB(t), JWTSecret: testutil.JWTSecret, AdminAPIKey: "k"})
	return r
}

func TestOpsEndpoints(t *testing.T) {
	router := setupRouter(t)

	health := testutil.Do(t, router, http.MethodGet, "/health", nil, uuid.Nil)
	assert.Equal(t, http.StatusOK, health.Code)
	assert.JSONEq(t, `{"status":"ok"}`, health.Body.String())

	testutil.Do(t, router, http.MethodGet, "/carts/active", nil, uuid.New())
	metrics := testutil.Do(t, router, http.MethodGet, "/metrics", nil, uuid.Nil)
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "buzcart_http_requests_total")
}

func TestProtectedGroups(t *testing.T) {
	router := setupRouter(t)

	for _, path := range []string{"/carts/active", "/orders", "/orders/ws"} {
		assert.Equal(t, http.StatusUnauthorized, testutil.Do(t, router, http.MethodGet, path, nil, uuid.Nil).Code, path)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin/products/export", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
