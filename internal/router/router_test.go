package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"socialshop/internal/config"
	"socialshop/internal/services"
	"socialshop/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	conn := testutil.NewDB(t)
	testutil.CreateUser(t, conn, "U1", "a@x.com", "Alice")
	users := services.NewUserService(conn)
	return New(cfg, Deps{
		DB:       conn,
		Posts:    services.NewPostService(conn, users, nil, 0, nil),
		Products: services.NewProductService(conn),
		Users:    users,
	})
}

func baseConfig() *config.Config {
	return &config.Config{
		AuthMode:       config.AuthModeEmail,
		SessionSecret:  "session-secret",
		JWTSecret:      "jwt-secret",
		CORSOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   0.001,
		RateLimitBurst: 2,
	}
}

func TestRoutesAreRegistered(t *testing.T) {
	r := newTestEngine(t, baseConfig())

	for _, path := range []string{"/healthz", "/api/posts", "/api/products"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := newTestEngine(t, baseConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWritesAreRateLimited(t *testing.T) {
	r := newTestEngine(t, baseConfig())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(`{"email":"a@x.com","title":"t"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	// Reads are not limited.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
