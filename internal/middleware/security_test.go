package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dealscout/bizfinder-pipeline/internal/logger"
	"github.com/dealscout/bizfinder-pipeline/pkg/config"
)

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})
	router.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})
	return router
}

func TestSecurityHeaders(t *testing.T) {
	router := newRouter(SecurityHeaders())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestCORS_DevAllowsLocalhost(t *testing.T) {
	cfg := &config.Config{Environment: "development"}
	router := newRouter(CORS(cfg))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProdRejectsUnknownOrigin(t *testing.T) {
	cfg := &config.Config{Environment: "production", AllowedOrigins: "https://deals.example.com"}
	router := newRouter(CORS(cfg))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	cfg := &config.Config{Environment: "development"}
	router := newRouter(CORS(cfg))

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestInputValidation_RejectsNonJSON(t *testing.T) {
	cfg := &config.Config{MaxRequestSize: 1024}
	router := newRouter(InputValidation(cfg))

	req := httptest.NewRequest("POST", "/test", strings.NewReader("<xml/>"))
	req.Header.Set("Content-Type", "text/xml")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestInputValidation_RequiresContentType(t *testing.T) {
	cfg := &config.Config{MaxRequestSize: 1024}
	router := newRouter(InputValidation(cfg))

	req := httptest.NewRequest("POST", "/test", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	router := newRouter(RateLimit(3))

	var last int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.1.1.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		last = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRequestLogging_PassesThrough(t *testing.T) {
	router := newRouter(RequestLogging(logger.NewNop()))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
