package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/duka-pos/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRouter(cfg *config.CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(cfg))
	r.POST("/checkout", func(c *gin.Context) {
		c.Header(IdempotencyReplayedHeader, "true")
		c.Status(http.StatusCreated)
	})
	return r
}

func TestCORS_ExposesReplayHeader(t *testing.T) {
	r := corsRouter(&config.CORSConfig{})

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	exposed := strings.Split(w.Header().Get("Access-Control-Expose-Headers"), ",")
	assert.Contains(t, exposed, IdempotencyReplayedHeader)
	assert.Contains(t, exposed, "Content-Disposition")
}

func TestCORS_PreflightAllowsIdempotencyKey(t *testing.T) {
	// a configured header list still gets the key appended
	r := corsRouter(&config.CORSConfig{
		AllowedOrigins: []string{"http://till.local"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/checkout", nil)
	req.Header.Set("Origin", "http://till.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	allowed := strings.Split(w.Header().Get("Access-Control-Allow-Headers"), ",")
	assert.Contains(t, allowed, IdempotencyKeyHeader)
	assert.Contains(t, allowed, "Authorization")
}

func TestCORS_RejectsUnknownOrigin(t *testing.T) {
	r := corsRouter(&config.CORSConfig{AllowedOrigins: []string{"http://till.local"}})

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
