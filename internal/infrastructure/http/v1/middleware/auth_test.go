package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ginContextFor(req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestExtractTokenFromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", extractToken(ginContextFor(req)))

	// Scheme matching is case-insensitive.
	req.Header.Set("Authorization", "bearer abc123")
	assert.Equal(t, "abc123", extractToken(ginContextFor(req)))
}

func TestExtractTokenMalformedHeaderDoesNotFallBack(t *testing.T) {
	// A present-but-broken header must not silently pick up the cookie.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: "cookie-token"})
	assert.Empty(t, extractToken(ginContextFor(req)))

	req.Header.Set("Authorization", "Bearer")
	assert.Empty(t, extractToken(ginContextFor(req)))
}

func TestExtractTokenFromCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", extractToken(ginContextFor(req)))

	assert.Empty(t, extractToken(ginContextFor(httptest.NewRequest(http.MethodGet, "/", nil))))
}

func TestExtractTokenHeaderWinsOverCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: "cookie-token"})
	assert.Equal(t, "header-token", extractToken(ginContextFor(req)))
}
