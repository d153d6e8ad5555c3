// Package handlers provides HTTP request handlers.
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"giftworks/internal/domain/identity"
	"giftworks/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *identity.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *identity.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /auth/login. The token is returned in the body and also
// set as a cookie for browser clients; the Authorization header wins when
// both are presented later.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, expiresAt, user, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 3600
	}
	c.SetCookie("access_token", token, maxAge, "/", "", false, true)

	h.OK(c, gin.H{
		"accessToken": token,
		"tokenType":   "bearer",
		"expiresAt":   expiresAt,
		"user":        dto.FromUser(user),
	})
}

// Register handles POST /auth/register: first-use account creation with an
// immediate token, like a successful login.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, expiresAt, user, err := h.service.Register(ctx, req.Email, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 3600
	}
	c.SetCookie("access_token", token, maxAge, "/", "", false, true)

	h.Created(c, gin.H{
		"accessToken": token,
		"tokenType":   "bearer",
		"expiresAt":   expiresAt,
		"user":        dto.FromUser(user),
	})
}

// Logout handles POST /auth/logout by clearing the cookie. Tokens are
// stateless; header-based clients simply drop theirs.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	h.Success(c, "logged out")
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	resp := gin.H{"user": dto.FromUser(rc.User)}
	if rc.Org != nil {
		org := dto.FromOrg(rc.Org)
		resp["organization"] = org
	}
	h.OK(c, resp)
}
