package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/keshavmohta09/RosterPulse/config"
	"github.com/keshavmohta09/RosterPulse/internal/dto"
	"github.com/keshavmohta09/RosterPulse/internal/service"
	"github.com/keshavmohta09/RosterPulse/pkg/response"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/users"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc    service.AuthService
	cookie     config.CookieConfig
	refreshTTL int // Cookie Max-Age（秒）
}

// NewAuthHandler 创建 AuthHandler；cfg 为空时使用默认 Cookie 配置
func NewAuthHandler(authSvc service.AuthService, cfg *config.AuthConfig) *AuthHandler {
	h := &AuthHandler{authSvc: authSvc, refreshTTL: 24 * 3600}
	if cfg != nil {
		h.cookie = cfg.Cookie
		h.refreshTTL = int(cfg.RefreshTokenTTL.Seconds())
	}
	return h
}

// Login 用户登录
// POST /api/v1/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, 11001, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, h.refreshTTL)
	response.OK(c, dto.AccessTokenResponse{AccessToken: result.AccessToken, ExpiresIn: result.ExpiresIn})
}

// RefreshToken 刷新 Access Token
// GET /api/v1/users/login/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	if token == "" {
		response.BadRequest(c, 11002, "refresh_token is required")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), token)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出：拉黑 Refresh Token 并清除 Cookie
// POST /api/v1/users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetUserID(c); !ok {
		return
	}

	msg, err := h.authSvc.Logout(c.Request.Context(), h.refreshTokenFrom(c))
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, "", -1)
	response.OKMessage(c, msg)
}

// refreshTokenFrom Cookie 优先，其次 JSON Body
func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(refreshCookieName); err == nil && v != "" {
		return v
	}
	var body dto.RefreshTokenRequest
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&body)
	}
	return strings.TrimSpace(body.RefreshToken)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(refreshCookieName, value, maxAge, refreshCookiePath, h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.BadRequest(c, 11101, err.Error())
	case errors.Is(err, service.ErrTokenInvalid), errors.Is(err, service.ErrTokenBlacklisted):
		response.BadRequest(c, 11102, err.Error())
	default:
		if businessError(c, 11103, err) {
			return
		}
		response.InternalError(c)
	}
}
