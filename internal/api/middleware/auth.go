package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/pkg/jwt"
	"github.com/keshavmohta09/RosterPulse/pkg/response"
)

const (
	msgNotAuthenticated = "Authentication credentials were not provided."
	msgTokenInvalid     = "Given token not valid for any token type"
	msgForbidden        = "You do not have permission to perform this action."
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, msgNotAuthenticated)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, msgTokenInvalid)
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil || claims.TokenType != jwt.TokenTypeAccess || claims.UserID == "" {
			response.Unauthorized(c, 10002, msgTokenInvalid)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("token_jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RoleChecker 实时查询用户角色
type RoleChecker interface {
	HasRole(ctx context.Context, userID string, role model.Role) (bool, error)
}

// RequireRole 角色权限中间件，须挂在 JWTAuth 之后
// 角色不缓存在 Token 中，每个请求都查询一次
func RequireRole(checker RoleChecker, role model.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			response.Unauthorized(c, 10002, msgNotAuthenticated)
			c.Abort()
			return
		}

		ok, err := checker.HasRole(c.Request.Context(), userID, role)
		if err != nil {
			logger.Error("角色校验失败", zap.String("user_id", userID), zap.Error(err))
			response.InternalError(c)
			c.Abort()
			return
		}
		if !ok {
			response.Forbidden(c, 10003, msgForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
