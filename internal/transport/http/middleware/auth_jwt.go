package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-admin-panel/internal/core/auth"
	httpez "go-gin-admin-panel/internal/transport/http/ez"
	resp "go-gin-admin-panel/internal/transport/http/response"
)

const KeyClaims = "claims"

// AuthJWT 校验 Bearer token；requireRole 为空时只要求登录
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(httpez.KeyUserID, claims.UID)
		c.Set(httpez.KeyRole, claims.Role)
		c.Set(httpez.KeyName, claims.Name)
		c.Next()
	}
}

// UserID AuthJWT 之后才有值
func UserID(c *gin.Context) uint64 {
	if v, ok := c.Get(httpez.KeyUserID); ok {
		if id, ok := v.(uint64); ok {
			return id
		}
	}
	return 0
}
