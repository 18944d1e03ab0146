package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-admin-panel/internal/domain"
)

// requireAuth 会话里没有 token 或 token 已过期就回登录页
func (h *Handler) requireAuth(c *gin.Context) {
	sess := h.session(c)
	u, err := sess.User()
	if sess.Token() == "" || err != nil || sess.Expired(h.now()) {
		sess.Clear()
		h.redirect(c, "/login")
		c.Abort()
		return
	}
	c.Set(ctxUser, u)
	c.Next()
}

// requireAdmin 只看会话里的角色；真正的鉴权在 API
func (h *Handler) requireAdmin(c *gin.Context) {
	u := currentUser(c)
	if u == nil || u.Role != domain.RoleAdmin {
		h.renderError(c, http.StatusForbidden, "This area is restricted to administrators.")
		c.Abort()
		return
	}
	c.Next()
}

// guestOnly 已登录访问登录/注册页时跳转
func (h *Handler) guestOnly(c *gin.Context) bool {
	sess := h.session(c)
	if sess.Token() != "" && !sess.Expired(h.now()) {
		h.redirect(c, "/dashboard")
		return false
	}
	return true
}
