package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-admin-panel/internal/domain"
	"go-gin-admin-panel/internal/upstream"
	"go-gin-admin-panel/internal/userlist"
)

type dashboardView struct {
	Layout
	TotalUsers int64
}

func (h *Handler) dashboard(c *gin.Context) {
	v := dashboardView{Layout: h.layout(c, "Dashboard", "dashboard", crumb{Label: "Dashboard"})}
	if v.IsAdmin() {
		page, err := h.API.ListUsers(h.ctx(c), h.session(c).Token(), 1)
		switch {
		case errors.Is(err, upstream.ErrUnauthorized):
			h.fail(c, err)
			return
		case err != nil:
			h.Log.Warn("dashboard user count", zap.Error(err))
		default:
			v.TotalUsers = page.Total
		}
	}
	h.render(c, http.StatusOK, "dashboard", v)
}

type profileForm struct {
	Name  string `form:"name"`
	Email string `form:"email"`
}

type settingsView struct {
	Layout
	Profile        profileForm
	Verified       bool
	ProfileErrors  map[string]string
	PasswordErrors map[string]string
	DeleteErrors   map[string]string
}

// loadSettings 资料来自 /me（带缓存）
func (h *Handler) loadSettings(c *gin.Context) (settingsView, error) {
	me, err := h.me(c)
	if err != nil {
		return settingsView{}, err
	}
	return settingsView{
		Layout:   h.layout(c, "Settings", "settings", crumb{Label: "Dashboard", URL: "/dashboard"}, crumb{Label: "Settings"}),
		Profile:  profileForm{Name: me.Name, Email: me.Email},
		Verified: me.Verified(),
	}, nil
}

func (h *Handler) settingsPage(c *gin.Context) {
	v, err := h.loadSettings(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "settings", v)
}

// invalid 422 回显：errs 写到对应表单
func (h *Handler) invalid(c *gin.Context, fill func(v *settingsView)) {
	v, err := h.loadSettings(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	fill(&v)
	h.render(c, http.StatusUnprocessableEntity, "settings", v)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var in profileForm
	_ = c.ShouldBind(&in)
	u, err := h.API.UpdateProfile(h.ctx(c), h.session(c).Token(), in.Name, in.Email)
	var ve *upstream.ValidationError
	if errors.As(err, &ve) {
		h.invalid(c, func(v *settingsView) {
			v.Profile = in
			v.ProfileErrors = ve.Fields
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.rememberProfile(c, u)
	sess := h.session(c)
	h.refreshUser(sess, u)
	sess.Notify(userlist.Notification{Title: "Profile updated"})
	h.redirect(c, "/settings")
}

// refreshUser 会话里的摘要跟着资料更新；角色以登录时为准
func (h *Handler) refreshUser(sess *Session, u domain.User) {
	if old, err := sess.User(); err == nil && u.Role == "" {
		u.Role = old.Role
	}
	sess.SetUser(u)
}

func (h *Handler) updatePassword(c *gin.Context) {
	var in upstream.PasswordInput
	_ = c.ShouldBind(&in)
	err := h.API.UpdatePassword(h.ctx(c), h.session(c).Token(), in)
	var ve *upstream.ValidationError
	if errors.As(err, &ve) {
		h.invalid(c, func(v *settingsView) { v.PasswordErrors = ve.Fields })
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.session(c).Notify(userlist.Notification{Title: "Password updated"})
	h.redirect(c, "/settings")
}

func (h *Handler) deleteAccount(c *gin.Context) {
	err := h.API.DeleteAccount(h.ctx(c), h.session(c).Token(), c.PostForm("password"))
	var ve *upstream.ValidationError
	if errors.As(err, &ve) {
		h.invalid(c, func(v *settingsView) { v.DeleteErrors = ve.Fields })
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.forgetProfile(c)
	sess := h.session(c)
	sess.Clear()
	sess.Notify(userlist.Notification{Title: "Account deleted"})
	h.redirect(c, "/login")
}
