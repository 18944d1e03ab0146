package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-admin-panel/internal/core/cache"
	"go-gin-admin-panel/internal/domain"
	mdw "go-gin-admin-panel/internal/transport/http/middleware"
	"go-gin-admin-panel/internal/theme"
	"go-gin-admin-panel/internal/upstream"
	"go-gin-admin-panel/internal/userlist"
)

const (
	ctxSession = "panel.session"
	ctxUser    = "panel.user"

	profileTTL = 30 * time.Second
)

// Deps 面板依赖；Profiles 为空时不缓存 /me
type Deps struct {
	Log      *zap.Logger
	API      *upstream.Client
	Sessions *Sessions
	Themes   theme.Store
	Profiles *cache.Cache
	List     userlist.Config
	AppName  string
	// MaxAge remember me 时的 cookie 有效期（秒）
	MaxAge int
}

type Handler struct {
	Deps
	now func() time.Time
}

func NewPanelEngine(d Deps) (*gin.Engine, error) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Themes == nil {
		d.Themes = theme.NewMemoryStore()
	}
	if d.AppName == "" {
		d.AppName = "Admin Panel"
	}
	views, err := loadTemplates(viewsFS)
	if err != nil {
		return nil, err
	}
	h := &Handler{Deps: d, now: time.Now}

	r := gin.New()
	r.HTMLRender = views
	r.Use(
		mdw.RequestID(),
		h.recovery(),
		mdw.Metrics("panel"),
		mdw.AccessLog(d.Log),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(15*time.Second),
		theme.Middleware(theme.Resolver{Store: d.Themes}, d.Log, d.Sessions.Secure()),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	r.POST("/theme", h.toggleTheme)

	guest := r.Group("", mdw.RateLimitPerIP(2, 20))
	guest.GET("/login", h.loginPage)
	guest.POST("/login", h.login)
	guest.GET("/register", h.registerPage)
	guest.POST("/register", h.register)

	authed := r.Group("", h.requireAuth)
	authed.POST("/logout", h.logout)
	authed.GET("/dashboard", h.dashboard)
	authed.GET("/settings", h.settingsPage)
	authed.POST("/settings/profile", h.updateProfile)
	authed.POST("/settings/password", h.updatePassword)
	authed.POST("/settings/delete", h.deleteAccount)

	admin := authed.Group("/admin", h.requireAdmin)
	admin.GET("/users", h.listUsers)
	admin.POST("/users", h.createUser)
	admin.POST("/users/:id", h.updateUser)
	admin.POST("/users/:id/delete", h.deleteUser)

	r.NoRoute(func(c *gin.Context) { h.renderError(c, http.StatusNotFound, "The page you are looking for could not be found.") })
	return r, nil
}

func (h *Handler) session(c *gin.Context) *Session { return h.Sessions.Get(c) }

// ctx 带上请求 id，透传给上游
func (h *Handler) ctx(c *gin.Context) context.Context {
	return upstream.WithRequestID(c.Request.Context(), c.GetString(mdw.KeyRequestID))
}

func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(domain.User); ok {
			return &u
		}
	}
	return nil
}

func (h *Handler) layout(c *gin.Context, title, nav string, crumbs ...crumb) Layout {
	return Layout{
		AppName: h.AppName,
		Title:   title,
		Nav:     nav,
		Crumbs:  crumbs,
		User:    currentUser(c),
		Theme:   theme.From(c),
		Flashes: h.session(c).PopFlashes(),
	}
}

// render 写 body 之前先保存会话（toast 已被读出）
func (h *Handler) render(c *gin.Context, status int, page string, data any) {
	if err := h.session(c).Save(); err != nil {
		h.Log.Warn("session save failed", zap.Error(err))
	}
	c.HTML(status, page, data)
}

func (h *Handler) redirect(c *gin.Context, to string) {
	if err := h.session(c).Save(); err != nil {
		h.Log.Warn("session save failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, to)
}

type errorView struct {
	Layout
	Message string
	Back    string
}

func (h *Handler) renderError(c *gin.Context, status int, msg string) {
	h.render(c, status, "error", errorView{
		Layout:  h.layout(c, http.StatusText(status), ""),
		Message: msg,
		Back:    "/dashboard",
	})
}

// recovery panic 记堆栈，回 HTML 错误页
func (h *Handler) recovery() gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(h.Log, true, func(c *gin.Context, _ any) {
		h.renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
		c.Abort()
	})
}

// fail 上游错误统一处理；401 清会话回登录页
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, upstream.ErrUnauthorized):
		sess := h.session(c)
		sess.Clear()
		sess.Notify(userlist.Notification{Title: "Session expired", Description: "Please log in again."})
		h.redirect(c, "/login")
	case errors.Is(err, upstream.ErrForbidden):
		h.renderError(c, http.StatusForbidden, "You are not allowed to do that.")
	case errors.Is(err, upstream.ErrNotFound):
		h.renderError(c, http.StatusNotFound, "The requested record no longer exists.")
	default:
		h.Log.Error("upstream request failed", zap.String("path", c.FullPath()), zap.Error(err))
		h.renderError(c, http.StatusBadGateway, "The users service is unavailable. Please try again.")
	}
}

// me 当前用户资料，按 uid 缓存
func (h *Handler) me(c *gin.Context) (domain.User, error) {
	token := h.session(c).Token()
	load := func(ctx context.Context) (domain.User, error) { return h.API.Me(ctx, token) }
	u := currentUser(c)
	if h.Profiles == nil || u == nil {
		return load(h.ctx(c))
	}
	return cache.GetOrLoadJSON(h.ctx(c), h.Profiles, profileKey(u.ID), profileTTL, load)
}

// rememberProfile 资料更新后直接写缓存
func (h *Handler) rememberProfile(c *gin.Context, u domain.User) {
	if h.Profiles == nil {
		return
	}
	if err := cache.SetJSON(c.Request.Context(), h.Profiles, profileKey(u.ID), u, profileTTL); err != nil {
		h.Log.Warn("profile cache write failed", zap.Error(err))
	}
}

func (h *Handler) forgetProfile(c *gin.Context) {
	if h.Profiles == nil {
		return
	}
	if u := currentUser(c); u != nil {
		_ = h.Profiles.Del(c.Request.Context(), profileKey(u.ID))
	}
}

func profileKey(id uint64) string { return "me:" + strconv.FormatUint(id, 10) }

func (h *Handler) toggleTheme(c *gin.Context) {
	if _, err := theme.Toggle(c, h.Themes); err != nil {
		h.Log.Warn("theme persist failed", zap.Error(err))
	}
	h.redirect(c, localReferer(c.Request.Referer()))
}

// localReferer 只接受站内路径
func localReferer(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" || u.Path[0] != '/' || (len(u.Path) > 1 && u.Path[1] == '/') {
		return "/dashboard"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
