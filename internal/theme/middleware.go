package theme

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ctxKey     = "theme"
	cookieName = "theme_sid"
	// HintHeader 浏览器的系统配色提示
	HintHeader = "Sec-CH-Prefers-Color-Scheme"
)

// Context 注入到每个请求
type Context struct {
	Mode    Mode
	Subject string
}

func (c Context) Dark() bool { return c.Mode == Dark }

// Middleware 解析主题写入 gin 上下文；匿名访客用 cookie 里的 id 作为 subject。
// secure 与会话 cookie 保持一致
func Middleware(r Resolver, l *zap.Logger, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(cookieName, sid, 365*24*3600, "/", "", secure, true)
		}
		// 让浏览器后续请求带上系统配色
		c.Header("Accept-CH", HintHeader)
		m, err := r.Resolve(c.Request.Context(), sid, c.GetHeader(HintHeader))
		if err != nil {
			l.Warn("theme resolve failed", zap.Error(err))
		}
		c.Set(ctxKey, Context{Mode: m, Subject: sid})
		c.Next()
	}
}

// From 未经过中间件时返回 light
func From(c *gin.Context) Context {
	if v, ok := c.Get(ctxKey); ok {
		if tc, ok := v.(Context); ok {
			return tc
		}
	}
	return Context{Mode: Light}
}

// Toggle 翻转并持久化，返回新模式
func Toggle(c *gin.Context, s Store) (Mode, error) {
	tc := From(c)
	next := tc.Mode.Toggle()
	if tc.Subject == "" {
		return next, nil
	}
	if err := s.Set(c.Request.Context(), tc.Subject, next); err != nil {
		return tc.Mode, err
	}
	c.Set(ctxKey, Context{Mode: next, Subject: tc.Subject})
	return next, nil
}
