package router

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-admin-panel/internal/core/auth"
	"go-gin-admin-panel/internal/feature/user"
	httpez "go-gin-admin-panel/internal/transport/http/ez"
	mdw "go-gin-admin-panel/internal/transport/http/middleware"
	resp "go-gin-admin-panel/internal/transport/http/response"
)

const APIPrefix = "/api/v1"

// mapUserErr 领域错误 -> 响应码
func mapUserErr(err error) *httpez.AErr {
	var ve *user.ValidationError
	switch {
	case errors.As(err, &ve):
		return &httpez.AErr{Code: resp.CodeValidation, Fields: ve.Fields}
	case errors.Is(err, user.ErrNotFound):
		return &httpez.AErr{Code: resp.CodeNotFound, Msg: err.Error()}
	case errors.Is(err, user.ErrInvalidCredentials):
		return &httpez.AErr{Code: resp.CodeValidation, Fields: map[string]string{
			"email": "These credentials do not match our records.",
		}}
	case errors.Is(err, user.ErrSelfDelete):
		return &httpez.AErr{Code: resp.CodeForbidden, Msg: err.Error()}
	}
	return nil
}

func NewAPIEngine(l *zap.Logger, svc *user.Service, jwter *auth.JWTer) *gin.Engine {
	r := gin.New()
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Recovery(l),
		mdw.Metrics("api"),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())

	public := httpez.New(r.Group(APIPrefix),
		httpez.WithErrorMapper(mapUserErr),
		httpez.WithErrorHook(func(c *gin.Context, err error) {
			l.Error("api action failed", zap.String("path", c.FullPath()), zap.Error(err))
		}),
	)
	authed := public.Group("", mdw.AuthJWT(jwter, ""))
	admin := public.Group("/admin", mdw.AuthJWT(jwter, "admin"))

	var reg Registry
	reg.Register(
		&authModule{svc: svc, jwter: jwter},
		&adminUsersModule{svc: svc},
	)
	reg.MountAll(public, authed, admin)
	return r
}
