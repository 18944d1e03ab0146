package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-admin-panel/internal/core/auth"
	"go-gin-admin-panel/internal/domain"
	"go-gin-admin-panel/internal/feature/user"
	httpez "go-gin-admin-panel/internal/transport/http/ez"
	mdw "go-gin-admin-panel/internal/transport/http/middleware"
)

// authModule /auth/login /auth/register /me*
type authModule struct {
	svc   *user.Service
	jwter *auth.JWTer
}

func (m *authModule) Priority() int { return 10 }

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type tokenOut struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type profileIn struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type deleteAccountIn struct {
	Password string `json:"password"`
}

func (m *authModule) issue(u *user.UserModel) (tokenOut, error) {
	tok, err := m.jwter.Issue(u.ID, u.Role, u.Name)
	if err != nil {
		return tokenOut{}, httpez.Internal("issue token failed", err)
	}
	return tokenOut{Token: tok, User: u.Domain()}, nil
}

func (m *authModule) Mount(public, authed, _ httpez.EZ) {
	// 登录/注册按 IP 限速
	guarded := public.Group("/auth", mdw.RateLimitPerIP(1, 10))

	httpez.RegisterAction(guarded, httpez.Action[loginIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (tokenOut, error) {
			u, err := m.svc.Authenticate(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return tokenOut{}, err
			}
			return m.issue(u)
		},
	})

	httpez.RegisterAction(guarded, httpez.Action[user.Input, tokenOut]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *user.Input) (tokenOut, error) {
			u, err := m.svc.Register(c.Request.Context(), *in)
			if err != nil {
				return tokenOut{}, err
			}
			return m.issue(u)
		},
	})

	httpez.RegisterAction(authed, httpez.Action[struct{}, domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.User, error) {
			u, err := m.svc.Get(c.Request.Context(), mdw.UserID(c))
			if err != nil {
				return domain.User{}, err
			}
			return u.Domain(), nil
		},
	})

	httpez.RegisterAction(authed, httpez.Action[profileIn, domain.User]{
		Method: http.MethodPut,
		Path:   "/me",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *profileIn) (domain.User, error) {
			u, err := m.svc.UpdateProfile(c.Request.Context(), mdw.UserID(c), in.Name, in.Email)
			if err != nil {
				return domain.User{}, err
			}
			return u.Domain(), nil
		},
	})

	httpez.RegisterAction(authed, httpez.Action[user.PasswordInput, gin.H]{
		Method: http.MethodPut,
		Path:   "/me/password",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *user.PasswordInput) (gin.H, error) {
			if err := m.svc.UpdatePassword(c.Request.Context(), mdw.UserID(c), *in); err != nil {
				return nil, err
			}
			return gin.H{"updated": true}, nil
		},
	})

	httpez.RegisterAction(authed, httpez.Action[deleteAccountIn, gin.H]{
		Method: http.MethodDelete,
		Path:   "/me",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *deleteAccountIn) (gin.H, error) {
			id := mdw.UserID(c)
			if err := m.svc.DeleteAccount(c.Request.Context(), id, in.Password); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
