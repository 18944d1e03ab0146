package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-gin-admin-panel/internal/domain"
	"go-gin-admin-panel/internal/feature/user"
	httpez "go-gin-admin-panel/internal/transport/http/ez"
	mdw "go-gin-admin-panel/internal/transport/http/middleware"
)

// adminUsersModule /admin/users 增删改查；分组已要求 admin 角色
type adminUsersModule struct{ svc *user.Service }

type listQ struct {
	Page    int `form:"page,default=1"`
	PerPage int `form:"per_page,default=15"`
}

func pathID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, httpez.BadRequest("invalid id")
	}
	return id, nil
}

func (m *adminUsersModule) Mount(_, _, admin httpez.EZ) {
	httpez.RegisterAction(admin, httpez.Action[listQ, user.Page]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  []string{string(domain.RoleAdmin)},
		Handler: func(c *gin.Context, in *listQ) (user.Page, error) {
			return m.svc.List(c.Request.Context(), in.Page, in.PerPage, APIPrefix+"/admin/users")
		},
	})

	httpez.RegisterAction(admin, httpez.Action[user.Input, domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  []string{string(domain.RoleAdmin)},
		Handler: func(c *gin.Context, in *user.Input) (domain.User, error) {
			u, err := m.svc.Create(c.Request.Context(), *in)
			if err != nil {
				return domain.User{}, err
			}
			return u.Domain(), nil
		},
	})

	httpez.RegisterAction(admin, httpez.Action[user.Input, domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  []string{string(domain.RoleAdmin)},
		Handler: func(c *gin.Context, in *user.Input) (domain.User, error) {
			id, err := pathID(c)
			if err != nil {
				return domain.User{}, err
			}
			u, err := m.svc.Update(c.Request.Context(), id, *in)
			if err != nil {
				return domain.User{}, err
			}
			return u.Domain(), nil
		},
	})

	httpez.RegisterAction(admin, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  []string{string(domain.RoleAdmin)},
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := pathID(c)
			if err != nil {
				return nil, err
			}
			if err := m.svc.Delete(c.Request.Context(), mdw.UserID(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
