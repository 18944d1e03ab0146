package ez

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	resp "go-gin-admin-panel/internal/transport/http/response"
)

// 上下文 key，由 AuthJWT 中间件写入
const (
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyName   = "name"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // 自己从 c.Param 取
)

// AErr 统一错误对象
type AErr struct {
	Code   int
	Msg    string
	Err    error
	Fields map[string]string // 仅 422
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Invalid(fields map[string]string) error {
	return &AErr{Code: resp.CodeValidation, Fields: fields}
}
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// ErrorMapper 把领域错误翻译成 *AErr；返回 nil 表示不认识
type ErrorMapper func(error) *AErr

type EZ struct {
	g       *gin.RouterGroup
	mapErr  ErrorMapper
	onError func(c *gin.Context, err error)
}

type Option func(*EZ)

func WithErrorMapper(m ErrorMapper) Option { return func(e *EZ) { e.mapErr = m } }

// WithErrorHook 5xx 时回调（打日志）
func WithErrorHook(h func(c *gin.Context, err error)) Option { return func(e *EZ) { e.onError = h } }

func New(g *gin.RouterGroup, opts ...Option) EZ {
	e := EZ{g: g}
	for _, o := range opts {
		o(&e)
	}
	return e
}

// Group 子分组，继承错误映射
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), mapErr: e.mapErr, onError: e.onError}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool     // 要求登录
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth {
			if _, ok := c.Get(KeyUserID); !ok {
				resp.JSON(c, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !slices.Contains(a.Roles, c.GetString(KeyRole)) {
				resp.JSON(c, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			resp.JSON(c, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.writeErr(c, err)
			return
		}
		resp.JSON(c, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

func (e EZ) writeErr(c *gin.Context, err error) {
	var ae *AErr
	if !errors.As(err, &ae) && e.mapErr != nil {
		ae = e.mapErr(err)
	}
	if ae == nil {
		ae = &AErr{Code: resp.CodeServerError, Err: err}
	}
	if ae.Code >= 500 {
		_ = c.Error(err)
		if e.onError != nil {
			e.onError(c, err)
		}
		// 不把内部错误透给调用方
		resp.JSON(c, resp.Error(ae.Code, ae.Msg))
		return
	}
	if ae.Code == resp.CodeValidation {
		resp.JSON(c, resp.Validation(ae.Fields))
		return
	}
	resp.JSON(c, resp.Error(ae.Code, ae.Error()))
}
