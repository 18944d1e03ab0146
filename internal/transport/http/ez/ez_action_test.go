package ez

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resp "go-gin-admin-panel/internal/transport/http/response"
)

var errDomain = errors.New("domain not found")

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func newEngine(withUser, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if withUser != "" {
			c.Set(KeyUserID, withUser)
			c.Set(KeyRole, role)
		}
	})
	e := New(r.Group("/v1"), WithErrorMapper(func(err error) *AErr {
		if errors.Is(err, errDomain) {
			return &AErr{Code: resp.CodeNotFound, Msg: "nope"}
		}
		return nil
	}))
	RegisterAction(e, Action[echoIn, gin.H]{
		Method: http.MethodPost, Path: "/echo", Binder: BindJSON,
		Handler: func(_ *gin.Context, in *echoIn) (gin.H, error) { return gin.H{"name": in.Name}, nil },
	})
	RegisterAction(e, Action[struct{}, gin.H]{
		Method: http.MethodGet, Path: "/admin", Binder: BindNone, Auth: true, Roles: []string{"admin"},
		Handler: func(*gin.Context, *struct{}) (gin.H, error) { return gin.H{"ok": true}, nil },
	})
	RegisterAction(e, Action[struct{}, gin.H]{
		Method: http.MethodDelete, Path: "/mapped", Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (gin.H, error) { return nil, errDomain },
	})
	RegisterAction(e, Action[struct{}, gin.H]{
		Method: http.MethodPut, Path: "/invalid", Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (gin.H, error) {
			return nil, Invalid(map[string]string{"email": "taken"})
		},
	})
	RegisterAction(e, Action[struct{}, gin.H]{
		Method: http.MethodGet, Path: "/boom", Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (gin.H, error) { return nil, errors.New("secret db detail") },
	})
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (int, resp.Resp) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var out resp.Resp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestRegisterAction(t *testing.T) {
	tests := []struct {
		name         string
		user, role   string
		method, path string
		body         string
		wantStatus   int
		wantCode     int
	}{
		{"bind ok", "", "", http.MethodPost, "/v1/echo", `{"name":"Ann"}`, 200, resp.CodeOK},
		{"bind fails", "", "", http.MethodPost, "/v1/echo", `{}`, 400, resp.CodeBadRequest},
		{"no user", "", "", http.MethodGet, "/v1/admin", "", 401, resp.CodeUnauthorized},
		{"wrong role", "1", "user", http.MethodGet, "/v1/admin", "", 403, resp.CodeForbidden},
		{"admin", "1", "admin", http.MethodGet, "/v1/admin", "", 200, resp.CodeOK},
		{"mapped error", "", "", http.MethodDelete, "/v1/mapped", "", 404, resp.CodeNotFound},
		{"validation", "", "", http.MethodPut, "/v1/invalid", "", 422, resp.CodeValidation},
		{"internal", "", "", http.MethodGet, "/v1/boom", "", 500, resp.CodeServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, out := do(t, newEngine(tc.user, tc.role), tc.method, tc.path, tc.body)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantCode, out.Code)
		})
	}
}

func TestInternalErrorIsNotLeaked(t *testing.T) {
	_, out := do(t, newEngine("", ""), http.MethodGet, "/v1/boom", "")
	assert.NotContains(t, out.Msg, "secret")
}
