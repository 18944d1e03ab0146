package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-admin-panel/internal/core/auth"
	"go-gin-admin-panel/internal/core/cache"
	"go-gin-admin-panel/internal/core/config"
	"go-gin-admin-panel/internal/feature/user"
	"go-gin-admin-panel/internal/repo"
	"go-gin-admin-panel/internal/theme"
	"go-gin-admin-panel/internal/transport/http/router"
	"go-gin-admin-panel/internal/upstream"
	"go-gin-admin-panel/internal/userlist"
)

type panelFixture struct {
	t      *testing.T
	base   string
	client *http.Client
}

// newPanel 面板 + 真实 API（内存仓库），Ann 为管理员，Bob 为普通用户
func newPanel(t *testing.T, opts ...userlist.Option) *panelFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	svc := user.NewService(repo.NewMemoryUserRepo())
	_, err := svc.EnsureAdmin(ctx, "Ann", "ann@x.com", "password1")
	require.NoError(t, err)
	_, err = svc.Create(ctx, user.Input{Name: "Bob", Email: "bob@x.com", Role: "user", Password: "password1", PasswordConfirmation: "password1"})
	require.NoError(t, err)
	jwter := &auth.JWTer{Secret: []byte("s"), Issuer: "t", TTL: time.Hour}
	api := httptest.NewServer(router.NewAPIEngine(zap.NewNop(), svc, jwter))
	t.Cleanup(api.Close)

	eng, err := NewPanelEngine(Deps{
		Log:      zap.NewNop(),
		API:      upstream.New(config.Upstream{BaseURL: api.URL}, nil),
		Sessions: NewSessions(config.Session{Secret: "0123456789abcdef0123456789abcdef"}),
		Themes:   theme.NewMemoryStore(),
		Profiles: cache.New(cache.NewMemory()),
		List:     userlist.NewConfig(opts...),
		MaxAge:   3600,
	})
	require.NoError(t, err)
	panel := httptest.NewServer(eng)
	t.Cleanup(panel.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &panelFixture{t: t, base: panel.URL, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (f *panelFixture) do(req *http.Request) (int, string, string) {
	f.t.Helper()
	res, err := f.client.Do(req)
	require.NoError(f.t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(f.t, err)
	return res.StatusCode, string(b), res.Header.Get("Location")
}

func (f *panelFixture) get(path string) (int, string, string) {
	req, err := http.NewRequest(http.MethodGet, f.base+path, nil)
	require.NoError(f.t, err)
	return f.do(req)
}

func (f *panelFixture) post(path string, form url.Values) (int, string, string) {
	req, err := http.NewRequest(http.MethodPost, f.base+path, strings.NewReader(form.Encode()))
	require.NoError(f.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

func (f *panelFixture) login(email string) {
	f.t.Helper()
	status, _, loc := f.post("/login", url.Values{"email": {email}, "password": {"password1"}})
	require.Equal(f.t, http.StatusSeeOther, status)
	require.Equal(f.t, "/dashboard", loc)
}

func TestGuardRedirectsToLogin(t *testing.T) {
	f := newPanel(t)
	status, _, loc := f.get("/admin/users")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", loc)
}

func TestLoginFailureClearsPassword(t *testing.T) {
	f := newPanel(t)
	status, body, _ := f.post("/login", url.Values{"email": {"ann@x.com"}, "password": {"s3cret-guess"}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "These credentials do not match our records.")
	assert.Contains(t, body, `value="ann@x.com"`)
	assert.NotContains(t, body, "s3cret-guess")
}

func TestDashboard(t *testing.T) {
	f := newPanel(t)
	f.login("ann@x.com")
	status, body, _ := f.get("/dashboard")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Welcome back, Ann")
	assert.Contains(t, body, "2 registered accounts.")

	status, _, loc := f.get("/login")
	assert.Equal(t, http.StatusSeeOther, status, "logged in users skip the login page")
	assert.Equal(t, "/dashboard", loc)
}

func TestUsersSortAndFilter(t *testing.T) {
	f := newPanel(t)
	f.login("ann@x.com")

	_, body, _ := f.get("/admin/users?sort=name&dir=desc")
	ann, bob := strings.Index(body, "<td>ann@x.com</td>"), strings.Index(body, "<td>bob@x.com</td>")
	require.True(t, ann > 0 && bob > 0)
	assert.Less(t, bob, ann)
	assert.Contains(t, body, "Showing 1 to 2 of 2 results")

	_, body, _ = f.get("/admin/users?q=bob")
	assert.Contains(t, body, "<td>bob@x.com</td>")
	assert.NotContains(t, body, "<td>ann@x.com</td>")
	assert.Contains(t, body, "Showing 1 to 2 of 2 results", "summary stays on server metadata")
}

func TestCreateUserFlow(t *testing.T) {
	f := newPanel(t)
	f.login("ann@x.com")

	status, body, _ := f.post("/admin/users?sort=name&dir=asc", url.Values{
		"name": {"Cid"}, "email": {"cid@x.com"}, "role": {"user"},
		"password": {"password1"}, "password_confirmation": {"password2"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "The password field confirmation does not match.")
	assert.Contains(t, body, `role="dialog"`)
	assert.Contains(t, body, `value="Cid"`)
	assert.NotContains(t, body, "password2")

	status, body, _ = f.post("/admin/users", url.Values{
		"name": {"Bob Two"}, "email": {"bob@x.com"}, "role": {"user"},
		"password": {"password1"}, "password_confirmation": {"password1"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "The email has already been taken.")

	status, _, loc := f.post("/admin/users?sort=name&dir=asc", url.Values{
		"name": {"Cid"}, "email": {"cid@x.com"}, "role": {"user"},
		"password": {"password1"}, "password_confirmation": {"password1"},
	})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/admin/users?dir=asc&sort=name", loc)

	_, body, _ = f.get(loc)
	assert.Contains(t, body, "Cid added")
	assert.Contains(t, body, "<td>cid@x.com</td>")

	_, body, _ = f.get(loc)
	assert.NotContains(t, body, "Cid added", "toasts are shown once")
}

func TestEditUserKeepsPasswordWhenBlank(t *testing.T) {
	f := newPanel(t)
	f.login("ann@x.com")

	_, body, _ := f.get("/admin/users?dialog=edit&id=2")
	assert.Contains(t, body, `value="Bob"`)

	status, _, _ := f.post("/admin/users/2", url.Values{"name": {"Bobby"}, "email": {"bob@x.com"}, "role": {"user"}})
	require.Equal(t, http.StatusSeeOther, status)
	_, body, _ = f.get("/admin/users")
	assert.Contains(t, body, "Bobby updated")

	g := newPanelClient(t, f)
	g.login("bob@x.com")
}

// newPanelClient 同一面板的另一个浏览器
func newPanelClient(t *testing.T, f *panelFixture) *panelFixture {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &panelFixture{t: t, base: f.base, client: &http.Client{
		Jar:           jar,
		CheckRedirect: f.client.CheckRedirect,
	}}
}

func TestDeleteUserFlow(t *testing.T) {
	f := newPanel(t)
	f.login("ann@x.com")

	_, body, _ := f.get("/admin/users?dialog=delete&id=2")
	assert.Contains(t, body, "Delete Bob?")

	status, _, loc := f.post("/admin/users/2/delete", nil)
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/admin/users?dialog=delete&id=2", loc, "unconfirmed delete reopens the dialog")

	// 表单里带的名字不算数，以服务端查到的为准
	status, _, loc = f.post("/admin/users/2/delete", url.Values{"name": {"Mallory"}, "confirm": {"confirm"}})
	require.Equal(t, http.StatusSeeOther, status)
	_, body, _ = f.get(loc)
	assert.Contains(t, body, "Bob deleted")
	assert.NotContains(t, body, "Mallory")
	assert.NotContains(t, body, "<td>bob@x.com</td>")

	// 已不存在也照样提示
	_, _, loc = f.post("/admin/users/2/delete", url.Values{"confirm": {"confirm"}})
	_, body, _ = f.get(loc)
	assert.Contains(t, body, "User #2 deleted")
}

func TestAdminAreaForbiddenForUsers(t *testing.T) {
	f := newPanel(t)
	f.login("bob@x.com")
	status, _, _ := f.get("/admin/users")
	assert.Equal(t, http.StatusForbidden, status)
	_, body, _ := f.get("/dashboard")
	assert.NotContains(t, body, `href="/admin/users"`)
}

func TestDisabledActions(t *testing.T) {
	f := newPanel(t, userlist.WithDelete(false), userlist.WithCreate(false))
	f.login("ann@x.com")
	_, body, _ := f.get("/admin/users")
	assert.NotContains(t, body, "Add user")
	assert.NotContains(t, body, "dialog=delete")

	status, _, _ := f.post("/admin/users/2/delete", url.Values{"confirm": {"confirm"}})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestThemeToggle(t *testing.T) {
	f := newPanel(t)
	f.login("ann@x.com")
	_, body, _ := f.get("/dashboard")
	assert.Contains(t, body, `<html lang="en" class="">`)

	status, _, loc := f.post("/theme", nil)
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/dashboard", loc)

	_, body, _ = f.get("/dashboard")
	assert.Contains(t, body, `<html lang="en" class="dark">`)
}

func TestSettingsFlow(t *testing.T) {
	f := newPanel(t)
	f.login("bob@x.com")

	status, body, _ := f.post("/settings/profile", url.Values{"name": {"Bob"}, "email": {"ann@x.com"}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "The email has already been taken.")

	status, _, _ = f.post("/settings/profile", url.Values{"name": {"Robert"}, "email": {"bob@x.com"}})
	require.Equal(t, http.StatusSeeOther, status)
	_, body, _ = f.get("/settings")
	assert.Contains(t, body, "Profile updated")
	assert.Contains(t, body, `value="Robert"`)

	status, body, _ = f.post("/settings/password", url.Values{
		"current_password": {"nope"}, "password": {"password2"}, "password_confirmation": {"password2"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "The password is incorrect.")

	status, _, loc := f.post("/settings/delete", url.Values{"password": {"password1"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", loc)
	_, body, _ = f.get("/login")
	assert.Contains(t, body, "Account deleted")

	status, _, _ = f.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, status)
}

func TestLogout(t *testing.T) {
	f := newPanel(t)
	f.login("ann@x.com")
	status, _, loc := f.post("/logout", nil)
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", loc)
	status, _, _ = f.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, status)
}

func TestLocalReferer(t *testing.T) {
	assert.Equal(t, "/admin/users?page=2", localReferer("http://panel/admin/users?page=2"))
	assert.Equal(t, "/dashboard", localReferer(""))
	assert.Equal(t, "/x", localReferer("//evil.example/x"), "only the path is kept")
	assert.Equal(t, "/dashboard", localReferer("http://panel//evil.example"))
}

func TestPanicRendersErrorPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	eng, err := NewPanelEngine(Deps{
		API:      upstream.New(config.Upstream{BaseURL: "http://127.0.0.1:0"}, nil),
		Sessions: NewSessions(config.Session{Secret: "0123456789abcdef0123456789abcdef"}),
		List:     userlist.NewConfig(),
	})
	require.NoError(t, err)
	eng.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	eng.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Something went wrong.")
	assert.NotContains(t, rec.Body.String(), `"code"`)
}
