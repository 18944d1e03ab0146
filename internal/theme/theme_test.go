package theme

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (Mode, bool, error) { return "", false, errors.New("down") }
func (brokenStore) Set(context.Context, string, Mode) error         { return errors.New("down") }

func TestResolveOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := Resolver{Store: s}

	m, err := r.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, Light, m)

	m, _ = r.Resolve(ctx, "u1", "dark")
	assert.Equal(t, Dark, m, "system hint wins without a stored preference")

	require.NoError(t, s.Set(ctx, "u1", Light))
	m, _ = r.Resolve(ctx, "u1", "dark")
	assert.Equal(t, Light, m, "stored preference wins over the hint")

	m, err = Resolver{Store: brokenStore{}}.Resolve(ctx, "u1", "dark")
	assert.Error(t, err)
	assert.Equal(t, Dark, m)
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode(" DARK ")
	assert.True(t, ok)
	assert.Equal(t, Dark, m)
	_, ok = ParseMode("no-preference")
	assert.False(t, ok)
	assert.Equal(t, Light, Dark.Toggle())
}

func TestMiddlewareAndToggle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewMemoryStore()
	r := gin.New()
	r.Use(Middleware(Resolver{Store: store}, zap.NewNop(), false))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, string(From(c).Mode)) })
	r.POST("/theme", func(c *gin.Context) {
		m, err := Toggle(c, store)
		require.NoError(t, err)
		c.String(http.StatusOK, string(m))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HintHeader, "dark")
	r.ServeHTTP(rec, req)
	assert.Equal(t, "dark", rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/theme", nil)
	req.AddCookie(cookies[0])
	r.ServeHTTP(rec, req)
	assert.Equal(t, "dark", rec.Body.String(), "no hint on this request, light toggles to dark")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	r.ServeHTTP(rec, req)
	assert.Equal(t, "dark", rec.Body.String())
}

func TestMiddlewareSecureCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, secure := range []bool{true, false} {
		r := gin.New()
		r.Use(Middleware(Resolver{Store: NewMemoryStore()}, zap.NewNop(), secure))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "theme_sid", cookies[0].Name)
		assert.Equal(t, secure, cookies[0].Secure)
		assert.True(t, cookies[0].HttpOnly)
	}
}
