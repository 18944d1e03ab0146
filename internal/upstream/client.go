package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go-gin-admin-panel/internal/core/config"
	"go-gin-admin-panel/internal/domain"
	"go-gin-admin-panel/internal/userlist"
)

const apiPrefix = "/api/v1"

var (
	callTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "upstream_calls_total", Help: "Count of calls to the users API"},
		[]string{"op", "code"},
	)
	callLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_call_duration_seconds",
			Help:    "Latency of calls to the users API",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"},
	)
)

func init() { prometheus.MustRegister(callTotal, callLatency) }

type ridKey struct{}

// WithRequestID 透传到上游的 X-Request-ID
func WithRequestID(ctx context.Context, rid string) context.Context {
	if rid == "" {
		return ctx
	}
	return context.WithValue(ctx, ridKey{}, rid)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

func New(cfg config.Upstream, l *zap.Logger) *Client {
	if l == nil {
		l = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		HTTP:    &http.Client{Timeout: cfg.Timeout()},
		Log:     l,
	}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("upstream %s: encode: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+apiPrefix+path, rd)
	if err != nil {
		return fmt.Errorf("upstream %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if rid, ok := ctx.Value(ridKey{}).(string); ok {
		req.Header.Set("X-Request-ID", rid)
	}

	start := time.Now()
	res, err := c.HTTP.Do(req)
	callLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		callTotal.WithLabelValues(op, "transport").Inc()
		c.Log.Warn("upstream call failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("upstream %s: %w", op, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		callTotal.WithLabelValues(op, strconv.Itoa(res.StatusCode)).Inc()
		if res.StatusCode >= 400 {
			return classify(res.StatusCode, http.StatusText(res.StatusCode), nil)
		}
		return fmt.Errorf("upstream %s: decode: %w", op, err)
	}
	callTotal.WithLabelValues(op, strconv.Itoa(env.Code)).Inc()
	c.Log.Debug("upstream call",
		zap.String("op", op),
		zap.Int("status", res.StatusCode),
		zap.Int("code", env.Code),
		zap.Duration("latency", time.Since(start)),
	)

	if env.Code != 0 {
		return classify(env.Code, env.Msg, env.Data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("upstream %s: decode data: %w", op, err)
	}
	return nil
}

func classify(code int, msg string, data json.RawMessage) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnprocessableEntity:
		var d struct {
			Errors map[string]string `json:"errors"`
		}
		if len(data) > 0 {
			_ = json.Unmarshal(data, &d)
		}
		return &ValidationError{Msg: msg, Fields: d.Errors}
	}
	return &APIError{Code: code, Msg: msg}
}

/* ---------- auth / me ---------- */

// AuthResult 登录 / 注册返回
type AuthResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string, remember bool) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", "", map[string]any{
		"email": email, "password": password, "remember": remember,
	}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, in userlist.Input) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, "auth.register", http.MethodPost, "/auth/register", "", in, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context, token string) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, "me.get", http.MethodGet, "/me", token, nil, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, token, name, email string) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, "me.update", http.MethodPut, "/me", token, map[string]string{"name": name, "email": email}, &out)
	return out, err
}

type PasswordInput struct {
	CurrentPassword      string `json:"current_password" form:"current_password"`
	Password             string `json:"password" form:"password"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
}

func (c *Client) UpdatePassword(ctx context.Context, token string, in PasswordInput) error {
	return c.do(ctx, "me.password", http.MethodPut, "/me/password", token, in, nil)
}

func (c *Client) DeleteAccount(ctx context.Context, token, password string) error {
	return c.do(ctx, "me.delete", http.MethodDelete, "/me", token, map[string]string{"password": password}, nil)
}

/* ---------- admin users ---------- */

func (c *Client) ListUsers(ctx context.Context, token string, page int) (userlist.Page, error) {
	if page < 1 {
		page = 1
	}
	var out userlist.Page
	q := url.Values{"page": {strconv.Itoa(page)}}
	err := c.do(ctx, "users.list", http.MethodGet, "/admin/users?"+q.Encode(), token, nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, token string, in userlist.Input) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, "users.create", http.MethodPost, "/admin/users", token, in, &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, token string, id uint64, in userlist.Input) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, "users.update", http.MethodPut, userPath(id), token, in, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, token string, id uint64) error {
	return c.do(ctx, "users.delete", http.MethodDelete, userPath(id), token, nil, nil)
}

func userPath(id uint64) string { return "/admin/users/" + strconv.FormatUint(id, 10) }

// Session 绑定 token 的客户端，实现 userlist.Mutator
type Session struct {
	c     *Client
	token string
}

func (c *Client) WithToken(token string) *Session { return &Session{c: c, token: token} }

func (s *Session) CreateUser(ctx context.Context, in userlist.Input) (domain.User, error) {
	return s.c.CreateUser(ctx, s.token, in)
}

func (s *Session) UpdateUser(ctx context.Context, id uint64, in userlist.Input) (domain.User, error) {
	return s.c.UpdateUser(ctx, s.token, id, in)
}

func (s *Session) DeleteUser(ctx context.Context, id uint64) error {
	return s.c.DeleteUser(ctx, s.token, id)
}
