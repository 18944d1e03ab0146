package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/sessions"

	"go-gin-admin-panel/internal/core/auth"
	"go-gin-admin-panel/internal/core/config"
	"go-gin-admin-panel/internal/domain"
	"go-gin-admin-panel/internal/userlist"
)

// session 里的 key；值都是 string，避免 gob 注册自定义类型
const (
	keyToken = "token"
	keyUser  = "user"
	keyFlash = "flash"
)

var errNoSession = errors.New("no panel session")

// Sessions cookie 会话：上游 token + 当前用户摘要 + toast
type Sessions struct {
	name   string
	maxAge int
	secure bool
	store  sessions.Store
}

func NewSessions(cfg config.Session) *Sessions {
	secret := cfg.Secret
	if secret == "" {
		secret = "change-me-change-me-change-me-32b"
	}
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAgeSec,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	name := cfg.Name
	if name == "" {
		name = "admin_panel"
	}
	return &Sessions{name: name, maxAge: cfg.MaxAgeSec, secure: cfg.Secure, store: cs}
}

// Secure 面板其它 cookie 跟随会话 cookie 的 Secure 设置
func (s *Sessions) Secure() bool { return s.secure }

// Session 单个请求内的会话视图
type Session struct {
	raw *sessions.Session
	c   *gin.Context
}

// Get 签名失效时返回一个新会话，不报错
func (s *Sessions) Get(c *gin.Context) *Session {
	if v, ok := c.Get(ctxSession); ok {
		return v.(*Session)
	}
	raw, err := s.store.Get(c.Request, s.name)
	if err != nil {
		raw, _ = s.store.New(c.Request, s.name)
	}
	sess := &Session{raw: raw, c: c}
	c.Set(ctxSession, sess)
	return sess
}

func (s *Session) Save() error { return s.raw.Save(s.c.Request, s.c.Writer) }

func (s *Session) Token() string {
	v, _ := s.raw.Values[keyToken].(string)
	return v
}

// User 登录时写入的用户摘要
func (s *Session) User() (domain.User, error) {
	v, _ := s.raw.Values[keyUser].(string)
	if v == "" {
		return domain.User{}, errNoSession
	}
	var u domain.User
	if err := json.Unmarshal([]byte(v), &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *Session) SetUser(u domain.User) {
	b, _ := json.Marshal(u)
	s.raw.Values[keyUser] = string(b)
}

// Login remember=false 时为浏览器会话 cookie
func (s *Session) Login(token string, u domain.User, remember bool, maxAge int) {
	s.raw.Values[keyToken] = token
	s.SetUser(u)
	s.raw.Options.MaxAge = 0
	if remember {
		s.raw.Options.MaxAge = maxAge
	}
}

// Expired token 过期时间只用于提前跳登录，不做签名校验
func (s *Session) Expired(now time.Time) bool {
	exp, err := auth.PeekExpiry(s.Token())
	if err != nil {
		return true
	}
	return !exp.IsZero() && now.After(exp)
}

// Clear 清空登录态，保留未读 toast
func (s *Session) Clear() {
	delete(s.raw.Values, keyToken)
	delete(s.raw.Values, keyUser)
}

func (s *Session) flashes() []userlist.Notification {
	v, _ := s.raw.Values[keyFlash].(string)
	if v == "" {
		return nil
	}
	var out []userlist.Notification
	_ = json.Unmarshal([]byte(v), &out)
	return out
}

// Notify 实现 userlist.Notifier；下次渲染时弹出
func (s *Session) Notify(n userlist.Notification) {
	b, _ := json.Marshal(append(s.flashes(), n))
	s.raw.Values[keyFlash] = string(b)
}

// PopFlashes 读出并清空
func (s *Session) PopFlashes() []userlist.Notification {
	out := s.flashes()
	delete(s.raw.Values, keyFlash)
	return out
}
