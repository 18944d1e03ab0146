package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec  int `mapstructure:"idle_timeout_sec"`
}

func (h HTTP) ReadTimeout() time.Duration  { return secOr(h.ReadTimeoutSec, 5) }
func (h HTTP) WriteTimeout() time.Duration { return secOr(h.WriteTimeoutSec, 10) }
func (h HTTP) IdleTimeout() time.Duration  { return secOr(h.IdleTimeoutSec, 60) }

type App struct {
	Name  string
	Env   string
	HTTP  HTTP // 用户 API
	Panel HTTP // 管理面板
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
	Compress   bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int `mapstructure:"access_token_ttl_min"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

// Upstream 面板访问的用户 API
type Upstream struct {
	BaseURL    string `mapstructure:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

func (u Upstream) Timeout() time.Duration { return secOr(u.TimeoutSec, 10) }

type Session struct {
	Name      string
	Secret    string
	Secure    bool
	MaxAgeSec int `mapstructure:"max_age_sec"`
}

// UserList 用户列表视图的开关，默认全开
type UserList struct {
	Title           string
	Actions         string // inline | dropdown
	DisableCreate   bool   `mapstructure:"disable_create"`
	DisableEdit     bool   `mapstructure:"disable_edit"`
	DisableDelete   bool   `mapstructure:"disable_delete"`
	DisableSearch   bool   `mapstructure:"disable_search"`
	DisableDarkMode bool   `mapstructure:"disable_dark_mode"`
}

type Theme struct {
	Store string // memory | redis
}

// Bootstrap 启动时补一个管理员账号（可选）
type Bootstrap struct {
	AdminName     string `mapstructure:"admin_name"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	Upstream  Upstream
	Session   Session
	Theme     Theme
	UserList  UserList `mapstructure:"userlist"`
	Bootstrap Bootstrap
}

func defaults(v *viper.Viper) {
	v.SetDefault("app.name", "admin-panel")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.panel.host", "0.0.0.0")
	v.SetDefault("app.panel.port", 8090)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "admin-panel")
	v.SetDefault("jwt.access_token_ttl_min", 120)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("upstream.base_url", "http://127.0.0.1:8080")
	v.SetDefault("upstream.timeout_sec", 10)
	v.SetDefault("session.name", "admin_panel")
	v.SetDefault("session.max_age_sec", 7*24*3600)
	v.SetDefault("theme.store", "memory")
	v.SetDefault("userlist.title", "Users")
	v.SetDefault("userlist.actions", "inline")
}

// Load 读取 YAML 配置，APP_ 前缀环境变量可覆盖（APP_DB_DSN -> db.dsn）
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// MustLoad 失败直接退出，给 main 用
func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return c
}

func secOr(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}
