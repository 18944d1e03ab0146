package main

import (
	"context"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-gin-admin-panel/internal/core/cache"
	"go-gin-admin-panel/internal/core/config"
	"go-gin-admin-panel/internal/core/logger"
	"go-gin-admin-panel/internal/core/server"
	"go-gin-admin-panel/internal/theme"
	"go-gin-admin-panel/internal/upstream"
	"go-gin-admin-panel/internal/userlist"
	"go-gin-admin-panel/internal/web"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad("")
	log, cleanup := logger.New(logger.FromConfig(cfg.Log))
	defer cleanup()

	// 主题偏好和 /me 缓存共用一个后端
	var backend cache.Backend = cache.NewMemory()
	if cfg.Theme.Store == "redis" {
		rb := cache.NewRedis(cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rb.Ping(ctx)
		cancel()
		if err != nil {
			log.Fatal("redis ping", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rb.Close()
		backend = rb
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}
	shared := cache.New(backend)

	pc := cfg.UserList
	list := userlist.NewConfig(
		userlist.WithTitle(pc.Title),
		userlist.WithCreate(!pc.DisableCreate),
		userlist.WithEdit(!pc.DisableEdit),
		userlist.WithDelete(!pc.DisableDelete),
		userlist.WithSearch(!pc.DisableSearch),
		userlist.WithDarkMode(!pc.DisableDarkMode),
		userlist.WithActionStyle(userlist.ActionStyle(pc.Actions)),
	)

	r, err := web.NewPanelEngine(web.Deps{
		Log:      log,
		API:      upstream.New(cfg.Upstream, log),
		Sessions: web.NewSessions(cfg.Session),
		Themes:   theme.NewCacheStore(shared),
		Profiles: shared,
		List:     list,
		AppName:  cfg.App.Name,
		MaxAge:   cfg.Session.MaxAgeSec,
	})
	if err != nil {
		log.Fatal("load views", zap.Error(err))
	}
	srv := server.BuildServer(cfg.App.Panel, r, log)

	base := server.HumanURL(cfg.App.Panel)
	log.Info("admin panel starting",
		zap.String("addr", srv.Addr),
		zap.String("open", base+"/login"),
		zap.String("upstream", cfg.Upstream.BaseURL),
	)
	server.Run(srv, log, "admin panel")
}
