package main

import (
	"context"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-gin-admin-panel/internal/core/auth"
	"go-gin-admin-panel/internal/core/config"
	"go-gin-admin-panel/internal/core/database"
	"go-gin-admin-panel/internal/core/logger"
	"go-gin-admin-panel/internal/core/server"
	"go-gin-admin-panel/internal/feature/user"
	"go-gin-admin-panel/internal/repo"
	"go-gin-admin-panel/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad("")
	log, cleanup := logger.New(logger.FromConfig(cfg.Log))
	defer cleanup()

	// 仓库：memory 用于本地演示，其余走 gorm
	var users user.Repository
	if cfg.DB.Driver == "memory" {
		users = repo.NewMemoryUserRepo()
		log.Warn("using in-memory user store, data is lost on restart")
	} else {
		db, err := database.Open(cfg.DB, log)
		if err != nil {
			log.Fatal("db open", zap.Error(err))
		}
		gr := repo.NewUserRepo(db)
		if cfg.DB.AutoMigrate {
			if err := gr.Migrate(); err != nil {
				log.Fatal("automigrate failed", zap.Error(err))
			}
			log.Info("automigrate done")
		}
		users = gr
	}
	svc := user.NewService(users)

	if b := cfg.Bootstrap; b.AdminEmail != "" && b.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := svc.EnsureAdmin(ctx, b.AdminName, b.AdminEmail, b.AdminPassword)
		cancel()
		if err != nil {
			log.Fatal("bootstrap admin", zap.Error(err))
		}
		if created {
			log.Info("bootstrap admin created", zap.String("email", b.AdminEmail))
		}
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	r := router.NewAPIEngine(log, svc, jwter)
	srv := server.BuildServer(cfg.App.HTTP, r, log)

	base := server.HumanURL(cfg.App.HTTP)
	log.Info("user api starting",
		zap.String("addr", srv.Addr),
		zap.String("open", base),
		zap.String("health", base+"/health"),
		zap.String("api_v1", base+router.APIPrefix),
	)
	server.Run(srv, log, "user api")
}
