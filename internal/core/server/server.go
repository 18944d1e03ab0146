package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-gin-admin-panel/internal/core/config"
	"go-gin-admin-panel/internal/core/logger"
)

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

func BuildServer(h config.HTTP, handler http.Handler, l *zap.Logger) *http.Server {
	return &http.Server{
		Addr:           Addr(h.Host, h.Port),
		Handler:        handler,
		ReadTimeout:    h.ReadTimeout(),
		WriteTimeout:   h.WriteTimeout(),
		IdleTimeout:    h.IdleTimeout(),
		MaxHeaderBytes: 1 << 20, // 1MB
		ErrorLog:       logger.StdLogger(l),
	}
}

// HumanURL 启动日志里打印可点击地址
func HumanURL(h config.HTTP) string {
	host := h.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, h.Port)
}

// Run 异步监听，收到 SIGINT/SIGTERM 后优雅关闭
func Run(srv *http.Server, l *zap.Logger, name string) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal(name+" start FAILED", zap.Error(err))
		}
	}()
	l.Info(name+" started", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Warn(name+" shutdown", zap.Error(err))
	}
	l.Info(name + " stopped gracefully")
}
