package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yanryp/servicedesk-sub002/pkg/database"
	"github.com/yanryp/servicedesk-sub002/pkg/logger"
	"github.com/yanryp/servicedesk-sub002/pkg/redis"
)

// Run 启动HTTP服务并阻塞等待退出信号，收到信号后优雅关停
func (a *App) Run() error {
	addr := fmt.Sprintf(":%d", a.Config.Server.APIPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: a.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Infof("Received signal %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}

	if err := redis.Close(); err != nil {
		logger.Warnf("Redis close error: %v", err)
	}
	if err := database.Close(); err != nil {
		logger.Warnf("Database close error: %v", err)
	}
	logger.Sync()

	logger.Infof("Server stopped")
	return nil
}
