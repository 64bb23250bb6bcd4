package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jengzang/arena-zones-backend/internal/api"
	"github.com/jengzang/arena-zones-backend/internal/config"
	"github.com/jengzang/arena-zones-backend/internal/database"
	"github.com/jengzang/arena-zones-backend/internal/logger"

	// Import analyzer packages to register them
	_ "github.com/jengzang/arena-zones-backend/internal/analysis/behavior"
	_ "github.com/jengzang/arena-zones-backend/internal/analysis/temporal"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	db, err := database.OpenAndMigrate(ctx, database.Config{Path: cfg.DBPath}, appLog)
	if err != nil {
		appLog.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	// 初始化路由
	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           api.SetupRouter(cfg, db, appLog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		appLog.Info("server starting", "addr", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("graceful shutdown failed", "error", err)
	}
}
