package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bingooyong/release-tracker/internal/checklist"
	"github.com/bingooyong/release-tracker/internal/config"
	"github.com/bingooyong/release-tracker/internal/handler"
	"github.com/bingooyong/release-tracker/internal/logger"
	"github.com/bingooyong/release-tracker/internal/repository"
	"github.com/bingooyong/release-tracker/internal/router"
	"github.com/bingooyong/release-tracker/internal/service"
	"github.com/bingooyong/release-tracker/internal/version"
	"github.com/bingooyong/release-tracker/pkg/database"
	"go.uber.org/zap"
)

var (
	configFile  = flag.String("config", "configs/release-tracker.yaml", "配置文件路径")
	showVersion = flag.Bool("version", false, "打印版本信息后退出")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get())
		return
	}

	// 1. 加载配置
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	log, err := logger.Init(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log.Info("release tracker starting...",
		zap.String("version", version.Version),
		zap.String("git_commit", version.GitCommit),
		zap.String("mode", cfg.Server.Mode),
		zap.String("driver", cfg.Database.Driver),
	)

	// 3. 构建检查项
	steps, err := checklist.New(cfg.Checklist.Steps)
	if err != nil {
		log.Fatal("Invalid checklist", zap.Error(err))
	}

	// 4. 初始化数据库
	db, err := database.Init(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to init database", zap.Error(err))
	}

	if err := database.AutoMigrate(db, log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database migrated successfully")

	// 5. 组装各层
	releaseRepo := repository.NewReleaseRepository(db, steps)
	releaseService := service.NewReleaseService(releaseRepo, log)
	releaseHandler := handler.NewReleaseHandler(releaseService, steps, log)

	engine := router.New(cfg, releaseHandler, log)

	// 6. 启动HTTP服务器
	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", httpServer.Addr),
			zap.String("base_path", cfg.Server.BasePath),
			zap.Int("steps", steps.Len()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 7. 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("release tracker shutting down...")

	// 8. 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	if err := database.Close(); err != nil {
		log.Error("Database close failed", zap.Error(err))
	}

	log.Info("release tracker stopped")
}
