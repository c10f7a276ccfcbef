package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shakti-alerts/internal/cache"
	"shakti-alerts/internal/config"
	"shakti-alerts/internal/database"
	"shakti-alerts/internal/httpapi"
	"shakti-alerts/internal/logger"
	"shakti-alerts/internal/notify"
	"shakti-alerts/internal/redisutil"
	"shakti-alerts/internal/repository"
	"shakti-alerts/internal/service"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "shakti-alerts")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 连接数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. 连接 Redis（缓存与刷新信号；连接失败时降级为无缓存）
	var cacheManager *cache.AlertCacheManager
	var notifier *notify.RefreshNotifier
	redisClient := redisutil.NewRedisClient(&cfg.Redis)
	if err := redisutil.Ping(ctx, redisClient); err != nil {
		log.Warn("Redis unavailable, running without summary cache", zap.Error(err))
		_ = redisClient.Close()
		redisClient = nil
	} else {
		cacheManager = cache.NewAlertCacheManager(cfg, redisClient, log)
		notifier = notify.NewRefreshNotifier(redisClient, cfg.Alerts.RefreshChannelPrefix, log)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 5. 组装仓库与服务
	callLogsRepo := repository.NewPostgresCallLogsRepository(db, log)
	viewedLogsRepo := repository.NewPostgresViewedLogsRepository(db, log)
	employeesRepo := repository.NewPostgresEmployeesRepository(db, log)

	window := time.Duration(cfg.Alerts.ApproachingWindow) * time.Minute
	alertService := service.NewAlertService(
		callLogsRepo,
		viewedLogsRepo,
		employeesRepo,
		cacheManager,
		notifier,
		window,
		log,
	)

	// 6. 注册路由并启动 HTTP 服务
	router := httpapi.NewRouter(log)
	router.RegisterAlertRoutes(httpapi.NewAlertHandler(alertService, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// 7. 等待信号（优雅关闭）
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server error", zap.Error(err))
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)

	log.Info("Alert service stopped")
}
