package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shakti-alerts/internal/client"
	"shakti-alerts/internal/config"
	"shakti-alerts/internal/logger"
	"shakti-alerts/internal/notify"
	"shakti-alerts/internal/poller"
	"shakti-alerts/internal/redisutil"

	"go.uber.org/zap"
)

// 命令行版的提醒指示器：按固定周期轮询聚合接口，
// 状态或案件数变化时打印一行指示文案
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "alert-indicator")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	apiURL := os.Getenv("ALERTS_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
	employeeID := os.Getenv("EMPLOYEE_ID")
	if employeeID == "" {
		log.Fatal("EMPLOYEE_ID environment variable is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 刷新信号订阅是可选的：Redis 不可用时退化为纯定时轮询
	var refresh <-chan struct{}
	redisClient := redisutil.NewRedisClient(&cfg.Redis)
	if err := redisutil.Ping(ctx, redisClient); err != nil {
		log.Warn("Redis unavailable, polling without refresh signals", zap.Error(err))
		_ = redisClient.Close()
	} else {
		defer redisClient.Close()
		notifier := notify.NewRefreshNotifier(redisClient, cfg.Alerts.RefreshChannelPrefix, log)
		ch, stop := notifier.Subscribe(ctx, employeeID)
		defer stop()
		refresh = ch
	}

	alertsClient := client.NewAlertsClient(apiURL, log)
	interval := time.Duration(cfg.Alerts.PollInterval) * time.Second
	alertPoller := poller.NewAlertPoller(alertsClient, employeeID, interval, refresh, log)

	go func() {
		if err := alertPoller.Start(ctx); err != nil {
			log.Error("Poller stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// 每秒采样快照，仅在变化时输出
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastStatus := ""
	lastCount := -1
	for {
		select {
		case <-sigCh:
			log.Info("Indicator stopped")
			return
		case <-ticker.C:
			snapshot := alertPoller.Snapshot()
			status := string(snapshot.Status)
			count := alertPoller.BadgeCount()
			if status == lastStatus && count == lastCount {
				continue
			}
			lastStatus = status
			lastCount = count
			fmt.Printf("[%s] %s (%d cases)\n",
				time.Now().Format("15:04:05"),
				poller.Indicator(snapshot.Status),
				count,
			)
		}
	}
}
