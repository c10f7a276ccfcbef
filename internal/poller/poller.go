package poller

import (
	"context"
	"sync"
	"time"

	"shakti-alerts/internal/models"

	"go.uber.org/zap"
)

// AlertFetcher 轮询端取数接口
// 由 service.AlertService（进程内）与 client.AlertsClient（HTTP）共同实现
type AlertFetcher interface {
	FetchAlerts(ctx context.Context, employeeID string) (*models.AlertSummary, error)
}

// AlertPoller 提醒轮询器（对应原版 AlertButton 的 60 秒刷新）
// 固定间隔重新拉取单用户聚合，保留最近一次成功的快照；
// 上一次请求未返回时跳过本轮（防止后端变慢时请求无界堆积）
type AlertPoller struct {
	fetcher    AlertFetcher
	employeeID string
	interval   time.Duration
	logger     *zap.Logger

	// 可选的强制刷新信号（notify.RefreshNotifier.Subscribe 的输出）
	refresh <-chan struct{}

	mu       sync.RWMutex
	snapshot *models.AlertSummary

	inFlightMu sync.Mutex
	inFlight   bool
}

// NewAlertPoller 创建提醒轮询器
// refresh 可为 nil（仅定时轮询）
func NewAlertPoller(
	fetcher AlertFetcher,
	employeeID string,
	interval time.Duration,
	refresh <-chan struct{},
	logger *zap.Logger,
) *AlertPoller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &AlertPoller{
		fetcher:    fetcher,
		employeeID: employeeID,
		interval:   interval,
		logger:     logger,
		refresh:    refresh,
		snapshot:   &models.AlertSummary{Status: models.StatusGreen, Cases: []models.Alert{}},
	}
}

// Start 启动轮询（阻塞直到 ctx 取消）
func (p *AlertPoller) Start(ctx context.Context) error {
	p.logger.Info("Alert poller started",
		zap.String("employee_id", p.employeeID),
		zap.Duration("interval", p.interval),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// 立即执行一次
	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Alert poller stopped",
				zap.String("employee_id", p.employeeID),
			)
			return nil
		case <-ticker.C:
			p.poll(ctx)
		case _, ok := <-p.refresh:
			if !ok {
				// 刷新信号源关闭，退回纯定时轮询
				p.refresh = nil
				continue
			}
			p.poll(ctx)
		}
	}
}

// poll 发起一次拉取；上一次仍在途时跳过
func (p *AlertPoller) poll(ctx context.Context) {
	p.inFlightMu.Lock()
	if p.inFlight {
		p.inFlightMu.Unlock()
		p.logger.Debug("Skipping poll, previous request still in flight",
			zap.String("employee_id", p.employeeID),
		)
		return
	}
	p.inFlight = true
	p.inFlightMu.Unlock()

	go func() {
		defer func() {
			p.inFlightMu.Lock()
			p.inFlight = false
			p.inFlightMu.Unlock()
		}()

		summary, err := p.fetcher.FetchAlerts(ctx, p.employeeID)
		if err != nil {
			// 失败保留上一次成功的快照，等待下一轮
			p.logger.Error("Failed to fetch alerts",
				zap.String("employee_id", p.employeeID),
				zap.Error(err),
			)
			return
		}

		// 取消后到达的迟到响应直接丢弃
		if ctx.Err() != nil {
			return
		}

		p.mu.Lock()
		p.snapshot = summary
		p.mu.Unlock()
	}()
}

// Snapshot 最近一次成功的聚合结果
func (p *AlertPoller) Snapshot() *models.AlertSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// BadgeCount 角标数量：返回的全部提醒数（不只是 RED）
func (p *AlertPoller) BadgeCount() int {
	return len(p.Snapshot().Cases)
}

// Indicator 状态到指示文案的映射
func Indicator(status models.AlertStatus) string {
	switch status {
	case models.StatusRed:
		return "URGENT"
	case models.StatusYellow:
		return "APPROACHING"
	default:
		return "ALL CLEAR"
	}
}
