package service

import (
	"context"
	"time"

	"shakti-alerts/internal/cache"
	"shakti-alerts/internal/classifier"
	"shakti-alerts/internal/models"
	"shakti-alerts/internal/notify"
	"shakti-alerts/internal/repository"

	"go.uber.org/zap"
)

// AlertService 提醒聚合服务
// 把分散在通话记录里的 PTP / 回拨承诺合并为一份按紧急度排序的提醒列表，
// 并为单用户范围推导整体状态。提醒是尽力而为的：任何存储层失败都只记录
// 日志并退化为空结果 / GREEN，绝不向调用方抛错
type AlertService struct {
	callLogs   repository.CallLogsRepository
	viewedLogs repository.ViewedLogsRepository
	employees  repository.EmployeesRepository
	cache      *cache.AlertCacheManager
	notifier   *notify.RefreshNotifier
	logger     *zap.Logger

	// 临近窗口（YELLOW 判定），默认 30 分钟
	window time.Duration

	// 时钟注入点，测试中替换以固定"今天"的边界
	now func() time.Time
}

// NewAlertService 创建提醒聚合服务
// cacheManager 与 notifier 可为 nil（禁用缓存写穿 / 刷新信号）
func NewAlertService(
	callLogs repository.CallLogsRepository,
	viewedLogs repository.ViewedLogsRepository,
	employees repository.EmployeesRepository,
	cacheManager *cache.AlertCacheManager,
	notifier *notify.RefreshNotifier,
	window time.Duration,
	logger *zap.Logger,
) *AlertService {
	if window <= 0 {
		window = classifier.DefaultApproachingWindow
	}
	return &AlertService{
		callLogs:   callLogs,
		viewedLogs: viewedLogs,
		employees:  employees,
		cache:      cacheManager,
		notifier:   notifier,
		logger:     logger,
		window:     window,
		now:        time.Now,
	}
}

// dayBounds 当日边界 [零点, 23:59:59.999...]
func dayBounds(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.Add(24*time.Hour - time.Nanosecond)
}

// GetAlerts 单用户范围聚合（应用已查看抑制）
// 失败时返回 {GREEN, []}
func (s *AlertService) GetAlerts(ctx context.Context, employeeID string) *models.AlertSummary {
	empty := &models.AlertSummary{Status: models.StatusGreen, Cases: []models.Alert{}}

	now := s.now()
	from, to := dayBounds(now)
	scope := repository.EmployeeScope(employeeID)

	commitments, err := s.fetchCommitments(ctx, scope, from, to)
	if err != nil {
		s.logger.Error("Failed to fetch commitments",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return empty
	}

	// 当日已查看集合（仅单用户范围使用）
	viewed, err := s.viewedLogs.GetViewedCaseIDs(ctx, employeeID, from)
	if err != nil {
		s.logger.Error("Failed to fetch viewed set",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return empty
	}

	alerts := s.buildAlerts(commitments, viewed, now)

	summary := &models.AlertSummary{
		Status: classifier.Overall(alerts),
		Cases:  alerts,
	}

	// 缓存写穿（尽力而为）
	if s.cache != nil {
		if err := s.cache.UpdateSummaryCache(ctx, employeeID, summary); err != nil {
			s.logger.Warn("Failed to update summary cache",
				zap.String("employee_id", employeeID),
				zap.Error(err),
			)
		}
	}

	return summary
}

// GetAlertsByTenant 租户范围聚合（不应用已查看抑制）
// 失败时返回空列表
func (s *AlertService) GetAlertsByTenant(ctx context.Context, tenantID string) []models.Alert {
	now := s.now()
	from, to := dayBounds(now)

	commitments, err := s.fetchCommitments(ctx, repository.TenantScope(tenantID), from, to)
	if err != nil {
		s.logger.Error("Failed to fetch tenant commitments",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		return []models.Alert{}
	}

	return s.buildAlerts(commitments, nil, now)
}

// GetAlertsByTeam 团队范围聚合（先解析在职成员，不应用已查看抑制）
// 失败或团队无成员时返回空列表
func (s *AlertService) GetAlertsByTeam(ctx context.Context, teamID string) []models.Alert {
	now := s.now()
	from, to := dayBounds(now)

	memberIDs, err := s.employees.GetActiveTeamMemberIDs(ctx, teamID)
	if err != nil {
		s.logger.Error("Failed to resolve team members",
			zap.String("team_id", teamID),
			zap.Error(err),
		)
		return []models.Alert{}
	}
	if len(memberIDs) == 0 {
		return []models.Alert{}
	}

	commitments, err := s.fetchCommitments(ctx, repository.TeamScope(memberIDs), from, to)
	if err != nil {
		s.logger.Error("Failed to fetch team commitments",
			zap.String("team_id", teamID),
			zap.Error(err),
		)
		return []models.Alert{}
	}

	return s.buildAlerts(commitments, nil, now)
}

// MarkAsViewed 记录用户打开了某个案件（抑制当日后续升级）
// 写入失败只记录日志，不阻塞触发它的界面动作
func (s *AlertService) MarkAsViewed(ctx context.Context, caseID, employeeID string) {
	if err := s.viewedLogs.InsertViewed(ctx, caseID, employeeID, s.now()); err != nil {
		s.logger.Error("Failed to mark case as viewed",
			zap.String("case_id", caseID),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return
	}

	// 通知该员工的轮询端立即刷新（尽力而为）
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, employeeID); err != nil {
			s.logger.Warn("Failed to publish refresh signal",
				zap.String("employee_id", employeeID),
				zap.Error(err),
			)
		}
	}
}

// FetchAlerts 轮询端取数入口（poller.AlertFetcher）
func (s *AlertService) FetchAlerts(ctx context.Context, employeeID string) (*models.AlertSummary, error) {
	return s.GetAlerts(ctx, employeeID), nil
}

// fetchCommitments 拉取范围内今日到期的两类承诺
func (s *AlertService) fetchCommitments(ctx context.Context, scope repository.Scope, from, to time.Time) ([]models.Commitment, error) {
	ptps, err := s.callLogs.GetPTPDueToday(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}

	callbacks, err := s.callLogs.GetCallbacksDueToday(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}

	return append(ptps, callbacks...), nil
}

// buildAlerts 分级 + 排序
// GREEN 项保留在输出中（代表"今日日程"），viewed 为 nil 表示不应用抑制
func (s *AlertService) buildAlerts(commitments []models.Commitment, viewed map[string]struct{}, now time.Time) []models.Alert {
	alerts := make([]models.Alert, 0, len(commitments))
	for _, c := range commitments {
		_, isViewed := viewed[c.CaseID]
		alerts = append(alerts, models.Alert{
			Commitment: c,
			Status:     classifier.Classify(c.DueDate, isViewed, now, s.window),
			IsViewed:   isViewed,
		})
	}

	classifier.SortAlerts(alerts)
	return alerts
}
