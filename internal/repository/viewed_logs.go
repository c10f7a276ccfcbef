package repository

import (
	"context"
	"time"
)

// ViewedLogsRepository 查看记录仓库接口
// viewed_case_logs 为只追加日志表，同一案件可出现多行，读取时按 case_id 去重为集合
type ViewedLogsRepository interface {
	// GetViewedCaseIDs 获取某员工自 since 起已查看的案件ID集合
	// since 通常为当日零点，保证昨日的查看记录不会抑制今日提醒
	GetViewedCaseIDs(ctx context.Context, employeeID string, since time.Time) (map[string]struct{}, error)

	// InsertViewed 追加一条查看记录（重复写入无害）
	InsertViewed(ctx context.Context, caseID, employeeID string, viewedAt time.Time) error
}
