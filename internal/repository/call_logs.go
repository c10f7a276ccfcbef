package repository

import (
	"context"
	"time"

	"shakti-alerts/internal/models"
)

// Scope 聚合范围：单个话务员、团队成员列表或整个租户
// 三者互斥，按声明顺序取第一个非空项
type Scope struct {
	EmployeeID    string
	TeamMemberIDs []string
	TenantID      string
}

// EmployeeScope 单人范围
func EmployeeScope(employeeID string) Scope {
	return Scope{EmployeeID: employeeID}
}

// TeamScope 团队成员范围（成员ID由 EmployeesRepository 预先解析）
func TeamScope(memberIDs []string) Scope {
	return Scope{TeamMemberIDs: memberIDs}
}

// TenantScope 租户范围
func TenantScope(tenantID string) Scope {
	return Scope{TenantID: tenantID}
}

// CallLogsRepository 通话记录仓库接口
type CallLogsRepository interface {
	// GetPTPDueToday 查询范围内今日到期的 PTP 承诺
	// call_status 匹配 ptp/promise（不区分大小写），ptp_date 落在 [from, to]
	GetPTPDueToday(ctx context.Context, scope Scope, from, to time.Time) ([]models.Commitment, error)

	// GetCallbacksDueToday 查询范围内今日到期且未完成的回拨承诺
	// call_status = 'CALL_BACK' 且 callback_completed = false，callback_date 落在 [from, to]
	GetCallbacksDueToday(ctx context.Context, scope Scope, from, to time.Time) ([]models.Commitment, error)
}
