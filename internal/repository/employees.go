package repository

import (
	"context"
)

// EmployeesRepository 员工仓库接口
type EmployeesRepository interface {
	// GetActiveTeamMemberIDs 获取某团队在职成员的员工ID列表
	// 团队范围聚合前先解析成员，再按成员列表查询通话记录
	GetActiveTeamMemberIDs(ctx context.Context, teamID string) ([]string, error)
}
