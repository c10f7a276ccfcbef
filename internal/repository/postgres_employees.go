package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// PostgresEmployeesRepository 员工仓库实现
type PostgresEmployeesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresEmployeesRepository 创建员工仓库
func NewPostgresEmployeesRepository(db *sql.DB, logger *zap.Logger) *PostgresEmployeesRepository {
	return &PostgresEmployeesRepository{
		db:     db,
		logger: logger,
	}
}

// 确保实现了接口
var _ EmployeesRepository = (*PostgresEmployeesRepository)(nil)

// GetActiveTeamMemberIDs 获取某团队在职成员的员工ID列表
func (r *PostgresEmployeesRepository) GetActiveTeamMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	if teamID == "" {
		return nil, fmt.Errorf("team_id is required")
	}

	query := `
		SELECT employee_id
		FROM employees
		WHERE team_id = $1
		  AND status = 'active'
	`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	memberIDs := []string{}
	for rows.Next() {
		var employeeID string
		if err := rows.Scan(&employeeID); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		memberIDs = append(memberIDs, employeeID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team members: %w", err)
	}

	return memberIDs, nil
}
