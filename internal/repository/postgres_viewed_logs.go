package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostgresViewedLogsRepository 查看记录仓库实现
type PostgresViewedLogsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresViewedLogsRepository 创建查看记录仓库
func NewPostgresViewedLogsRepository(db *sql.DB, logger *zap.Logger) *PostgresViewedLogsRepository {
	return &PostgresViewedLogsRepository{
		db:     db,
		logger: logger,
	}
}

// 确保实现了接口
var _ ViewedLogsRepository = (*PostgresViewedLogsRepository)(nil)

// GetViewedCaseIDs 获取某员工自 since 起已查看的案件ID集合
func (r *PostgresViewedLogsRepository) GetViewedCaseIDs(ctx context.Context, employeeID string, since time.Time) (map[string]struct{}, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("employee_id is required")
	}

	query := `
		SELECT case_id
		FROM viewed_case_logs
		WHERE employee_id = $1
		  AND viewed_at >= $2
	`

	rows, err := r.db.QueryContext(ctx, query, employeeID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query viewed logs: %w", err)
	}
	defer rows.Close()

	viewed := make(map[string]struct{})
	for rows.Next() {
		var caseID string
		if err := rows.Scan(&caseID); err != nil {
			return nil, fmt.Errorf("failed to scan viewed log: %w", err)
		}
		viewed[caseID] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate viewed logs: %w", err)
	}

	return viewed, nil
}

// InsertViewed 追加一条查看记录
func (r *PostgresViewedLogsRepository) InsertViewed(ctx context.Context, caseID, employeeID string, viewedAt time.Time) error {
	if caseID == "" {
		return fmt.Errorf("case_id is required")
	}
	if employeeID == "" {
		return fmt.Errorf("employee_id is required")
	}

	query := `
		INSERT INTO viewed_case_logs (view_id, case_id, employee_id, viewed_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, uuid.New().String(), caseID, employeeID, viewedAt)
	if err != nil {
		return fmt.Errorf("failed to insert viewed log: %w", err)
	}

	return nil
}
