package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shakti-alerts/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresCallLogsRepository 通话记录仓库实现
type PostgresCallLogsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresCallLogsRepository 创建通话记录仓库
func NewPostgresCallLogsRepository(db *sql.DB, logger *zap.Logger) *PostgresCallLogsRepository {
	return &PostgresCallLogsRepository{
		db:     db,
		logger: logger,
	}
}

// 确保实现了接口
var _ CallLogsRepository = (*PostgresCallLogsRepository)(nil)

const commitmentColumns = `
	cl.log_id,
	cl.case_id,
	cl.employee_id,
	cl.call_status,
	cl.ptp_date,
	cl.callback_date,
	cl.callback_completed,
	cl.notes,
	cl.created_at,
	cc.customer_name,
	cc.loan_id
`

// scopeClause 构建范围过滤条件（单人 / 团队成员 / 租户）
func scopeClause(scope Scope, args *[]interface{}, argN *int) (string, error) {
	switch {
	case scope.EmployeeID != "":
		clause := fmt.Sprintf("cl.employee_id = $%d", *argN)
		*args = append(*args, scope.EmployeeID)
		*argN++
		return clause, nil
	case len(scope.TeamMemberIDs) > 0:
		clause := fmt.Sprintf("cl.employee_id = ANY($%d)", *argN)
		*args = append(*args, pq.Array(scope.TeamMemberIDs))
		*argN++
		return clause, nil
	case scope.TenantID != "":
		clause := fmt.Sprintf("cc.tenant_id = $%d", *argN)
		*args = append(*args, scope.TenantID)
		*argN++
		return clause, nil
	default:
		return "", fmt.Errorf("scope is required")
	}
}

// GetPTPDueToday 查询范围内今日到期的 PTP 承诺
func (r *PostgresCallLogsRepository) GetPTPDueToday(ctx context.Context, scope Scope, from, to time.Time) ([]models.Commitment, error) {
	args := []interface{}{}
	argN := 1

	scopeSQL, err := scopeClause(scope, &args, &argN)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM case_call_logs cl
		JOIN customer_cases cc ON cl.case_id = cc.case_id
		WHERE %s
		  AND (cl.call_status ILIKE '%%ptp%%' OR cl.call_status ILIKE '%%promise%%')
		  AND cl.ptp_date IS NOT NULL
		  AND cl.ptp_date >= $%d
		  AND cl.ptp_date <= $%d
		ORDER BY cl.ptp_date ASC
	`, commitmentColumns, scopeSQL, argN, argN+1)
	args = append(args, from, to)

	return r.queryCommitments(ctx, query, args, models.CommitmentPTP)
}

// GetCallbacksDueToday 查询范围内今日到期且未完成的回拨承诺
func (r *PostgresCallLogsRepository) GetCallbacksDueToday(ctx context.Context, scope Scope, from, to time.Time) ([]models.Commitment, error) {
	args := []interface{}{}
	argN := 1

	scopeSQL, err := scopeClause(scope, &args, &argN)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM case_call_logs cl
		JOIN customer_cases cc ON cl.case_id = cc.case_id
		WHERE %s
		  AND cl.call_status = 'CALL_BACK'
		  AND cl.callback_completed = FALSE
		  AND cl.callback_date IS NOT NULL
		  AND cl.callback_date >= $%d
		  AND cl.callback_date <= $%d
		ORDER BY cl.callback_date ASC
	`, commitmentColumns, scopeSQL, argN, argN+1)
	args = append(args, from, to)

	return r.queryCommitments(ctx, query, args, models.CommitmentCallback)
}

// queryCommitments 执行查询并把行投影为承诺
// 到期时间为空的行在这里被丢弃（数据质量跳过，不算错误）
func (r *PostgresCallLogsRepository) queryCommitments(ctx context.Context, query string, args []interface{}, commitmentType models.CommitmentType) ([]models.Commitment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query call logs: %w", err)
	}
	defer rows.Close()

	commitments := []models.Commitment{}
	for rows.Next() {
		var record models.CallLogRecord
		var ptpDate, callbackDate sql.NullTime
		var notes sql.NullString

		err := rows.Scan(
			&record.LogID,
			&record.CaseID,
			&record.EmployeeID,
			&record.CallStatus,
			&ptpDate,
			&callbackDate,
			&record.CallbackCompleted,
			&notes,
			&record.CreatedAt,
			&record.CustomerName,
			&record.LoanID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call log: %w", err)
		}

		// 处理可空字段
		if ptpDate.Valid {
			record.PTPDate = &ptpDate.Time
		}
		if callbackDate.Valid {
			record.CallbackDate = &callbackDate.Time
		}
		if notes.Valid {
			record.Notes = &notes.String
		}

		// 取该类型对应的到期时间；缺失则丢弃该行
		var due *time.Time
		if commitmentType == models.CommitmentPTP {
			due = record.PTPDate
		} else {
			due = record.CallbackDate
		}
		if due == nil {
			r.logger.Debug("Skipping call log without due date",
				zap.String("log_id", record.LogID),
				zap.String("type", string(commitmentType)),
			)
			continue
		}

		commitments = append(commitments, models.Commitment{
			LogID:        record.LogID,
			CaseID:       record.CaseID,
			EmployeeID:   record.EmployeeID,
			CustomerName: record.CustomerName,
			LoanID:       record.LoanID,
			Type:         commitmentType,
			DueDate:      *due,
			Original:     record,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate call logs: %w", err)
	}

	return commitments, nil
}
