package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shakti-alerts/internal/models"
	"shakti-alerts/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCallLogsRepository 是 CallLogsRepository 的 mock 实现
type MockCallLogsRepository struct {
	mock.Mock
}

func (m *MockCallLogsRepository) GetPTPDueToday(ctx context.Context, scope repository.Scope, from, to time.Time) ([]models.Commitment, error) {
	args := m.Called(ctx, scope, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Commitment), args.Error(1)
}

func (m *MockCallLogsRepository) GetCallbacksDueToday(ctx context.Context, scope repository.Scope, from, to time.Time) ([]models.Commitment, error) {
	args := m.Called(ctx, scope, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Commitment), args.Error(1)
}

// MockViewedLogsRepository 是 ViewedLogsRepository 的 mock 实现
type MockViewedLogsRepository struct {
	mock.Mock
}

func (m *MockViewedLogsRepository) GetViewedCaseIDs(ctx context.Context, employeeID string, since time.Time) (map[string]struct{}, error) {
	args := m.Called(ctx, employeeID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockViewedLogsRepository) InsertViewed(ctx context.Context, caseID, employeeID string, viewedAt time.Time) error {
	args := m.Called(ctx, caseID, employeeID, viewedAt)
	return args.Error(0)
}

// MockEmployeesRepository 是 EmployeesRepository 的 mock 实现
type MockEmployeesRepository struct {
	mock.Mock
}

func (m *MockEmployeesRepository) GetActiveTeamMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// 固定时钟：2025-03-10 11:00 UTC
var frozenNow = time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)

func frozenDayBounds() (time.Time, time.Time) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return from, from.Add(24*time.Hour - time.Nanosecond)
}

func newTestService(callLogs *MockCallLogsRepository, viewedLogs *MockViewedLogsRepository, employees *MockEmployeesRepository) *AlertService {
	svc := NewAlertService(callLogs, viewedLogs, employees, nil, nil, 0, zap.NewNop())
	svc.now = func() time.Time { return frozenNow }
	return svc
}

func ptpCommitment(logID, caseID string, due time.Time) models.Commitment {
	return models.Commitment{
		LogID:        logID,
		CaseID:       caseID,
		EmployeeID:   "emp-1",
		CustomerName: "Customer " + caseID,
		LoanID:       "LN-" + caseID,
		Type:         models.CommitmentPTP,
		DueDate:      due,
	}
}

func callbackCommitment(logID, caseID string, due time.Time) models.Commitment {
	c := ptpCommitment(logID, caseID, due)
	c.Type = models.CommitmentCallback
	return c
}

func TestGetAlerts_EndToEnd(t *testing.T) {
	callLogs := new(MockCallLogsRepository)
	viewedLogs := new(MockViewedLogsRepository)
	employees := new(MockEmployeesRepository)
	svc := newTestService(callLogs, viewedLogs, employees)

	ctx := context.Background()
	from, to := frozenDayBounds()
	scope := repository.EmployeeScope("emp-1")

	// 一条 PTP 十分钟后到期（未查看）、一条回拨两小时前到期（已查看）
	callLogs.On("GetPTPDueToday", ctx, scope, from, to).Return(
		[]models.Commitment{ptpCommitment("log-ptp", "case-ptp", frozenNow.Add(10*time.Minute))}, nil)
	callLogs.On("GetCallbacksDueToday", ctx, scope, from, to).Return(
		[]models.Commitment{callbackCommitment("log-cb", "case-cb", frozenNow.Add(-2*time.Hour))}, nil)
	viewedLogs.On("GetViewedCaseIDs", ctx, "emp-1", from).Return(
		map[string]struct{}{"case-cb": {}}, nil)

	summary := svc.GetAlerts(ctx, "emp-1")

	require.NotNil(t, summary)
	// PTP → YELLOW，回拨虽已逾期但被查看抑制为 GREEN；整体为 YELLOW
	assert.Equal(t, models.StatusYellow, summary.Status)
	require.Len(t, summary.Cases, 2)

	assert.Equal(t, "case-ptp", summary.Cases[0].CaseID)
	assert.Equal(t, models.StatusYellow, summary.Cases[0].Status)
	assert.False(t, summary.Cases[0].IsViewed)

	assert.Equal(t, "case-cb", summary.Cases[1].CaseID)
	assert.Equal(t, models.StatusGreen, summary.Cases[1].Status)
	assert.True(t, summary.Cases[1].IsViewed)

	callLogs.AssertExpectations(t)
	viewedLogs.AssertExpectations(t)
}

func TestGetAlerts_SortOrder(t *testing.T) {
	callLogs := new(MockCallLogsRepository)
	viewedLogs := new(MockViewedLogsRepository)
	svc := newTestService(callLogs, viewedLogs, new(MockEmployeesRepository))

	ctx := context.Background()
	from, to := frozenDayBounds()
	scope := repository.EmployeeScope("emp-1")

	day := func(hour int) time.Time {
		return time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
	}

	// GREEN@14:00、RED@11:00、YELLOW@11:10、RED@08:00（now=11:00，窗口30分钟）
	callLogs.On("GetPTPDueToday", ctx, scope, from, to).Return([]models.Commitment{
		ptpCommitment("log-1", "case-1", day(14)),
		ptpCommitment("log-2", "case-2", day(11)),
	}, nil)
	callLogs.On("GetCallbacksDueToday", ctx, scope, from, to).Return([]models.Commitment{
		callbackCommitment("log-3", "case-3", day(11).Add(10*time.Minute)),
		callbackCommitment("log-4", "case-4", day(8)),
	}, nil)
	viewedLogs.On("GetViewedCaseIDs", ctx, "emp-1", from).Return(map[string]struct{}{}, nil)

	summary := svc.GetAlerts(ctx, "emp-1")

	require.Len(t, summary.Cases, 4)
	// RED@08:00, RED@11:00, YELLOW@11:10, GREEN@14:00
	assert.Equal(t, "case-4", summary.Cases[0].CaseID)
	assert.Equal(t, "case-2", summary.Cases[1].CaseID)
	assert.Equal(t, "case-3", summary.Cases[2].CaseID)
	assert.Equal(t, "case-1", summary.Cases[3].CaseID)
	assert.Equal(t, models.StatusRed, summary.Status)
}

func TestGetAlerts_FetchFailureDegradesToGreen(t *testing.T) {
	callLogs := new(MockCallLogsRepository)
	viewedLogs := new(MockViewedLogsRepository)
	svc := newTestService(callLogs, viewedLogs, new(MockEmployeesRepository))

	ctx := context.Background()
	from, to := frozenDayBounds()
	scope := repository.EmployeeScope("emp-1")

	callLogs.On("GetPTPDueToday", ctx, scope, from, to).Return(nil, fmt.Errorf("backend unavailable"))

	summary := svc.GetAlerts(ctx, "emp-1")

	require.NotNil(t, summary)
	assert.Equal(t, models.StatusGreen, summary.Status)
	assert.Empty(t, summary.Cases)
}

func TestGetAlerts_ViewedFetchFailureDegradesToGreen(t *testing.T) {
	callLogs := new(MockCallLogsRepository)
	viewedLogs := new(MockViewedLogsRepository)
	svc := newTestService(callLogs, viewedLogs, new(MockEmployeesRepository))

	ctx := context.Background()
	from, to := frozenDayBounds()
	scope := repository.EmployeeScope("emp-1")

	callLogs.On("GetPTPDueToday", ctx, scope, from, to).Return([]models.Commitment{}, nil)
	callLogs.On("GetCallbacksDueToday", ctx, scope, from, to).Return([]models.Commitment{}, nil)
	viewedLogs.On("GetViewedCaseIDs", ctx, "emp-1", from).Return(nil, fmt.Errorf("timeout"))

	summary := svc.GetAlerts(ctx, "emp-1")

	assert.Equal(t, models.StatusGreen, summary.Status)
	assert.Empty(t, summary.Cases)
}

func TestGetAlerts_ViewedSetBoundedToStartOfToday(t *testing.T) {
	callLogs := new(MockCallLogsRepository)
	viewedLogs := new(MockViewedLogsRepository)
	svc := newTestService(callLogs, viewedLogs, new(MockEmployeesRepository))

	ctx := context.Background()
	from, to := frozenDayBounds()
	scope := repository.EmployeeScope("emp-1")

	overdue := ptpCommitment("log-1", "case-1", frozenNow.Add(-time.Hour))
	callLogs.On("GetPTPDueToday", ctx, scope, from, to).Return([]models.Commitment{overdue}, nil)
	callLogs.On("GetCallbacksDueToday", ctx, scope, from, to).Return([]models.Commitment{}, nil)

	// 查看集合查询必须以当日零点为界；昨天的查看记录不在集合内，不抑制今日提醒
	viewedLogs.On("GetViewedCaseIDs", ctx, "emp-1", from).Return(map[string]struct{}{}, nil)

	summary := svc.GetAlerts(ctx, "emp-1")

	require.Len(t, summary.Cases, 1)
	assert.Equal(t, models.StatusRed, summary.Cases[0].Status)
	assert.False(t, summary.Cases[0].IsViewed)

	viewedLogs.AssertCalled(t, "GetViewedCaseIDs", ctx, "emp-1", from)
}

func TestGetAlertsByTeam_ResolvesMembersNoSuppression(t *testing.T) {
	callLogs := new(MockCallLogsRepository)
	viewedLogs := new(MockViewedLogsRepository)
	employees := new(MockEmployeesRepository)
	svc := newTestService(callLogs, viewedLogs, employees)

	ctx := context.Background()
	from, to := frozenDayBounds()
	memberIDs := []string{"emp-1", "emp-2"}
	scope := repository.TeamScope(memberIDs)

	employees.On("GetActiveTeamMemberIDs", ctx, "team-9").Return(memberIDs, nil)
	callLogs.On("GetPTPDueToday", ctx, scope, from, to).Return(
		[]models.Commitment{ptpCommitment("log-1", "case-1", frozenNow.Add(-time.Hour))}, nil)
	callLogs.On("GetCallbacksDueToday", ctx, scope, from, to).Return([]models.Commitment{}, nil)

	alerts := svc.GetAlertsByTeam(ctx, "team-9")

	require.Len(t, alerts, 1)
	// 团队范围不应用已查看抑制：逾期即 RED
	assert.Equal(t, models.StatusRed, alerts[0].Status)
	assert.False(t, alerts[0].IsViewed)

	// 查看集合完全不被查询
	viewedLogs.AssertNotCalled(t, "GetViewedCaseIDs", mock.Anything, mock.Anything, mock.Anything)
	employees.AssertExpectations(t)
}

func TestGetAlertsByTeam_EmptyMembership(t *testing.T) {
	callLogs := new(MockCallLogsRepository)
	employees := new(MockEmployeesRepository)
	svc := newTestService(callLogs, new(MockViewedLogsRepository), employees)

	ctx := context.Background()
	employees.On("GetActiveTeamMemberIDs", ctx, "team-empty").Return([]string{}, nil)

	alerts := svc.GetAlertsByTeam(ctx, "team-empty")

	assert.Empty(t, alerts)
	// 无成员时不触发通话记录查询
	callLogs.AssertNotCalled(t, "GetPTPDueToday", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAlertsByTenant_FailureDegradesToEmpty(t *testing.T) {
	callLogs := new(MockCallLogsRepository)
	svc := newTestService(callLogs, new(MockViewedLogsRepository), new(MockEmployeesRepository))

	ctx := context.Background()
	from, to := frozenDayBounds()
	scope := repository.TenantScope("tenant-1")

	callLogs.On("GetPTPDueToday", ctx, scope, from, to).Return(nil, fmt.Errorf("backend down"))

	alerts := svc.GetAlertsByTenant(ctx, "tenant-1")

	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestMarkAsViewed_InsertsAtNow(t *testing.T) {
	viewedLogs := new(MockViewedLogsRepository)
	svc := newTestService(new(MockCallLogsRepository), viewedLogs, new(MockEmployeesRepository))

	ctx := context.Background()
	viewedLogs.On("InsertViewed", ctx, "case-1", "emp-1", frozenNow).Return(nil)

	svc.MarkAsViewed(ctx, "case-1", "emp-1")

	viewedLogs.AssertExpectations(t)
}

func TestMarkAsViewed_FailureSwallowed(t *testing.T) {
	viewedLogs := new(MockViewedLogsRepository)
	svc := newTestService(new(MockCallLogsRepository), viewedLogs, new(MockEmployeesRepository))

	ctx := context.Background()
	viewedLogs.On("InsertViewed", ctx, "case-1", "emp-1", frozenNow).Return(fmt.Errorf("disk full"))

	// 不 panic、不向调用方返回错误
	svc.MarkAsViewed(ctx, "case-1", "emp-1")

	viewedLogs.AssertExpectations(t)
}

func TestMarkAsViewed_IdempotentSuppression(t *testing.T) {
	callLogs := new(MockCallLogsRepository)
	viewedLogs := new(MockViewedLogsRepository)
	svc := newTestService(callLogs, viewedLogs, new(MockEmployeesRepository))

	ctx := context.Background()
	from, to := frozenDayBounds()
	scope := repository.EmployeeScope("emp-1")

	// 标记两次：追加两行
	viewedLogs.On("InsertViewed", ctx, "case-1", "emp-1", frozenNow).Return(nil).Twice()
	svc.MarkAsViewed(ctx, "case-1", "emp-1")
	svc.MarkAsViewed(ctx, "case-1", "emp-1")

	// 集合语义下重复行不改变抑制效果
	callLogs.On("GetPTPDueToday", ctx, scope, from, to).Return(
		[]models.Commitment{ptpCommitment("log-1", "case-1", frozenNow.Add(-time.Hour))}, nil)
	callLogs.On("GetCallbacksDueToday", ctx, scope, from, to).Return([]models.Commitment{}, nil)
	viewedLogs.On("GetViewedCaseIDs", ctx, "emp-1", from).Return(
		map[string]struct{}{"case-1": {}}, nil)

	summary := svc.GetAlerts(ctx, "emp-1")

	require.Len(t, summary.Cases, 1)
	assert.Equal(t, models.StatusGreen, summary.Cases[0].Status)
	assert.True(t, summary.Cases[0].IsViewed)

	viewedLogs.AssertExpectations(t)
}
