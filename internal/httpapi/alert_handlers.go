package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"shakti-alerts/internal/classifier"
	"shakti-alerts/internal/models"

	"go.uber.org/zap"
)

// AlertProvider 提醒服务接口（由 service.AlertService 实现）
type AlertProvider interface {
	GetAlerts(ctx context.Context, employeeID string) *models.AlertSummary
	GetAlertsByTenant(ctx context.Context, tenantID string) []models.Alert
	GetAlertsByTeam(ctx context.Context, teamID string) []models.Alert
	MarkAsViewed(ctx context.Context, caseID, employeeID string)
}

// AlertHandler 提醒 HTTP 处理器
type AlertHandler struct {
	alerts AlertProvider
	logger *zap.Logger
}

// NewAlertHandler 创建提醒处理器
func NewAlertHandler(alerts AlertProvider, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
		logger: logger,
	}
}

// employeeID 从查询参数或请求头取员工ID
func employeeID(r *http.Request) string {
	if id := r.URL.Query().Get("employee_id"); id != "" {
		return id
	}
	return r.Header.Get("X-Employee-Id")
}

// GetAlerts GET /alerts/api/v1/alerts?employee_id=
func (h *AlertHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	id := employeeID(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, Fail("employee_id is required"))
		return
	}

	summary := h.alerts.GetAlerts(r.Context(), id)
	writeJSON(w, http.StatusOK, Ok(summary))
}

// GetAlertBuckets GET /alerts/api/v1/alerts/buckets?employee_id=
// 详情抽屉视图：按状态分三组，组内保持聚合器排序
func (h *AlertHandler) GetAlertBuckets(w http.ResponseWriter, r *http.Request) {
	id := employeeID(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, Fail("employee_id is required"))
		return
	}

	summary := h.alerts.GetAlerts(r.Context(), id)
	buckets := classifier.GroupBuckets(summary.Cases)

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"status":  summary.Status,
		"buckets": buckets,
	}))
}

// GetAlertsByTeam GET /alerts/api/v1/alerts/team/{teamId}
func (h *AlertHandler) GetAlertsByTeam(w http.ResponseWriter, r *http.Request, teamID string) {
	alerts := h.alerts.GetAlertsByTeam(r.Context(), teamID)
	writeJSON(w, http.StatusOK, Ok(alerts))
}

// GetAlertsByTenant GET /alerts/api/v1/alerts/tenant/{tenantId}
func (h *AlertHandler) GetAlertsByTenant(w http.ResponseWriter, r *http.Request, tenantID string) {
	alerts := h.alerts.GetAlertsByTenant(r.Context(), tenantID)
	writeJSON(w, http.StatusOK, Ok(alerts))
}

// MarkViewedRequest 标记查看请求体
type MarkViewedRequest struct {
	CaseID     string `json:"case_id"`
	EmployeeID string `json:"employee_id"`
}

// MarkViewed POST /alerts/api/v1/alerts/viewed
// 写入是尽力而为的：除请求体非法外总是返回成功
func (h *AlertHandler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	var payload MarkViewedRequest
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if payload.CaseID == "" || payload.EmployeeID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("case_id and employee_id are required"))
		return
	}

	h.alerts.MarkAsViewed(r.Context(), payload.CaseID, payload.EmployeeID)
	writeJSON(w, http.StatusOK, Ok(map[string]any{"marked": true}))
}

// writeJSON 写出 JSON 响应
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readBodyJSON 读取并解析请求体（限制大小）
func readBodyJSON(r *http.Request, maxBytes int64, dest any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBytes))
	return dec.Decode(dest)
}
