package client

import (
	"context"
	"fmt"
	"time"

	"shakti-alerts/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// AlertsClient 提醒服务的 HTTP 客户端
// 供指示器轮询进程等外部消费者使用
type AlertsClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// resultEnvelope 服务端统一响应包
type resultEnvelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Result  T      `json:"result,omitempty"`
}

const resultSuccess = 2000

// NewAlertsClient 创建提醒服务客户端
func NewAlertsClient(baseURL string, logger *zap.Logger) *AlertsClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &AlertsClient{
		httpClient: client,
		logger:     logger,
	}
}

// FetchAlerts 拉取某个员工的提醒聚合
func (c *AlertsClient) FetchAlerts(ctx context.Context, employeeID string) (*models.AlertSummary, error) {
	var envelope resultEnvelope[models.AlertSummary]
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("employee_id", employeeID).
		SetResult(&envelope).
		Get("/alerts/api/v1/alerts")

	if err != nil {
		c.logger.Error("Alerts API call failed",
			zap.Error(err),
			zap.String("employee_id", employeeID))
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("alerts API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if envelope.Code != resultSuccess {
		return nil, fmt.Errorf("alerts API error: %s", envelope.Message)
	}

	return &envelope.Result, nil
}

// markViewedRequest 标记查看请求体
type markViewedRequest struct {
	CaseID     string `json:"case_id"`
	EmployeeID string `json:"employee_id"`
}

// MarkViewed 将案件标记为已查看
func (c *AlertsClient) MarkViewed(ctx context.Context, caseID, employeeID string) error {
	var envelope resultEnvelope[map[string]any]
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(markViewedRequest{CaseID: caseID, EmployeeID: employeeID}).
		SetResult(&envelope).
		Post("/alerts/api/v1/alerts/viewed")

	if err != nil {
		c.logger.Error("Mark viewed call failed",
			zap.Error(err),
			zap.String("case_id", caseID),
			zap.String("employee_id", employeeID))
		return fmt.Errorf("failed to mark viewed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("alerts API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if envelope.Code != resultSuccess {
		return fmt.Errorf("alerts API error: %s", envelope.Message)
	}

	return nil
}
