package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shakti-alerts/internal/config"
	"shakti-alerts/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AlertCacheManager Redis 缓存管理器（提醒摘要）
// 聚合结果写穿到 Redis，读路径始终重新计算；缓存仅供旁路消费方（如团队看板）取用
type AlertCacheManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewAlertCacheManager 创建缓存管理器
func NewAlertCacheManager(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) *AlertCacheManager {
	return &AlertCacheManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// summaryKey 构建摘要缓存键
func (c *AlertCacheManager) summaryKey(employeeID string) string {
	return fmt.Sprintf("%s%s%s",
		c.config.Alerts.Cache.SummaryKeyPrefix,
		employeeID,
		c.config.Alerts.Cache.SummarySuffix,
	)
}

// UpdateSummaryCache 更新提醒摘要缓存（带 TTL）
func (c *AlertCacheManager) UpdateSummaryCache(ctx context.Context, employeeID string, summary *models.AlertSummary) error {
	key := c.summaryKey(employeeID)

	// 序列化数据
	jsonData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal alert summary: %w", err)
	}

	// 写入 Redis（设置 TTL）
	err = c.redisClient.Set(
		ctx,
		key,
		jsonData,
		time.Duration(c.config.Alerts.Cache.SummaryTTL)*time.Second,
	).Err()

	if err != nil {
		return fmt.Errorf("failed to set summary cache: %w", err)
	}

	c.logger.Debug("Updated alert summary cache",
		zap.String("employee_id", employeeID),
		zap.String("key", key),
		zap.Int("case_count", len(summary.Cases)),
	)

	return nil
}

// GetCachedSummary 读取提醒摘要缓存
func (c *AlertCacheManager) GetCachedSummary(ctx context.Context, employeeID string) (*models.AlertSummary, error) {
	key := c.summaryKey(employeeID)

	val, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("summary not cached for employee: %s", employeeID)
		}
		return nil, fmt.Errorf("failed to get summary cache: %w", err)
	}

	// 反序列化
	var summary models.AlertSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert summary: %w", err)
	}

	return &summary, nil
}
