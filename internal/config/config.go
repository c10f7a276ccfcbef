package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config 提醒服务配置
type Config struct {
	HTTP struct {
		Addr string
	}

	Database DatabaseConfig
	Redis    RedisConfig

	// 提醒服务特定配置
	Alerts struct {
		// Redis 缓存配置
		Cache struct {
			SummaryKeyPrefix string // 提醒摘要缓存键前缀，如 "shakti:alerts:"
			SummarySuffix    string // 提醒摘要缓存键后缀，如 ":summary"
			SummaryTTL       int    // 摘要缓存 TTL（秒），默认 30秒
		}

		// 刷新信号 pub/sub 频道前缀，如 "shakti:alerts:refresh:"
		RefreshChannelPrefix string

		// 轮询间隔（秒），默认 60秒（AlertButton 的刷新周期）
		PollInterval int

		// 临近窗口（分钟），due_date 距当前不足该窗口判为 YELLOW，默认 30分钟
		ApproachingWindow int
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// 从环境变量加载（默认值）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "shakti")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	// 提醒服务配置
	cfg.Alerts.Cache.SummaryKeyPrefix = getEnv("CACHE_SUMMARY_PREFIX", "shakti:alerts:")
	cfg.Alerts.Cache.SummarySuffix = ":summary"
	cfg.Alerts.Cache.SummaryTTL = parseInt(getEnv("ALERT_CACHE_TTL", "30"), 30)

	cfg.Alerts.RefreshChannelPrefix = getEnv("REFRESH_CHANNEL_PREFIX", "shakti:alerts:refresh:")

	cfg.Alerts.PollInterval = parseInt(getEnv("ALERT_POLL_INTERVAL", "60"), 60)
	cfg.Alerts.ApproachingWindow = parseInt(getEnv("ALERT_APPROACHING_WINDOW", "30"), 30)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
