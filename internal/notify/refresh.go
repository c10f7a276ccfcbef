package notify

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RefreshNotifier 强制刷新信号（Redis pub/sub）
// 原版前端用全局"最近通知时间"变量触发提醒刷新；这里改为每个员工一个
// pub/sub 频道：标记查看等写操作发布信号，轮询端订阅后立即重新拉取
type RefreshNotifier struct {
	redisClient   *redis.Client
	logger        *zap.Logger
	channelPrefix string
}

// NewRefreshNotifier 创建刷新信号器
func NewRefreshNotifier(redisClient *redis.Client, channelPrefix string, logger *zap.Logger) *RefreshNotifier {
	return &RefreshNotifier{
		redisClient:   redisClient,
		logger:        logger,
		channelPrefix: channelPrefix,
	}
}

// Channel 构建员工刷新频道名
func (n *RefreshNotifier) Channel(employeeID string) string {
	return n.channelPrefix + employeeID
}

// Publish 发布刷新信号
func (n *RefreshNotifier) Publish(ctx context.Context, employeeID string) error {
	return n.redisClient.Publish(ctx, n.Channel(employeeID), "refresh").Err()
}

// Subscribe 订阅某员工的刷新信号
// 返回的通道在每次收到信号时送出一个空值；调用 stop 取消订阅并关闭通道
func (n *RefreshNotifier) Subscribe(ctx context.Context, employeeID string) (<-chan struct{}, func()) {
	pubsub := n.redisClient.Subscribe(ctx, n.Channel(employeeID))

	signals := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(signals)
		ch := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				// 非阻塞投递：信号合并即可，不需要排队
				select {
				case signals <- struct{}{}:
				default:
				}
			}
		}
	}()

	stop := func() {
		close(done)
		if err := pubsub.Close(); err != nil {
			n.logger.Debug("Failed to close pubsub",
				zap.String("employee_id", employeeID),
				zap.Error(err),
			)
		}
	}

	return signals, stop
}
