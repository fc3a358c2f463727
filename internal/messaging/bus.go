package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 应答留存条数
const ackHistoryLen = 200

// Publisher Redis 发布能力；*redis.Client 满足
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
}

// Bus 基于 Redis pub/sub 的信封传输：订阅命令主题，发布应答与周期健康信封
type Bus struct {
	rdb       *redis.Client
	pub       Publisher
	mgr       *Manager
	deviceIdx string
	interval  time.Duration
	logger    *zap.Logger
}

// NewBus 创建总线；interval<=0 时不发布周期健康信封
func NewBus(rdb *redis.Client, mgr *Manager, deviceIdx string, interval time.Duration, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{rdb: rdb, pub: rdb, mgr: mgr, deviceIdx: deviceIdx, interval: interval, logger: logger}
}

// AckHistoryKey 应答留存列表 key
func AckHistoryKey(deviceIdx string) string {
	return fmt.Sprintf("ioboard:%s:acks", deviceIdx)
}

// Run 阻塞运行直到 ctx 取消
func (b *Bus) Run(ctx context.Context) error {
	topics := SubscribeTopics(b.deviceIdx)
	channels := make([]string, 0, len(topics))
	for _, t := range topics {
		channels = append(channels, t)
	}
	sub := b.rdb.Subscribe(ctx, channels...)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	b.logger.Info("messaging bus subscribed", zap.Strings("topics", channels))

	var tick <-chan time.Time
	if b.interval > 0 {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		tick = ticker.C
		b.publishHealth(ctx)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("messaging bus stopping")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("subscription closed")
			}
			b.Dispatch(ctx, msg.Channel, []byte(msg.Payload))
		case <-tick:
			b.publishHealth(ctx)
		}
	}
}

// Dispatch 处理一条命令并发布应答
func (b *Bus) Dispatch(ctx context.Context, topic string, payload []byte) {
	ackTopic, ok := AckTopicFor(topic)
	if !ok {
		b.logger.Warn("message on non-command topic", zap.String("topic", topic))
		return
	}
	resp, err := b.mgr.Handle(ctx, payload)
	if err != nil {
		// 解析失败与未知接口不应答
		return
	}
	b.publish(ctx, ackTopic, resp, true)
}

func (b *Bus) publishHealth(ctx context.Context) {
	resp, err := b.mgr.Health(ctx)
	if err != nil {
		b.logger.Error("build health envelope failed", zap.Error(err))
		return
	}
	b.publish(ctx, FullTopic(b.deviceIdx, TopicHealth), resp, false)
}

// publish 发布消息；record 为 true 时写入应答历史
func (b *Bus) publish(ctx context.Context, topic string, payload []byte, record bool) {
	if err := b.pub.Publish(ctx, topic, payload).Err(); err != nil {
		b.logger.Error("publish failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	if !record {
		return
	}
	key := AckHistoryKey(b.deviceIdx)
	if err := b.pub.LPush(ctx, key, payload).Err(); err != nil {
		b.logger.Warn("save ack history failed", zap.Error(err))
		return
	}
	if err := b.pub.LTrim(ctx, key, 0, ackHistoryLen-1).Err(); err != nil {
		b.logger.Warn("trim ack history failed", zap.String("key", key), zap.Error(err))
	}
}
