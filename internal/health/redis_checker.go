package health

import (
	"context"
	"fmt"
	"time"

	redisstorage "github.com/taoyao-code/io-board/internal/storage/redis"
)

// RedisChecker Redis 健康检查器；同时报告应答留存列表长度
type RedisChecker struct {
	client *redisstorage.Client
	lists  []string
}

// NewRedisChecker 创建 Redis 健康检查器，lists 为需要报告长度的列表 key
func NewRedisChecker(client *redisstorage.Client, lists ...string) *RedisChecker {
	return &RedisChecker{client: client, lists: lists}
}

// Name 返回检查器名称
func (c *RedisChecker) Name() string {
	return "redis"
}

// Check 执行健康检查；消息总线依赖 Redis，不可达时视为降级而非不健康
func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	if err := c.client.HealthCheck(ctx); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}

	stats := c.client.Stats()
	details := map[string]interface{}{
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"timeouts":    stats.Timeouts,
	}
	for _, key := range c.lists {
		if n, err := c.client.LLen(ctx, key).Result(); err == nil {
			details[key] = n
		}
	}

	status := StatusHealthy
	message := "ok"
	if stats.Timeouts > 0 && stats.Timeouts >= stats.Hits {
		status = StatusDegraded
		message = "frequent pool timeouts"
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: details,
		Latency: time.Since(start),
	}
}
