package app

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/io-board/internal/config"
	"github.com/taoyao-code/io-board/internal/health"
	"github.com/taoyao-code/io-board/internal/messaging"
	redisstorage "github.com/taoyao-code/io-board/internal/storage/redis"
)

// NewRedisClient 创建 Redis 客户端；未启用时返回 nil
func NewRedisClient(cfg cfgpkg.RedisConfig, logger *zap.Logger) (*redisstorage.Client, error) {
	if !cfg.Enabled {
		logger.Info("redis is disabled, skipping initialization")
		return nil, nil
	}

	client, err := redisstorage.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("redis client initialized",
		zap.String("addr", cfg.Addr),
		zap.Int("pool_size", cfg.PoolSize))

	return client, nil
}

// AddRedisChecker 添加 Redis 检查器，并报告应答留存列表长度
func AddRedisChecker(aggregator *health.Aggregator, redisClient *redisstorage.Client, deviceIdx string) {
	if redisClient != nil {
		aggregator.AddChecker(health.NewRedisChecker(redisClient, messaging.AckHistoryKey(deviceIdx)))
	}
}
