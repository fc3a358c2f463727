package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taoyao-code/io-board/internal/health"
)

// NewHealthAggregator 创建健康检查聚合器；串口检查始终存在
func NewHealthAggregator(port health.PortState) *health.Aggregator {
	return health.NewAggregator(health.NewSerialChecker(port))
}

// RegisterHealthRoutes 注册健康检查HTTP路由
func RegisterHealthRoutes(r gin.IRouter, aggregator *health.Aggregator) {
	health.RegisterHTTPRoutes(r, aggregator)
}

// AddDeviceChecker 添加设备轮询检查器
func AddDeviceChecker(aggregator *health.Aggregator, src health.SnapshotSource) {
	if src != nil {
		aggregator.AddChecker(health.NewDeviceChecker(src))
	}
}

// AddDatabaseChecker 添加数据库检查器
func AddDatabaseChecker(aggregator *health.Aggregator, dbpool *pgxpool.Pool) {
	if dbpool != nil {
		aggregator.AddChecker(health.NewDatabaseChecker(dbpool))
	}
}
