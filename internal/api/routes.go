package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/api/docs"
	"github.com/taoyao-code/io-board/internal/api/middleware"
	cfgpkg "github.com/taoyao-code/io-board/internal/config"
)

// RegisterRoutes 注册 /api 路由组。
// 读请求只经过认证；会访问设备的写命令额外经过全局限流。
func RegisterRoutes(r gin.IRouter, dev *DeviceHandler, ops *OpsHandler, cfg cfgpkg.APIConfig, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	api := r.Group("/api")
	api.Use(middleware.APIKeyAuth(cfg.Auth, logger))
	if cfg.Auth.Enabled {
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(cfg.Auth.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}
	limited := api.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit, logger))

	endpoints := 0
	if dev != nil {
		api.GET("/deadbolt/status", dev.DoorStatus)
		limited.POST("/deadbolt/open", dev.OpenDoor)
		limited.POST("/deadbolt/close", dev.CloseDoor)

		api.GET("/loadcell/weights", dev.Weights)
		api.GET("/loadcell/channels/:channel", dev.Channel)
		limited.POST("/loadcell/zero", dev.ZeroCalibration)

		api.GET("/system/info", dev.SystemInfo)
		limited.PUT("/system/production-number", dev.SetProductionNumber)
		api.GET("/system/errors", dev.ErrorHistory)
		limited.DELETE("/system/errors", dev.ClearErrorHistory)
		limited.POST("/system/factory-reset", dev.FactoryReset)
		limited.POST("/system/reset", dev.SystemReset)
		endpoints += 12
	}
	if ops != nil {
		api.GET("/ports", ops.Ports)
		api.GET("/raw", ops.RawKeys)
		limited.POST("/raw/:key", ops.SendRaw)
		api.GET("/monitor", ops.Monitor)
		api.PUT("/monitor/filter", ops.UpdateFilter)
		api.GET("/cmdlogs", ops.CmdLogs)
		api.DELETE("/cmdlogs", ops.PurgeCmdLogs)
		api.GET("/collects", ops.CollectRecords)
		endpoints += 8
	}
	logger.Info("api routes registered", zap.Int("endpoints", endpoints))
}

// RegisterSwagger 注册 /swagger/*any 文档路由
func RegisterSwagger(r gin.IRouter) {
	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
