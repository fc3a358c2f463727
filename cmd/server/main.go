package main

import (
	"flag"

	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/io-board/internal/config"
	"github.com/taoyao-code/io-board/internal/logging"
)

// @title IO Board Server API
// @version 1.0
// @description 智能回收柜 IO 板控制服务：门锁、称重与系统管理
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	configPath := flag.String("config", "", "配置文件路径（默认读取 IOBOARD_CONFIG 或 configs/ioboard.yaml）")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 装配并运行，阻塞到退出信号
	if err := bootstrap.Run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}
