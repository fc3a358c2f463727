package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/io-board/internal/config"
	"github.com/taoyao-code/io-board/internal/httpserver"
	"github.com/taoyao-code/io-board/internal/metrics"
)

// NewHTTPServer 根据配置创建 HTTP 服务器；指标关闭时不挂载指标路由
func NewHTTPServer(cfg *cfgpkg.Config, reg *prometheus.Registry, logger *zap.Logger) *httpserver.Server {
	var h http.Handler
	if cfg.Metrics.Enable {
		h = metrics.Handler(reg)
	}
	return httpserver.New(cfg.HTTP, cfg.Metrics.Path, h, logger)
}
