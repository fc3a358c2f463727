package app

import (
	"fmt"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/io-board/internal/config"
	"github.com/taoyao-code/io-board/internal/dispatch"
	"github.com/taoyao-code/io-board/internal/serialport"
)

// ResolvePort 确定串口名称；未配置时从系统枚举结果中选择
func ResolvePort(cfg cfgpkg.SerialConfig, list func() ([]string, error)) (string, error) {
	if cfg.Port != "" {
		return cfg.Port, nil
	}
	ports, err := list()
	if err != nil {
		return "", fmt.Errorf("list serial ports: %w", err)
	}
	name := serialport.DefaultPort(ports)
	if name == "" {
		return "", fmt.Errorf("no serial port available")
	}
	return name, nil
}

// NewSerialChannel 创建串口通道（不打开）
func NewSerialChannel(cfg cfgpkg.SerialConfig, port string, opener serialport.Opener, logger *zap.Logger) *serialport.Channel {
	return serialport.NewChannel(serialport.Config{
		Name:          port,
		WriteTimeout:  cfg.WriteTimeout,
		MaxFrameBytes: cfg.MaxFrameBytes,
	}, opener, logger.Named("serial"))
}

// DispatchConfig 由串口配置生成调度策略
func DispatchConfig(cfg cfgpkg.SerialConfig) dispatch.Config {
	return dispatch.Config{
		Timeout:          cfg.Timeout,
		RetryCount:       cfg.RetryCount,
		RetryDelay:       cfg.RetryDelay,
		ValidateChecksum: cfg.ValidateChecksum,
	}
}
