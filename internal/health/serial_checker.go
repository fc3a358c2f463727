package health

import (
	"context"
	"time"
)

// PortState 串口状态
type PortState interface {
	Name() string
	IsOpen() bool
}

// SerialChecker 串口是否处于打开状态
type SerialChecker struct {
	port PortState
}

// NewSerialChecker 创建串口检查器
func NewSerialChecker(port PortState) *SerialChecker {
	return &SerialChecker{port: port}
}

// Name 返回检查器名称
func (c *SerialChecker) Name() string {
	return "serial"
}

// Check 执行健康检查
func (c *SerialChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	details := map[string]interface{}{"port": c.port.Name()}
	if !c.port.IsOpen() {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "serial port closed",
			Details: details,
			Latency: time.Since(start),
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: details,
		Latency: time.Since(start),
	}
}
