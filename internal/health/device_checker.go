package health

import (
	"context"
	"time"

	"github.com/taoyao-code/io-board/internal/monitor"
)

// SnapshotSource 设备轮询快照来源
type SnapshotSource interface {
	Snapshot() monitor.Snapshot
	Interval() time.Duration
}

// DeviceChecker 依据轮询快照判断 IO 板是否在线
type DeviceChecker struct {
	src SnapshotSource
	now func() time.Time
}

// NewDeviceChecker 创建设备检查器
func NewDeviceChecker(src SnapshotSource) *DeviceChecker {
	return &DeviceChecker{src: src, now: time.Now}
}

// Name 返回检查器名称
func (c *DeviceChecker) Name() string {
	return "device"
}

// Check 熔断打开视为不健康；尚无数据、最近一次失败或数据过旧视为降级
func (c *DeviceChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	snap := c.src.Snapshot()

	details := map[string]interface{}{
		"door":           snap.Status.Door,
		"lock":           snap.Status.Lock,
		"polls":          snap.Polls,
		"failures":       snap.Failures,
		"breaker_state":  snap.Breaker.State,
		"breaker_trips":  snap.Breaker.TripCount,
		"filtered_total": snap.FilteredTotal,
	}
	if !snap.UpdatedAt.IsZero() {
		details["updated_at"] = snap.UpdatedAt
	}

	status := StatusHealthy
	message := "ok"
	stale := 5 * c.src.Interval()

	switch {
	case snap.Breaker.State == monitor.BreakerOpen.String():
		status = StatusUnhealthy
		message = "device not responding"
	case snap.LastError != "":
		status = StatusDegraded
		message = snap.LastError
	case snap.UpdatedAt.IsZero():
		status = StatusDegraded
		message = "no data yet"
	case c.now().Sub(snap.UpdatedAt) > stale:
		status = StatusDegraded
		message = "stale data"
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: details,
		Latency: time.Since(start),
	}
}
