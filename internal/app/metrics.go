package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taoyao-code/io-board/internal/metrics"
	"github.com/taoyao-code/io-board/internal/serialport"
)

// NewMetrics 初始化注册表与应用指标
func NewMetrics() (*prometheus.Registry, *metrics.AppMetrics) {
	reg := metrics.NewRegistry()
	appm := metrics.NewAppMetrics(reg)
	return reg, appm
}

// WireSerialMetrics 将串口收发字节数计入指标
func WireSerialMetrics(ch *serialport.Channel, appm *metrics.AppMetrics) {
	if ch == nil || appm == nil {
		return
	}
	tx := appm.SerialBytes.WithLabelValues("tx")
	rx := appm.SerialBytes.WithLabelValues("rx")
	ch.SetMetricsCallbacks(
		func(n int) { tx.Add(float64(n)) },
		func(n int) { rx.Add(float64(n)) },
	)
}
