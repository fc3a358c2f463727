package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	DispatchTotal      *prometheus.CounterVec   // labels: subcommand, result=ok|error
	DispatchAttempts   *prometheus.CounterVec   // labels: subcommand, outcome
	DispatchDuration   *prometheus.HistogramVec // labels: subcommand
	SubcommandMismatch *prometheus.CounterVec   // labels: expected
	SerialBytes        *prometheus.CounterVec   // labels: direction=tx|rx
	DoorState          *prometheus.GaugeVec     // labels: state，当前状态置 1
	LockState          *prometheus.GaugeVec     // labels: state
	LoadCellValue      *prometheus.GaugeVec     // labels: channel，滤波后读数
	MessagesTotal      *prometheus.CounterVec   // labels: if_id, result
	PollTotal          *prometheus.CounterVec   // labels: result=ok|error|skipped
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ioboard_dispatch_total",
			Help: "IO board command invocations by subcommand and result.",
		}, []string{"subcommand", "result"}),
		DispatchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ioboard_dispatch_attempts_total",
			Help: "Individual send/receive attempts by outcome.",
		}, []string{"subcommand", "outcome"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ioboard_dispatch_duration_seconds",
			Help:    "Wall time of one command invocation including retries.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"subcommand"}),
		SubcommandMismatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ioboard_subcommand_mismatch_total",
			Help: "Responses whose subcommand differs from the request.",
		}, []string{"expected"}),
		SerialBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ioboard_serial_bytes_total",
			Help: "Bytes moved over the serial link.",
		}, []string{"direction"}),
		DoorState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ioboard_door_state",
			Help: "Last observed door state (1 for the current state).",
		}, []string{"state"}),
		LockState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ioboard_lock_state",
			Help: "Last observed lock state (1 for the current state).",
		}, []string{"state"}),
		LoadCellValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ioboard_loadcell_value",
			Help: "Filtered load cell reading per channel.",
		}, []string{"channel"}),
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ioboard_messages_total",
			Help: "Handled command envelopes by interface and result.",
		}, []string{"if_id", "result"}),
		PollTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ioboard_poll_total",
			Help: "Monitor poll cycles by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.DispatchTotal, m.DispatchAttempts, m.DispatchDuration, m.SubcommandMismatch,
		m.SerialBytes, m.DoorState, m.LockState, m.LoadCellValue, m.MessagesTotal, m.PollTotal,
	)
	return m
}

// SetState 将 vec 中 current 置 1，其余 states 置 0
func SetState(vec *prometheus.GaugeVec, current string, states ...string) {
	if vec == nil {
		return
	}
	for _, s := range states {
		v := 0.0
		if s == current {
			v = 1
		}
		vec.WithLabelValues(s).Set(v)
	}
}
