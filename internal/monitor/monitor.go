// Package monitor 周期轮询门锁状态与称重读数，经卡尔曼滤波后保存最新快照并更新指标。
// 连续失败时由 Breaker 暂停轮询，避免对无响应设备反复重试。
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/config"
	"github.com/taoyao-code/io-board/internal/device"
	"github.com/taoyao-code/io-board/internal/filter"
	"github.com/taoyao-code/io-board/internal/metrics"
)

// StatusReader 门锁状态读取
type StatusReader interface {
	Status(ctx context.Context) (device.DoorLockStatus, error)
}

// WeightReader 称重读取
type WeightReader interface {
	ReadAll(ctx context.Context) ([]device.Reading, error)
}

// Snapshot 最近一次轮询结果
type Snapshot struct {
	Status        device.DoorLockStatus `json:"status"`
	Raw           []float64             `json:"raw"`
	Filtered      []float64             `json:"filtered"`
	RawTotal      float64               `json:"raw_total"`
	FilteredTotal float64               `json:"filtered_total"`
	FilterEnabled bool                  `json:"filter_enabled"`
	UpdatedAt     time.Time             `json:"updated_at"`
	LastError     string                `json:"last_error,omitempty"`
	Polls         int64                 `json:"polls"`
	Failures      int64                 `json:"failures"`
	Breaker       BreakerStats          `json:"breaker"`
}

// Monitor 轮询器
type Monitor struct {
	door     StatusReader
	scale    WeightReader
	bank     *filter.Bank
	breaker  *Breaker
	interval time.Duration
	metrics  *metrics.AppMetrics
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.RWMutex
	snap Snapshot
}

// New 创建轮询器
func New(cfg config.MonitorConfig, door StatusReader, scale WeightReader, m *metrics.AppMetrics, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	bank := filter.NewBank(device.NumChannels, cfg.Kalman.ProcessNoise, cfg.Kalman.MeasurementNoise)
	bank.SetEnabled(cfg.Kalman.Enabled)

	mon := &Monitor{
		door:     door,
		scale:    scale,
		bank:     bank,
		breaker:  NewBreaker(cfg.Breaker.Threshold, cfg.Breaker.Timeout),
		interval: interval,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
	mon.snap.Status = device.UnknownStatus
	mon.breaker.SetStateChangeCallback(func(from, to BreakerState) {
		logger.Warn("device breaker state changed",
			zap.String("from", from.String()), zap.String("to", to.String()))
	})
	return mon
}

// Filter 滤波器组，供运行时开关与调参
func (m *Monitor) Filter() *filter.Bank { return m.bank }

// Breaker 熔断器
func (m *Monitor) Breaker() *Breaker { return m.breaker }

// Interval 轮询间隔
func (m *Monitor) Interval() time.Duration { return m.interval }

// Run 按间隔轮询直到 ctx 取消
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	m.logger.Info("monitor started", zap.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return
		case <-ticker.C:
			if err := m.PollOnce(ctx); err != nil && !errors.Is(err, ErrBreakerOpen) {
				m.logger.Debug("monitor poll failed", zap.Error(err))
			}
		}
	}
}

// PollOnce 执行一次轮询；熔断期内返回 ErrBreakerOpen 且不访问设备
func (m *Monitor) PollOnce(ctx context.Context) error {
	var (
		st       device.DoorLockStatus
		readings []device.Reading
	)
	err := m.breaker.Call(func() error {
		var err error
		if st, err = m.door.Status(ctx); err != nil {
			return fmt.Errorf("read status: %w", err)
		}
		if readings, err = m.scale.ReadAll(ctx); err != nil {
			return fmt.Errorf("read weights: %w", err)
		}
		return nil
	})

	switch {
	case errors.Is(err, ErrBreakerOpen):
		m.countPoll("skipped")
		m.mu.Lock()
		m.snap.Breaker = m.breaker.Stats()
		m.mu.Unlock()
		return err
	case err != nil:
		m.countPoll("error")
		m.mu.Lock()
		m.snap.Polls++
		m.snap.Failures++
		m.snap.LastError = err.Error()
		m.snap.Breaker = m.breaker.Stats()
		m.mu.Unlock()
		return err
	}

	raw := make([]float64, len(readings))
	for i, r := range readings {
		raw[i] = r.Value
	}
	filtered, ferr := m.bank.Update(raw)
	if ferr != nil {
		m.logger.Warn("filter skipped", zap.Error(ferr))
		filtered = raw
	}
	m.updateGauges(st, filtered)
	m.countPoll("ok")

	m.mu.Lock()
	m.snap.Status = st
	m.snap.Raw = raw
	m.snap.Filtered = filtered
	m.snap.RawTotal = sum(raw)
	m.snap.FilteredTotal = sum(filtered)
	m.snap.FilterEnabled = m.bank.Enabled()
	m.snap.UpdatedAt = m.now()
	m.snap.LastError = ""
	m.snap.Polls++
	m.snap.Breaker = m.breaker.Stats()
	m.mu.Unlock()
	return nil
}

// Snapshot 返回最新快照副本
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snap
	s.Raw = append([]float64(nil), m.snap.Raw...)
	s.Filtered = append([]float64(nil), m.snap.Filtered...)
	return s
}

// ResetFilter 复位滤波器
func (m *Monitor) ResetFilter() {
	m.bank.Reset()
	m.logger.Info("loadcell filter reset")
}

func (m *Monitor) countPoll(result string) {
	if m.metrics != nil {
		m.metrics.PollTotal.WithLabelValues(result).Inc()
	}
}

func (m *Monitor) updateGauges(st device.DoorLockStatus, filtered []float64) {
	if m.metrics == nil {
		return
	}
	metrics.SetState(m.metrics.DoorState, string(st.Door),
		string(device.DoorOpened), string(device.DoorClosed), string(device.DoorUnknown))
	metrics.SetState(m.metrics.LockState, string(st.Lock),
		string(device.LockLocked), string(device.LockUnlocked), string(device.LockUnknown))
	for i, v := range filtered {
		m.metrics.LoadCellValue.WithLabelValues(strconv.Itoa(i + 1)).Set(v)
	}
}

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}
