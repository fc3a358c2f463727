// Package filter 称重读数平滑：一维卡尔曼滤波（常值模型）。
//
//	预测: P = P + Q
//	增益: K = P / (P + R)
//	更新: x = x + K*(z - x); P = (1 - K) * P
package filter

import (
	"fmt"
	"math"
	"sync"
)

// 默认参数
const (
	DefaultProcessNoise     = 0.01
	DefaultMeasurementNoise = 1.0
	initialCovariance       = 1.0
)

// State 滤波器内部状态
type State struct {
	Estimate   float64 `json:"estimate"`
	Covariance float64 `json:"covariance"`
	Gain       float64 `json:"gain"`
}

// Kalman 一维卡尔曼滤波器，并发安全
type Kalman struct {
	mu      sync.Mutex
	q, r    float64
	x, p, k float64
	enabled bool
}

// NewKalman 创建滤波器；q 过程噪声，r 测量噪声，非正值取默认
func NewKalman(q, r float64) *Kalman {
	if q <= 0 {
		q = DefaultProcessNoise
	}
	if r <= 0 {
		r = DefaultMeasurementNoise
	}
	return &Kalman{q: q, r: r, p: initialCovariance, enabled: true}
}

// Update 输入一次测量值，返回估计值；禁用时原样返回。
// 非有限测量值（NaN/Inf）不参与更新，返回当前估计值。
func (f *Kalman) Update(z float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled {
		return z
	}
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return f.x
	}
	p := f.p + f.q
	f.k = p / (p + f.r)
	f.x += f.k * (z - f.x)
	f.p = (1 - f.k) * p
	return f.x
}

// Reset 估计值置为 initial，协方差恢复为 1
func (f *Kalman) Reset(initial float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.x = initial
	f.p = initialCovariance
	f.k = 0
}

// State 当前估计值、协方差、增益
func (f *Kalman) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{Estimate: f.x, Covariance: f.p, Gain: f.k}
}

// SetParams 运行时调整噪声参数；非正值保持不变
func (f *Kalman) SetParams(q, r float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q > 0 {
		f.q = q
	}
	if r > 0 {
		f.r = r
	}
}

// Params 当前 Q、R
func (f *Kalman) Params() (q, r float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.q, f.r
}

// SetEnabled 启用/禁用
func (f *Kalman) SetEnabled(on bool) {
	f.mu.Lock()
	f.enabled = on
	f.mu.Unlock()
}

// Enabled 是否启用
func (f *Kalman) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

// Bank 多通道滤波器组
type Bank struct {
	filters []*Kalman
}

// NewBank 创建 n 个通道的滤波器组
func NewBank(n int, q, r float64) *Bank {
	b := &Bank{filters: make([]*Kalman, n)}
	for i := range b.filters {
		b.filters[i] = NewKalman(q, r)
	}
	return b
}

// Len 通道数
func (b *Bank) Len() int { return len(b.filters) }

// Update 逐通道更新；数量不符返回错误
func (b *Bank) Update(values []float64) ([]float64, error) {
	if len(values) != len(b.filters) {
		return nil, fmt.Errorf("filter: expected %d measurements, got %d", len(b.filters), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = b.filters[i].Update(v)
	}
	return out, nil
}

// Reset 全部通道复位到 0
func (b *Bank) Reset() {
	for _, f := range b.filters {
		f.Reset(0)
	}
}

// SetEnabled 全部通道启用/禁用
func (b *Bank) SetEnabled(on bool) {
	for _, f := range b.filters {
		f.SetEnabled(on)
	}
}

// Enabled 以第一个通道为准
func (b *Bank) Enabled() bool {
	return len(b.filters) > 0 && b.filters[0].Enabled()
}

// SetParams 全部通道调整参数
func (b *Bank) SetParams(q, r float64) {
	for _, f := range b.filters {
		f.SetParams(q, r)
	}
}

// Channel 返回第 i 个通道（0 起）；越界返回 nil
func (b *Bank) Channel(i int) *Kalman {
	if i < 0 || i >= len(b.filters) {
		return nil
	}
	return b.filters[i]
}
