package monitor

import (
	"errors"
	"sync"
	"time"
)

// BreakerState 熔断器状态
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // 正常轮询
	BreakerOpen                         // 设备无响应，暂停轮询
	BreakerHalfOpen                     // 冷却结束，试探一次
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen 熔断期内跳过本次轮询
var ErrBreakerOpen = errors.New("monitor: device breaker is open")

// Breaker 轮询熔断器：连续失败 threshold 次后打开，
// 冷却 timeout 后半开试探，试探成功关闭，失败重新打开。
type Breaker struct {
	mu           sync.Mutex
	state        BreakerState
	failures     int
	tripCount    int64
	lastFailTime time.Time
	lastChange   time.Time

	threshold int
	timeout   time.Duration
	now       func() time.Time

	onStateChange func(from, to BreakerState)
}

// NewBreaker 创建熔断器
func NewBreaker(threshold int, timeout time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Breaker{
		state:      BreakerClosed,
		threshold:  threshold,
		timeout:    timeout,
		now:        time.Now,
		lastChange: time.Now(),
	}
}

// Call 受熔断保护执行 fn
func (b *Breaker) Call(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		if b.now().Sub(b.lastFailTime) >= b.timeout {
			b.transitionTo(BreakerHalfOpen)
			return nil
		}
		return ErrBreakerOpen
	default:
		// 半开期间只放行一次试探，结果回来前其余调用跳过
		return ErrBreakerOpen
	}
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failures = 0
		b.transitionTo(BreakerClosed)
		return
	}
	b.failures++
	b.lastFailTime = b.now()
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		if b.state != BreakerOpen {
			b.tripCount++
		}
		b.transitionTo(BreakerOpen)
	}
}

func (b *Breaker) transitionTo(s BreakerState) {
	if b.state == s {
		return
	}
	from := b.state
	b.state = s
	b.lastChange = b.now()
	if b.onStateChange != nil {
		go b.onStateChange(from, s)
	}
}

// State 当前状态
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SetStateChangeCallback 状态变化回调（异步执行）
func (b *Breaker) SetStateChangeCallback(fn func(from, to BreakerState)) {
	b.mu.Lock()
	b.onStateChange = fn
	b.mu.Unlock()
}

// Reset 手动恢复
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.transitionTo(BreakerClosed)
}

// BreakerStats 熔断器统计
type BreakerStats struct {
	State           string    `json:"state"`
	Failures        int       `json:"failures"`
	TripCount       int64     `json:"trip_count"`
	LastStateChange time.Time `json:"last_state_change"`
}

// Stats 统计快照
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		State:           b.state.String(),
		Failures:        b.failures,
		TripCount:       b.tripCount,
		LastStateChange: b.lastChange,
	}
}
