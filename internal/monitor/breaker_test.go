package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, timeout time.Duration) (*Breaker, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker(threshold, timeout)
	b.now = clk.now
	return b, clk
}

func TestBreaker_Transitions(t *testing.T) {
	b, clk := newTestBreaker(3, time.Second)
	boom := errors.New("timeout")
	fail := func() error { return boom }
	ok := func() error { return nil }

	assert.Equal(t, BreakerClosed, b.State())
	for i := 0; i < 2; i++ {
		assert.Equal(t, boom, b.Call(fail))
	}
	assert.Equal(t, BreakerClosed, b.State())
	assert.Equal(t, boom, b.Call(fail))
	assert.Equal(t, BreakerOpen, b.State())

	called := false
	err := b.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called, "熔断期内不应访问设备")

	// 冷却后半开试探失败，重新打开
	clk.advance(time.Second)
	assert.Equal(t, boom, b.Call(fail))
	assert.Equal(t, BreakerOpen, b.State())
	assert.Equal(t, int64(2), b.Stats().TripCount)

	// 再次冷却后试探成功，关闭
	clk.advance(time.Second)
	assert.NoError(t, b.Call(ok))
	assert.Equal(t, BreakerClosed, b.State())
	assert.Equal(t, 0, b.Stats().Failures)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker(2, time.Second)
	_ = b.Call(func() error { return errors.New("x") })
	_ = b.Call(func() error { return nil })
	_ = b.Call(func() error { return errors.New("x") })
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_ResetAndCallback(t *testing.T) {
	b, _ := newTestBreaker(1, time.Hour)
	changes := make(chan BreakerState, 4)
	b.SetStateChangeCallback(func(_, to BreakerState) { changes <- to })

	_ = b.Call(func() error { return errors.New("x") })
	assert.Equal(t, BreakerOpen, <-changes)

	b.Reset()
	assert.Equal(t, BreakerClosed, b.State())
	assert.Equal(t, BreakerClosed, <-changes)
	assert.Equal(t, "closed", b.Stats().State)
}

func TestBreakerState_String(t *testing.T) {
	assert.Equal(t, "open", BreakerOpen.String())
	assert.Equal(t, "half_open", BreakerHalfOpen.String())
	assert.Equal(t, "unknown", BreakerState(9).String())
}
