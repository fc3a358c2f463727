package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/io-board/internal/boarderr"
	"github.com/taoyao-code/io-board/internal/metrics"
	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
	"github.com/taoyao-code/io-board/internal/serialport"
	"github.com/taoyao-code/io-board/internal/serialport/serialtest"
)

// scripted 按顺序返回预设结果的 Exchanger
type scripted struct {
	mu       sync.Mutex
	steps    []step
	sent     [][]byte
	timeouts []time.Duration
}

type step struct {
	raw []byte
	err error
}

func (s *scripted) Exchange(tx []byte, timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, tx)
	s.timeouts = append(s.timeouts, timeout)
	if len(s.steps) == 0 {
		return nil, boarderr.New(boarderr.KindTimeout, "receive", "no response")
	}
	st := s.steps[0]
	if len(s.steps) > 1 {
		s.steps = s.steps[1:]
	}
	return st.raw, st.err
}

func (s *scripted) sends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func timeoutStep() step {
	return step{err: boarderr.New(boarderr.KindTimeout, "receive", "no response")}
}

func fastConfig() Config {
	return Config{Timeout: 20 * time.Millisecond, RetryCount: 3, RetryDelay: 5 * time.Millisecond}
}

func TestInvoke_Success(t *testing.T) {
	ex := &scripted{steps: []step{{raw: ioboard.Build(ioboard.CommandRQ, ioboard.SubMI, []byte("PROD1234567"))}}}
	d := New(ex, fastConfig(), nil)

	payload, err := d.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubMI, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("PROD1234567"), payload)
	assert.Equal(t, 1, ex.sends())
	assert.Equal(t, ioboard.Build(ioboard.CommandRQ, ioboard.SubMI, nil), ex.sent[0])
}

func TestInvoke_AlwaysTimeout_ExactlyRetryCountAttempts(t *testing.T) {
	ex := &scripted{steps: []step{timeoutStep()}}
	d := New(ex, fastConfig(), nil)

	payload, err := d.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubID, nil)
	require.Error(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, 3, ex.sends())

	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 3, exhausted.Attempts)
	assert.True(t, errors.Is(err, boarderr.ErrTimeout), "聚合错误应携带最后一次错误")
	assert.True(t, IsExhausted(err))
}

func TestInvoke_RetryDelayBetweenAttemptsOnly(t *testing.T) {
	ex := &scripted{steps: []step{timeoutStep()}}
	cfg := Config{Timeout: time.Millisecond, RetryCount: 3, RetryDelay: 30 * time.Millisecond}
	d := New(ex, cfg, nil)

	start := time.Now()
	_, err := d.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubID, nil)
	elapsed := time.Since(start)
	require.Error(t, err)
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond, "3 次尝试之间共 2 次等待")
	assert.Less(t, elapsed, 90*time.Millisecond, "最后一次尝试后不应再等待")
}

func TestInvoke_RecoversAfterStructuralErrors(t *testing.T) {
	good := ioboard.Build(ioboard.CommandRQ, ioboard.SubIW, []byte("000100"))
	ex := &scripted{steps: []step{
		{raw: []byte{0x02, 'R', 'Q'}},
		{raw: append([]byte{0x7F}, good[1:]...)},
		{raw: good},
	}}
	d := New(ex, fastConfig(), nil)

	payload, err := d.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubIW, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("000100"), payload)
	assert.Equal(t, 3, ex.sends())
}

func TestInvoke_CommunicationErrorRetried(t *testing.T) {
	ex := &scripted{steps: []step{
		{err: boarderr.New(boarderr.KindCommunication, "receive", "io")},
		{raw: ioboard.Build(ioboard.CommandMC, ioboard.SubLZ, nil)},
	}}
	d := New(ex, fastConfig(), nil)

	payload, err := d.Invoke(context.Background(), ioboard.CommandMC, ioboard.SubLZ, nil)
	require.NoError(t, err)
	assert.NotNil(t, payload)
	assert.Empty(t, payload)
	assert.Equal(t, 2, ex.sends())
}

func TestInvoke_ChecksumValidation(t *testing.T) {
	bad := ioboard.Build(ioboard.CommandRQ, ioboard.SubID, []byte("C     L"))
	bad[len(bad)-1] ^= 0x5A

	relaxed := New(&scripted{steps: []step{{raw: bad}}}, fastConfig(), nil)
	_, err := relaxed.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubID, nil)
	require.NoError(t, err)

	cfg := fastConfig()
	cfg.ValidateChecksum = true
	ex := &scripted{steps: []step{{raw: bad}}}
	strict := New(ex, cfg, nil)
	_, err = strict.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubID, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ioboard.ErrChecksumMismatch))
	assert.Equal(t, 3, ex.sends())
}

func TestInvoke_SubcommandMismatchStillSucceeds(t *testing.T) {
	ex := &scripted{steps: []step{{raw: ioboard.Build(ioboard.CommandMC, ioboard.SubID, []byte("x"))}}}
	d := New(ex, fastConfig(), nil)
	m := metrics.NewAppMetrics(metrics.NewRegistry())
	d.SetMetrics(m)

	payload, err := d.Invoke(context.Background(), ioboard.CommandMC, ioboard.SubDC, []byte("O"))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), payload)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubcommandMismatch.WithLabelValues("DC")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchTotal.WithLabelValues("DC", "ok")))
}

func TestInvoke_NonRetryableStopsImmediately(t *testing.T) {
	ex := &scripted{steps: []step{{err: errors.New("unexpected")}}}
	d := New(ex, fastConfig(), nil)

	_, err := d.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubER, nil)
	require.Error(t, err)
	assert.Equal(t, 1, ex.sends())
}

func TestInvoke_TimeoutOverride(t *testing.T) {
	ex := &scripted{steps: []step{{raw: ioboard.Build(ioboard.CommandRQ, ioboard.SubER, nil)}}}
	d := New(ex, fastConfig(), nil)

	_, err := d.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubER, nil, WithTimeout(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, ex.timeouts[0])

	_, err = d.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubER, nil)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, ex.timeouts[1])
}

func TestInvoke_InvalidCodesRejectedWithoutIO(t *testing.T) {
	ex := &scripted{}
	d := New(ex, fastConfig(), nil)
	_, err := d.Invoke(context.Background(), ioboard.CommandUnknown, ioboard.SubID, nil)
	assert.True(t, errors.Is(err, boarderr.ErrValidation))
	assert.Equal(t, 0, ex.sends())
}

func TestInvoke_ContextCancelled(t *testing.T) {
	ex := &scripted{steps: []step{timeoutStep()}}
	cfg := Config{Timeout: time.Millisecond, RetryCount: 5, RetryDelay: time.Second}
	d := New(ex, cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := d.Invoke(ctx, ioboard.CommandRQ, ioboard.SubID, nil)
	require.Error(t, err)
	assert.Equal(t, 1, ex.sends(), "取消后不再发起新的尝试")
}

func TestInvoke_RecorderReceivesRecord(t *testing.T) {
	ex := &scripted{steps: []step{timeoutStep(), {raw: ioboard.Build(ioboard.CommandMC, ioboard.SubWP, nil)}}}
	d := New(ex, fastConfig(), nil)

	var got []Record
	d.SetRecorder(RecorderFunc(func(rec Record) { got = append(got, rec) }))

	_, err := d.Invoke(context.Background(), ioboard.CommandMC, ioboard.SubWP, []byte("PROD1"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Success)
	assert.Equal(t, 2, got[0].Attempts)
	assert.Equal(t, ioboard.SubWP, got[0].SubCommand)
	assert.Equal(t, []byte("PROD1"), got[0].Request)
}

func TestInvokeRaw(t *testing.T) {
	ex := &scripted{steps: []step{timeoutStep()}}
	d := New(ex, fastConfig(), nil)

	_, err := d.InvokeRaw(context.Background(), "DC_OPEN")
	require.Error(t, err)
	assert.Equal(t, 1, ex.sends(), "预构造帧发送不重试")
	assert.Equal(t, ioboard.Build(ioboard.CommandMC, ioboard.SubDC, []byte("O")), ex.sent[0])

	_, err = d.InvokeRaw(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, boarderr.ErrValidation))
}

func TestInvoke_OverSerialChannel(t *testing.T) {
	board := serialtest.NewBoard()
	board.Set(ioboard.SubID, []byte("O     U     "))
	board.Silence(ioboard.SubIW)
	port := board.Port()

	ch := serialport.NewChannel(serialport.Config{Name: "fake0"}, serialtest.Opener(port), nil)
	require.NoError(t, ch.Open())
	d := New(ch, fastConfig(), nil)

	payload, err := d.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubID, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("O     U     "), payload)

	before := port.WriteCount()
	_, err = d.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubIW, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boarderr.ErrTimeout))
	assert.Equal(t, 3, port.WriteCount()-before)
}

func TestInvoke_ClosedChannelFailsWithoutRetry(t *testing.T) {
	ch := serialport.NewChannel(serialport.Config{Name: "fake0"}, serialtest.Opener(serialtest.New(nil)), nil)
	cfg := fastConfig()
	cfg.RetryDelay = 200 * time.Millisecond
	d := New(ch, cfg, nil)

	start := time.Now()
	_, err := d.Invoke(context.Background(), ioboard.CommandRQ, ioboard.SubID, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), cfg.RetryDelay, "不应在重试间隔上等待")

	var ex *ExhaustedError
	require.True(t, errors.As(err, &ex))
	assert.Equal(t, 1, ex.Attempts)
	assert.True(t, errors.Is(err, boarderr.ErrNotConnected))
	assert.True(t, errors.Is(err, boarderr.ErrCommunication))
}
