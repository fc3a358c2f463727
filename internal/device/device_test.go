package device

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/io-board/internal/boarderr"
	"github.com/taoyao-code/io-board/internal/dispatch"
	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
	"github.com/taoyao-code/io-board/internal/serialport"
	"github.com/taoyao-code/io-board/internal/serialport/serialtest"
)

type call struct {
	cmd     ioboard.Command
	sub     ioboard.SubCommand
	payload []byte
}

// fakeInvoker 记录调用并返回预设应答
type fakeInvoker struct {
	mu      sync.Mutex
	calls   []call
	payload []byte
	err     error
}

func (f *fakeInvoker) Invoke(_ context.Context, cmd ioboard.Command, sub ioboard.SubCommand, payload []byte, _ ...dispatch.CallOption) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{cmd: cmd, sub: sub, payload: payload})
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func (f *fakeInvoker) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func exhausted() error {
	return &dispatch.ExhaustedError{
		Command: ioboard.CommandRQ, SubCommand: ioboard.SubID, Attempts: 3,
		Last: boarderr.New(boarderr.KindTimeout, "receive", "no response"),
	}
}

func TestDeadBolt_OpenClose(t *testing.T) {
	inv := &fakeInvoker{payload: []byte{}}
	d := NewDeadBolt(inv, nil)
	ctx := context.Background()

	require.NoError(t, d.Open(ctx))
	require.NoError(t, d.Close(ctx))
	require.Len(t, inv.calls, 2)
	assert.Equal(t, call{ioboard.CommandMC, ioboard.SubDC, []byte("O")}, inv.calls[0])
	assert.Equal(t, call{ioboard.CommandMC, ioboard.SubDC, []byte("C")}, inv.calls[1])

	inv.err = exhausted()
	assert.True(t, dispatch.IsExhausted(d.Open(ctx)))
}

func TestDeadBolt_Status(t *testing.T) {
	ctx := context.Background()

	inv := &fakeInvoker{payload: []byte("O     U     ")}
	d := NewDeadBolt(inv, nil)
	st, err := d.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, DoorLockStatus{DoorOpened, LockUnlocked}, st)
	assert.Equal(t, call{ioboard.CommandRQ, ioboard.SubID, nil}, inv.calls[0])

	open, err := d.IsDoorOpen(ctx)
	require.NoError(t, err)
	assert.True(t, open)
	unlocked, _ := d.IsUnlocked(ctx)
	assert.True(t, unlocked)
	locked, _ := d.IsLocked(ctx)
	assert.False(t, locked)

	inv.payload = []byte("C     L     ")
	closed, _ := d.IsDoorClosed(ctx)
	assert.True(t, closed)

	inv.payload = []byte("O")
	st, err = d.Status(ctx)
	require.NoError(t, err, "应答过短不报错")
	assert.Equal(t, UnknownStatus, st)

	inv.err = exhausted()
	st, err = d.Status(ctx)
	require.Error(t, err)
	assert.Equal(t, UnknownStatus, st)
}

func TestLoadCell_ReadAll(t *testing.T) {
	ctx := context.Background()
	inv := &fakeInvoker{payload: stepWeights(10)}
	l := NewLoadCell(inv, nil)

	assert.Nil(t, l.LastReadings())

	readings, err := l.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, readings, NumChannels)
	assert.Equal(t, call{ioboard.CommandRQ, ioboard.SubIW, nil}, inv.calls[0])
	assert.Equal(t, readings, l.LastReadings())

	total, err := l.TotalWeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5500.0, total)

	vals, err := l.ChannelValues(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}, vals)

	r, err := l.ReadChannel(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, r.Value)

	inv.err = exhausted()
	readings, err = l.ReadAll(ctx)
	require.Error(t, err)
	assert.Nil(t, readings)
	assert.Len(t, l.LastReadings(), NumChannels, "失败不覆盖缓存")
}

func TestLoadCell_ReadChannelOutOfRange(t *testing.T) {
	inv := &fakeInvoker{payload: stepWeights(10)}
	l := NewLoadCell(inv, nil)

	for _, ch := range []int{0, 11, -1} {
		_, err := l.ReadChannel(context.Background(), ch)
		assert.True(t, errors.Is(err, boarderr.ErrValidation))
	}
	assert.Equal(t, 0, inv.count())
}

func TestLoadCell_ZeroCalibration(t *testing.T) {
	inv := &fakeInvoker{payload: []byte{}}
	l := NewLoadCell(inv, nil)
	require.NoError(t, l.ZeroCalibration(context.Background()))
	assert.Equal(t, call{ioboard.CommandMC, ioboard.SubLZ, nil}, inv.calls[0])
}

func TestSystemManager_Info(t *testing.T) {
	ctx := context.Background()
	inv := &fakeInvoker{payload: []byte("PROD1234567")}
	s := NewSystemManager(inv, nil)

	info, err := s.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PROD1234567", info.ProductionNumber)
	assert.Equal(t, call{ioboard.CommandRQ, ioboard.SubMI, nil}, inv.calls[0])

	inv.payload = []byte{0xC0, 0xFF}
	_, err = s.Info(ctx)
	assert.True(t, errors.Is(err, boarderr.ErrResponse))

	inv.err = exhausted()
	info, err = s.Info(ctx)
	require.Error(t, err)
	assert.Equal(t, SystemInfo{}, info)
}

func TestSystemManager_SetProductionNumber(t *testing.T) {
	ctx := context.Background()
	inv := &fakeInvoker{payload: []byte{}}
	s := NewSystemManager(inv, nil)

	err := s.SetProductionNumber(ctx, "")
	assert.True(t, errors.Is(err, boarderr.ErrValidation))
	err = s.SetProductionNumber(ctx, "编号")
	assert.True(t, errors.Is(err, boarderr.ErrValidation))
	assert.Equal(t, 0, inv.count(), "本地校验失败不发起调用")

	require.NoError(t, s.SetProductionNumber(ctx, "PROD1234567"))
	assert.Equal(t, call{ioboard.CommandMC, ioboard.SubWP, []byte("PROD1234567")}, inv.calls[0])
}

func TestSystemManager_ErrorHistory(t *testing.T) {
	ctx := context.Background()
	inv := &fakeInvoker{payload: []byte("E0010000    E002")}
	s := NewSystemManager(inv, nil)
	s.SetErrorCodes(&ErrorCodes{Codes: map[string]string{"E001": "door jam"}})

	entries, err := s.ErrorHistory(ctx)
	require.NoError(t, err)
	require.Len(t, entries, ErrorHistoryCount)
	assert.Equal(t, "E001", entries[0].Code)
	assert.Equal(t, "door jam", entries[0].Description)
	assert.Equal(t, "0000", entries[1].Code)
	assert.Equal(t, "", entries[2].Code)
	assert.Equal(t, "E002", entries[3].Code)

	inv.err = exhausted()
	entries, err = s.ErrorHistory(ctx)
	require.Error(t, err)
	assert.Empty(t, entries)
}

func TestSystemManager_Controls(t *testing.T) {
	ctx := context.Background()
	inv := &fakeInvoker{payload: []byte{}}
	s := NewSystemManager(inv, nil)

	require.NoError(t, s.ClearErrorHistory(ctx))
	require.NoError(t, s.FactoryReset(ctx))
	require.NoError(t, s.SystemReset(ctx))
	require.Len(t, inv.calls, 3)
	assert.Equal(t, ioboard.SubEZ, inv.calls[0].sub)
	assert.Equal(t, ioboard.SubPD, inv.calls[1].sub)
	assert.Equal(t, ioboard.SubRT, inv.calls[2].sub)
	for _, c := range inv.calls {
		assert.Equal(t, ioboard.CommandMC, c.cmd)
		assert.Empty(t, c.payload)
	}
}

// 经由真实 Channel/Dispatcher 与模拟板的端到端路径
func TestDevices_OverSimulatedBoard(t *testing.T) {
	board := serialtest.NewBoard()
	board.Set(ioboard.SubID, []byte("C     L     "))
	board.Set(ioboard.SubIW, stepWeights(10))
	board.Set(ioboard.SubMI, []byte("PROD1234567"))
	board.Silence(ioboard.SubER)
	port := board.Port()

	ch := serialport.NewChannel(serialport.Config{Name: "fake0"}, serialtest.Opener(port), nil)
	require.NoError(t, ch.Open())
	disp := dispatch.New(ch, dispatch.Config{Timeout: 20 * time.Millisecond, RetryCount: 3, RetryDelay: time.Millisecond}, nil)
	ctx := context.Background()

	st, err := NewDeadBolt(disp, nil).Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, DoorLockStatus{DoorClosed, LockLocked}, st)

	total, err := NewLoadCell(disp, nil).TotalWeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5500.0, total)

	sys := NewSystemManager(disp, nil)
	info, err := sys.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PROD1234567", info.ProductionNumber)

	before := port.WriteCount()
	_, err = sys.ErrorHistory(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boarderr.ErrTimeout))
	assert.Equal(t, 3, port.WriteCount()-before)

	writes := port.WriteCount()
	require.Error(t, sys.SetProductionNumber(ctx, ""))
	assert.Equal(t, writes, port.WriteCount())
}
