package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/io-board/internal/device"
	"github.com/taoyao-code/io-board/internal/metrics"
	"github.com/taoyao-code/io-board/internal/storage/models"
)

type fakeDoor struct {
	mu      sync.Mutex
	actions []string
	err     error
	status  device.DoorLockStatus
}

func (d *fakeDoor) Open(context.Context) error  { return d.act("open") }
func (d *fakeDoor) Close(context.Context) error { return d.act("close") }

func (d *fakeDoor) act(a string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, a)
	return d.err
}

func (d *fakeDoor) Status(context.Context) (device.DoorLockStatus, error) {
	if d.err != nil {
		return device.UnknownStatus, d.err
	}
	return d.status, nil
}

type fakeScale struct {
	readings []device.Reading
	err      error
}

func (s *fakeScale) ReadAll(context.Context) ([]device.Reading, error) {
	return s.readings, s.err
}

type fakeSystem struct {
	resets int
	err    error
}

func (s *fakeSystem) SystemReset(context.Context) error {
	s.resets++
	return s.err
}

type fakeStore struct {
	recs []models.CollectRecord
}

func (s *fakeStore) CreateCollectRecord(_ context.Context, rec *models.CollectRecord) error {
	s.recs = append(s.recs, *rec)
	return nil
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newManager(opts Options) *Manager {
	opts.DeviceIdx = "DE0001"
	opts.DivisionIdx = "DI0001"
	opts.Now = func() time.Time { return fixedNow }
	return NewManager(opts)
}

func envelope(ifID, sysID string, data map[string]any) []byte {
	b, _ := json.Marshal(map[string]any{
		"HEADER": map[string]any{"IF_ID": ifID, "IF_SYSID": sysID, "IF_HOST": "X", "IF_DATE": "20260101000000"},
		"DATA":   data,
	})
	return b
}

type reply struct {
	Header Header         `json:"HEADER"`
	Data   map[string]any `json:"DATA"`
}

func decode(t *testing.T, b []byte) reply {
	t.Helper()
	var r reply
	require.NoError(t, json.Unmarshal(b, &r))
	return r
}

func tenReadings() []device.Reading {
	out := make([]device.Reading, device.NumChannels)
	for i := range out {
		out[i] = device.Reading{Channel: i + 1, Value: float64((i + 1) * 100)}
	}
	return out
}

func TestHandle_Reboot(t *testing.T) {
	sys := &fakeSystem{}
	m := newManager(Options{System: sys})

	resp, err := m.Handle(context.Background(), envelope(IFReboot, "sys-1", nil))
	require.NoError(t, err)
	r := decode(t, resp)
	assert.Equal(t, IFReboot, r.Header.IFID)
	assert.Equal(t, "sys-1", r.Header.IFSysID, "应答沿用请求的 IF_SYSID")
	assert.Equal(t, DefaultHost, r.Header.IFHost)
	assert.Equal(t, "20260304050607", r.Header.IFDate)
	assert.Equal(t, ResultSuccess, r.Data["result_cd"])
	assert.Equal(t, "DE0001", r.Data["device_idx"])
	assert.Equal(t, 1, sys.resets)

	sys.err = errors.New("exhausted")
	resp, err = m.Handle(context.Background(), envelope(IFReboot, "sys-2", nil))
	require.NoError(t, err)
	r = decode(t, resp)
	assert.Equal(t, ResultFailure, r.Data["result_cd"])
	assert.Equal(t, "System reset failed", r.Data["result_msg"])
}

func TestHandle_DoorManual(t *testing.T) {
	door := &fakeDoor{}
	reg := metrics.NewRegistry()
	am := metrics.NewAppMetrics(reg)
	m := newManager(Options{Door: door, Metrics: am})
	ctx := context.Background()

	resp, err := m.Handle(ctx, envelope(IFDoorManual, "a", map[string]any{"door_state": "OPEN"}))
	require.NoError(t, err)
	r := decode(t, resp)
	assert.Equal(t, ResultSuccess, r.Data["result_cd"])
	assert.Equal(t, "OPEN", r.Data["door_state"])

	_, err = m.Handle(ctx, envelope(IFDoorManual, "b", map[string]any{"door_state": "CLOSE"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"open", "close"}, door.actions)

	resp, err = m.Handle(ctx, envelope(IFDoorManual, "c", map[string]any{"door_state": "AJAR"}))
	require.NoError(t, err)
	r = decode(t, resp)
	assert.Equal(t, ResultFailure, r.Data["result_cd"])
	assert.Equal(t, "Invalid door_state: AJAR", r.Data["result_msg"])
	assert.Len(t, door.actions, 2)

	door.err = errors.New("timeout")
	resp, _ = m.Handle(ctx, envelope(IFDoorManual, "d", map[string]any{"door_state": "OPEN"}))
	assert.Equal(t, "Failed to open door", decode(t, resp).Data["result_msg"])

	assert.Equal(t, 2.0, testutil.ToFloat64(am.MessagesTotal.WithLabelValues(IFDoorManual, ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(am.MessagesTotal.WithLabelValues(IFDoorManual, ResultFailure)))
}

func TestHandle_DoorManualWithoutDeadbolt(t *testing.T) {
	m := newManager(Options{})
	resp, err := m.Handle(context.Background(), envelope(IFDoorManual, "a", map[string]any{"door_state": "OPEN"}))
	require.NoError(t, err)
	assert.Equal(t, "DeadBolt not available", decode(t, resp).Data["result_msg"])
}

func TestHandle_DoorCollect(t *testing.T) {
	door := &fakeDoor{}
	scale := &fakeScale{readings: tenReadings()}
	m := newManager(Options{Door: door, Scale: scale})

	resp, err := m.Handle(context.Background(), envelope(IFDoorCollect, "x", map[string]any{"door_state": "OPEN"}))
	require.NoError(t, err)
	r := decode(t, resp)
	assert.Equal(t, ResultSuccess, r.Data["result_cd"])
	assert.Equal(t, StatusNotInstalled, r.Data["camera_status"])
	assert.Equal(t, StatusNormal, r.Data["deadbolt_status"])
	assert.Equal(t, StatusNormal, r.Data["loadcell_status"])

	door.err = errors.New("timeout")
	scale.err = errors.New("timeout")
	resp, _ = m.Handle(context.Background(), envelope(IFDoorCollect, "y", map[string]any{"door_state": "CLOSE"}))
	r = decode(t, resp)
	assert.Equal(t, ResultFailure, r.Data["result_cd"])
	assert.Equal(t, StatusError, r.Data["deadbolt_status"])
	assert.Equal(t, StatusError, r.Data["loadcell_status"])
}

func TestHandle_CollectProcess(t *testing.T) {
	door := &fakeDoor{}
	store := &fakeStore{}
	m := newManager(Options{Door: door, Scale: &fakeScale{readings: tenReadings()}, Store: store})
	ctx := context.Background()

	resp, err := m.Handle(ctx, envelope(IFCollectProcess, "c-1", map[string]any{"collect_state": "START"}))
	require.NoError(t, err)
	r := decode(t, resp)
	assert.Equal(t, ResultSuccess, r.Data["result_cd"])
	assert.Equal(t, "START", r.Data["collect_state"])
	assert.NotContains(t, r.Data, "total_weight")

	resp, err = m.Handle(ctx, envelope(IFCollectProcess, "c-1", map[string]any{"collect_state": "END"}))
	require.NoError(t, err)
	r = decode(t, resp)
	assert.Equal(t, ResultSuccess, r.Data["result_cd"])
	assert.Equal(t, 5500.0, r.Data["total_weight"])
	weights, ok := r.Data["channel_weights"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, weights, 10)
	assert.Equal(t, 100.0, weights["lc1"])
	assert.Equal(t, 1000.0, weights["lc10"])
	assert.Equal(t, []string{"open", "close"}, door.actions)

	require.Len(t, store.recs, 1)
	assert.Equal(t, "c-1", store.recs[0].SysID)
	assert.Equal(t, 5500.0, store.recs[0].Total)
	assert.Equal(t, "DE0001", store.recs[0].DeviceIdx)

	resp, _ = m.Handle(ctx, envelope(IFCollectProcess, "c-2", map[string]any{"collect_state": "PAUSE"}))
	assert.Equal(t, "Invalid collect_state: PAUSE", decode(t, resp).Data["result_msg"])
}

func TestHandle_CollectEndReadFailure(t *testing.T) {
	store := &fakeStore{}
	m := newManager(Options{Scale: &fakeScale{err: errors.New("no response")}, Store: store})
	resp, err := m.Handle(context.Background(), envelope(IFCollectProcess, "c", map[string]any{"collect_state": "END"}))
	require.NoError(t, err)
	r := decode(t, resp)
	assert.Equal(t, ResultFailure, r.Data["result_cd"])
	assert.NotContains(t, r.Data, "total_weight")
	assert.Empty(t, store.recs)
}

func TestHandle_GeneratesSysIDWhenMissing(t *testing.T) {
	m := newManager(Options{})
	resp, err := m.Handle(context.Background(), envelope(IFReboot, "", nil))
	require.NoError(t, err)
	assert.Len(t, decode(t, resp).Header.IFSysID, 36)
}

func TestHandle_UnknownAndMalformed(t *testing.T) {
	m := newManager(Options{})

	resp, err := m.Handle(context.Background(), envelope("IF_99", "z", nil))
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, ErrUnknownInterface))

	resp, err = m.Handle(context.Background(), []byte("{not json"))
	assert.Nil(t, resp)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	ctx := context.Background()

	m := newManager(Options{})
	resp, err := m.Health(ctx)
	require.NoError(t, err)
	r := decode(t, resp)
	assert.Equal(t, IFHealth, r.Header.IFID)
	assert.NotEmpty(t, r.Header.IFSysID)
	for _, k := range []string{"camera_status", "deadbolt_status", "loadcell_status", "card_terminal_status"} {
		assert.Equal(t, StatusNotInstalled, r.Data[k], k)
	}

	door := &fakeDoor{status: device.DoorLockStatus{Door: device.DoorClosed, Lock: device.LockLocked}}
	m = newManager(Options{Door: door, Scale: &fakeScale{readings: tenReadings()}})
	r = decode(t, must(m.Health(ctx)))
	assert.Equal(t, StatusNormal, r.Data["deadbolt_status"])
	assert.Equal(t, StatusNormal, r.Data["loadcell_status"])
	assert.Equal(t, StatusNotInstalled, r.Data["camera_status"])

	door.status = device.UnknownStatus
	m = newManager(Options{Door: door, Scale: &fakeScale{err: errors.New("x")}})
	r = decode(t, must(m.Health(ctx)))
	assert.Equal(t, StatusError, r.Data["deadbolt_status"])
	assert.Equal(t, StatusError, r.Data["loadcell_status"])

	resp, err = m.Handle(ctx, envelope(IFHealth, "keep-me", nil))
	require.NoError(t, err)
	assert.NotEqual(t, "keep-me", decode(t, resp).Header.IFSysID, "健康信封总是新的 IF_SYSID")
}

func must(b []byte, err error) []byte {
	if err != nil {
		panic(err)
	}
	return b
}
