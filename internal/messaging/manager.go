package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/device"
	"github.com/taoyao-code/io-board/internal/metrics"
	"github.com/taoyao-code/io-board/internal/storage/models"
)

// ErrUnknownInterface 没有对应处理器的 IF_ID，不产生应答
var ErrUnknownInterface = errors.New("messaging: unknown interface id")

// Door 门锁能力
type Door interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Status(ctx context.Context) (device.DoorLockStatus, error)
}

// Scale 称重能力
type Scale interface {
	ReadAll(ctx context.Context) ([]device.Reading, error)
}

// Rebooter 系统复位能力
type Rebooter interface {
	SystemReset(ctx context.Context) error
}

// CollectStore 采集记录落库
type CollectStore interface {
	CreateCollectRecord(ctx context.Context, rec *models.CollectRecord) error
}

// Options Manager 依赖；设备能力为 nil 时按“未安装”处理
type Options struct {
	DeviceIdx   string
	DivisionIdx string
	Host        string

	Door   Door
	Scale  Scale
	System Rebooter
	Store  CollectStore

	Logger  *zap.Logger
	Metrics *metrics.AppMetrics
	Now     func() time.Time
}

type handlerFunc func(ctx context.Context, sysID string, data CommandData) (any, string)

// Manager 按 IF_ID 路由命令信封
type Manager struct {
	opts     Options
	logger   *zap.Logger
	handlers map[string]handlerFunc
}

// NewManager 创建管理器
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	m := &Manager{opts: opts, logger: opts.Logger}
	m.handlers = map[string]handlerFunc{
		IFReboot:         m.handleReboot,
		IFHealth:         m.handleHealth,
		IFDoorManual:     m.handleDoorManual,
		IFDoorCollect:    m.handleDoorCollect,
		IFCollectProcess: m.handleCollect,
	}
	return m
}

// Handle 处理一条入站信封并返回应答 JSON。
// 解析失败返回错误；未知 IF_ID 返回 ErrUnknownInterface。
// 应答沿用请求的 IF_SYSID；IF_02 的应答是一条新的健康信封。
func (m *Manager) Handle(ctx context.Context, raw []byte) ([]byte, error) {
	in, data, err := parseInbound(raw)
	if err != nil {
		m.logger.Error("failed to parse incoming message", zap.Error(err))
		return nil, err
	}
	ifID := in.Header.IFID
	h, ok := m.handlers[ifID]
	if !ok {
		m.logger.Warn("no handler for interface", zap.String("if_id", ifID))
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterface, ifID)
	}

	sysID := in.Header.IFSysID
	if ifID == IFHealth || sysID == "" {
		sysID = NewSysID()
	}
	m.logger.Info("processing command envelope",
		zap.String("if_id", ifID),
		zap.String("if_sysid", in.Header.IFSysID),
		zap.String("door_state", data.DoorState),
		zap.String("collect_state", data.CollectState))

	payload, result := h(ctx, sysID, data)
	if m.opts.Metrics != nil {
		m.opts.Metrics.MessagesTotal.WithLabelValues(ifID, result).Inc()
	}
	return json.Marshal(NewEnvelope(ifID, sysID, m.opts.Host, m.opts.Now(), payload))
}

// Health 生成 IF_02 健康信封
func (m *Manager) Health(ctx context.Context) ([]byte, error) {
	return json.Marshal(NewEnvelope(IFHealth, "", m.opts.Host, m.opts.Now(), m.healthData(ctx)))
}

func (m *Manager) result(code, msg string) Result {
	return Result{
		DeviceIdx:   m.opts.DeviceIdx,
		DivisionIdx: m.opts.DivisionIdx,
		ResultCd:    code,
		ResultMsg:   msg,
	}
}

func (m *Manager) handleHealth(ctx context.Context, _ string, _ CommandData) (any, string) {
	return m.healthData(ctx), ResultSuccess
}

func (m *Manager) handleReboot(ctx context.Context, _ string, _ CommandData) (any, string) {
	if m.opts.System == nil {
		m.logger.Warn("system manager not provided, skipping reboot")
		return m.result(ResultSuccess, ""), ResultSuccess
	}
	if err := m.opts.System.SystemReset(ctx); err != nil {
		return m.result(ResultFailure, "System reset failed"), ResultFailure
	}
	return m.result(ResultSuccess, ""), ResultSuccess
}

// doorAction 执行 OPEN/CLOSE；返回失败描述，成功为空
func (m *Manager) doorAction(ctx context.Context, state string) string {
	if m.opts.Door == nil {
		return "DeadBolt not available"
	}
	switch state {
	case DoorOpen:
		if err := m.opts.Door.Open(ctx); err != nil {
			return "Failed to open door"
		}
	case DoorClose:
		if err := m.opts.Door.Close(ctx); err != nil {
			return "Failed to close door"
		}
	default:
		return fmt.Sprintf("Invalid door_state: %s", state)
	}
	return ""
}

func (m *Manager) handleDoorManual(ctx context.Context, _ string, data CommandData) (any, string) {
	ack := DoorManualAck{Result: m.result(ResultSuccess, ""), DoorState: data.DoorState}
	if msg := m.doorAction(ctx, data.DoorState); msg != "" {
		ack.Result = m.result(ResultFailure, msg)
	}
	return ack, ack.ResultCd
}

func (m *Manager) handleDoorCollect(ctx context.Context, _ string, data CommandData) (any, string) {
	ack := DoorCollectAck{
		Result:         m.result(ResultSuccess, ""),
		DoorState:      data.DoorState,
		CameraStatus:   StatusNotInstalled,
		DeadboltStatus: StatusNotInstalled,
		LoadcellStatus: StatusNotInstalled,
	}
	msg := m.doorAction(ctx, data.DoorState)
	switch {
	case m.opts.Door == nil:
		ack.DeadboltStatus = StatusError
	case data.DoorState == DoorOpen || data.DoorState == DoorClose:
		ack.DeadboltStatus = StatusNormal
		if msg != "" {
			ack.DeadboltStatus = StatusError
		}
	}
	if msg != "" {
		ack.Result = m.result(ResultFailure, msg)
	}
	if m.opts.Scale != nil {
		ack.LoadcellStatus = StatusNormal
		if readings, err := m.opts.Scale.ReadAll(ctx); err != nil || len(readings) == 0 {
			ack.LoadcellStatus = StatusError
		}
	}
	return ack, ack.ResultCd
}

func (m *Manager) handleCollect(ctx context.Context, sysID string, data CommandData) (any, string) {
	ack := CollectAck{Result: m.result(ResultSuccess, ""), CollectState: data.CollectState}
	switch data.CollectState {
	case CollectStart:
		if m.opts.Door != nil {
			if err := m.opts.Door.Open(ctx); err != nil {
				ack.Result = m.result(ResultFailure, "Failed to open door for collection")
			}
		}
	case CollectEnd:
		if m.opts.Door != nil {
			if err := m.opts.Door.Close(ctx); err != nil {
				m.logger.Warn("close door on collect end failed", zap.Error(err))
			}
		}
		if m.opts.Scale != nil {
			readings, err := m.opts.Scale.ReadAll(ctx)
			if err != nil {
				ack.Result = m.result(ResultFailure, fmt.Sprintf("LoadCell read error: %v", err))
				break
			}
			total := device.Total(readings)
			ack.TotalWeight = &total
			ack.ChannelWeights = make(map[string]float64, len(readings))
			for _, r := range readings {
				ack.ChannelWeights[fmt.Sprintf("lc%d", r.Channel)] = r.Value
			}
			m.storeCollect(ctx, sysID, total, readings)
		}
	default:
		ack.Result = m.result(ResultFailure, fmt.Sprintf("Invalid collect_state: %s", data.CollectState))
	}
	return ack, ack.ResultCd
}

func (m *Manager) storeCollect(ctx context.Context, sysID string, total float64, readings []device.Reading) {
	if m.opts.Store == nil {
		return
	}
	weights, err := json.Marshal(readings)
	if err != nil {
		m.logger.Error("marshal collect weights failed", zap.Error(err))
		return
	}
	rec := &models.CollectRecord{SysID: sysID, DeviceIdx: m.opts.DeviceIdx, Total: total, Weights: weights}
	if err := m.opts.Store.CreateCollectRecord(ctx, rec); err != nil {
		m.logger.Error("store collect record failed", zap.String("if_sysid", sysID), zap.Error(err))
	}
}

func (m *Manager) healthData(ctx context.Context) HealthData {
	h := HealthData{
		DeviceIdx:          m.opts.DeviceIdx,
		DivisionIdx:        m.opts.DivisionIdx,
		CameraStatus:       StatusNotInstalled,
		DeadboltStatus:     StatusNotInstalled,
		LoadcellStatus:     StatusNotInstalled,
		CardTerminalStatus: StatusNotInstalled,
	}
	if m.opts.Door != nil {
		h.DeadboltStatus = StatusError
		st, err := m.opts.Door.Status(ctx)
		if err == nil && st.Door != device.DoorUnknown && st.Lock != device.LockUnknown {
			h.DeadboltStatus = StatusNormal
		}
	}
	if m.opts.Scale != nil {
		h.LoadcellStatus = StatusError
		if readings, err := m.opts.Scale.ReadAll(ctx); err == nil && len(readings) > 0 {
			h.LoadcellStatus = StatusNormal
		}
	}
	return h
}
