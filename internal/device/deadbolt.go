package device

import (
	"context"

	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
)

// DoorState 门状态
type DoorState string

const (
	DoorOpened  DoorState = "OPENED"
	DoorClosed  DoorState = "CLOSED"
	DoorUnknown DoorState = "UNKNOWN"
)

// LockState 锁状态
type LockState string

const (
	LockLocked   LockState = "LOCKED"
	LockUnlocked LockState = "UNLOCKED"
	LockUnknown  LockState = "UNKNOWN"
)

// 门锁状态应答布局：byte0 门，byte6 锁
const (
	statusMinLen  = 7
	doorByteIndex = 0
	lockByteIndex = 6
)

// DoorLockStatus 门锁状态
type DoorLockStatus struct {
	Door DoorState `json:"door"`
	Lock LockState `json:"lock"`
}

// UnknownStatus 无法判定时的兜底值
var UnknownStatus = DoorLockStatus{Door: DoorUnknown, Lock: LockUnknown}

// DecodeDoorLockStatus 解析 RQ-ID 应答；长度不足返回 UnknownStatus
func DecodeDoorLockStatus(payload []byte) DoorLockStatus {
	if len(payload) < statusMinLen {
		return UnknownStatus
	}
	st := UnknownStatus
	switch payload[doorByteIndex] {
	case 'O':
		st.Door = DoorOpened
	case 'C':
		st.Door = DoorClosed
	}
	switch payload[lockByteIndex] {
	case 'L':
		st.Lock = LockLocked
	case 'U':
		st.Lock = LockUnlocked
	}
	return st
}

// DeadBolt 电子门锁
type DeadBolt struct {
	inv    Invoker
	logger *zap.Logger
}

// NewDeadBolt 创建门锁控制器
func NewDeadBolt(inv Invoker, logger *zap.Logger) *DeadBolt {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadBolt{inv: inv, logger: logger}
}

// Open 开门 (MC-DC 'O')
func (d *DeadBolt) Open(ctx context.Context) error {
	return d.control(ctx, 'O', "open")
}

// Close 关门 (MC-DC 'C')
func (d *DeadBolt) Close(ctx context.Context) error {
	return d.control(ctx, 'C', "close")
}

func (d *DeadBolt) control(ctx context.Context, b byte, action string) error {
	if _, err := d.inv.Invoke(ctx, ioboard.CommandMC, ioboard.SubDC, []byte{b}); err != nil {
		d.logger.Error("deadbolt command failed", zap.String("action", action), zap.Error(err))
		return err
	}
	d.logger.Info("deadbolt command sent", zap.String("action", action))
	return nil
}

// Status 查询门锁状态 (RQ-ID)。
// 调度失败返回 UnknownStatus 和错误；应答过短返回 UnknownStatus 且不报错。
func (d *DeadBolt) Status(ctx context.Context) (DoorLockStatus, error) {
	payload, err := d.inv.Invoke(ctx, ioboard.CommandRQ, ioboard.SubID, nil)
	if err != nil {
		d.logger.Error("failed to query deadbolt status", zap.Error(err))
		return UnknownStatus, err
	}
	if len(payload) < statusMinLen {
		d.logger.Warn("short deadbolt status response",
			zap.Int("len", len(payload)), zap.Int("want", statusMinLen))
		return UnknownStatus, nil
	}
	st := DecodeDoorLockStatus(payload)
	if st.Door == DoorUnknown {
		d.logger.Warn("unknown door byte", zap.Uint8("byte", payload[doorByteIndex]))
	}
	if st.Lock == LockUnknown {
		d.logger.Warn("unknown lock byte", zap.Uint8("byte", payload[lockByteIndex]))
	}
	d.logger.Debug("deadbolt status", zap.String("door", string(st.Door)), zap.String("lock", string(st.Lock)))
	return st, nil
}

// IsDoorOpen 门是否打开
func (d *DeadBolt) IsDoorOpen(ctx context.Context) (bool, error) {
	st, err := d.Status(ctx)
	return st.Door == DoorOpened, err
}

// IsDoorClosed 门是否关闭
func (d *DeadBolt) IsDoorClosed(ctx context.Context) (bool, error) {
	st, err := d.Status(ctx)
	return st.Door == DoorClosed, err
}

// IsLocked 是否上锁
func (d *DeadBolt) IsLocked(ctx context.Context) (bool, error) {
	st, err := d.Status(ctx)
	return st.Lock == LockLocked, err
}

// IsUnlocked 是否解锁
func (d *DeadBolt) IsUnlocked(ctx context.Context) (bool, error) {
	st, err := d.Status(ctx)
	return st.Lock == LockUnlocked, err
}
