package device

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/boarderr"
	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
)

// 系统信息应答布局
const (
	ProductionNumberLen = 11
	ErrorHistoryCount   = 4
	ErrorEntryLen       = 4
)

// SystemInfo 系统信息
type SystemInfo struct {
	ProductionNumber string `json:"production_number"`
	Raw              []byte `json:"raw,omitempty"`
}

// ErrorEntry 错误历史条目
type ErrorEntry struct {
	Index       int    `json:"index"` // 1..4
	Code        string `json:"code"`
	Raw         []byte `json:"raw,omitempty"`
	Description string `json:"description,omitempty"`
}

func (e ErrorEntry) String() string {
	return fmt.Sprintf("Error %d: %s", e.Index, e.Code)
}

// DecodeSystemInfo 取 RQ-MI 应答前 11 字节作为生产编号（去右侧空白）。
// 该区间出现非 ASCII 字节时返回 ResponseError。
func DecodeSystemInfo(payload []byte) (SystemInfo, error) {
	head := payload[:min(ProductionNumberLen, len(payload))]
	if !isASCII(head) {
		return SystemInfo{}, boarderr.Errorf(boarderr.KindResponse, "decode system info",
			"non-ascii production number: % X", payload)
	}
	return SystemInfo{
		ProductionNumber: strings.TrimRight(string(head), " \t\r\n\x00"),
		Raw:              append([]byte(nil), payload...),
	}, nil
}

// DecodeErrorHistory 解析 RQ-ER 应答，总是返回 ErrorHistoryCount 条。
// 各条目独立解析，非 ASCII 条目 Code 为空，不影响其它条目。
func DecodeErrorHistory(payload []byte) []ErrorEntry {
	out := make([]ErrorEntry, ErrorHistoryCount)
	for i := range out {
		out[i] = ErrorEntry{Index: i + 1}
		start := i * ErrorEntryLen
		if start >= len(payload) {
			continue
		}
		raw := payload[start:min(start+ErrorEntryLen, len(payload))]
		if !isASCII(raw) {
			continue
		}
		out[i].Code = strings.TrimSpace(string(raw))
		out[i].Raw = append([]byte(nil), raw...)
	}
	return out
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7F {
			return false
		}
	}
	return true
}

// SystemManager 系统管理：信息、生产编号、错误历史、复位
type SystemManager struct {
	inv    Invoker
	logger *zap.Logger
	codes  *ErrorCodes
}

// NewSystemManager 创建系统管理器
func NewSystemManager(inv Invoker, logger *zap.Logger) *SystemManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemManager{inv: inv, logger: logger}
}

// SetErrorCodes 安装错误码说明表（可选）
func (s *SystemManager) SetErrorCodes(c *ErrorCodes) { s.codes = c }

// Info 查询系统信息 (RQ-MI)；调度失败返回零值和错误
func (s *SystemManager) Info(ctx context.Context) (SystemInfo, error) {
	payload, err := s.inv.Invoke(ctx, ioboard.CommandRQ, ioboard.SubMI, nil)
	if err != nil {
		s.logger.Error("failed to query system info", zap.Error(err))
		return SystemInfo{}, err
	}
	info, err := DecodeSystemInfo(payload)
	if err != nil {
		s.logger.Error("failed to parse system info", zap.Error(err))
		return SystemInfo{}, err
	}
	s.logger.Info("system info", zap.String("production_number", info.ProductionNumber))
	return info, nil
}

// SetProductionNumber 写入生产编号 (MC-WP)；空串或非 ASCII 在本地拒绝
func (s *SystemManager) SetProductionNumber(ctx context.Context, number string) error {
	if number == "" {
		return boarderr.New(boarderr.KindValidation, "set production number", "empty production number")
	}
	if !isASCII([]byte(number)) {
		return boarderr.Errorf(boarderr.KindValidation, "set production number", "non-ascii production number %q", number)
	}
	if _, err := s.inv.Invoke(ctx, ioboard.CommandMC, ioboard.SubWP, []byte(number)); err != nil {
		s.logger.Error("failed to set production number", zap.Error(err))
		return err
	}
	s.logger.Info("production number set", zap.String("production_number", number))
	return nil
}

// ErrorHistory 查询错误历史 (RQ-ER)；调度失败返回 nil 和错误
func (s *SystemManager) ErrorHistory(ctx context.Context) ([]ErrorEntry, error) {
	payload, err := s.inv.Invoke(ctx, ioboard.CommandRQ, ioboard.SubER, nil)
	if err != nil {
		s.logger.Error("failed to query error history", zap.Error(err))
		return nil, err
	}
	entries := DecodeErrorHistory(payload)
	for i := range entries {
		if desc, ok := s.codes.Describe(entries[i].Code); ok {
			entries[i].Description = desc
		}
	}
	s.logger.Debug("error history", zap.Any("entries", entries))
	return entries, nil
}

// ClearErrorHistory 清除错误历史 (MC-EZ)
func (s *SystemManager) ClearErrorHistory(ctx context.Context) error {
	return s.control(ctx, ioboard.SubEZ, "clear error history")
}

// FactoryReset 恢复出厂设置 (MC-PD)，会清除设备全部配置
func (s *SystemManager) FactoryReset(ctx context.Context) error {
	s.logger.Warn("executing factory reset")
	return s.control(ctx, ioboard.SubPD, "factory reset")
}

// SystemReset 系统复位 (MC-RT)
func (s *SystemManager) SystemReset(ctx context.Context) error {
	return s.control(ctx, ioboard.SubRT, "system reset")
}

func (s *SystemManager) control(ctx context.Context, sub ioboard.SubCommand, action string) error {
	if _, err := s.inv.Invoke(ctx, ioboard.CommandMC, sub, nil); err != nil {
		s.logger.Error("system command failed", zap.String("action", action), zap.Error(err))
		return err
	}
	s.logger.Info("system command completed", zap.String("action", action))
	return nil
}
