package device

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/boarderr"
	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
)

// decimalField 称重字段只接受带符号十进制数
var decimalField = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// 称重应答布局：10 通道 × 6 字节 ASCII
const (
	NumChannels     = 10
	BytesPerChannel = 6
	WeightsLen      = NumChannels * BytesPerChannel
)

// Reading 单通道读数
type Reading struct {
	Channel int     `json:"channel"` // 1..10
	Value   float64 `json:"value"`
	Raw     string  `json:"raw"` // 去空白后的原始字段
}

func (r Reading) String() string {
	return fmt.Sprintf("LC%d: %g (raw: %s)", r.Channel, r.Value, r.Raw)
}

// DecodeWeights 解析 RQ-IW 应答，总是返回 NumChannels 个读数。
// 空字段或非十进制字段（含 nan/inf/指数/十六进制）值为 0 并保留 Raw；
// 数据不足的通道值为 0、Raw 为空。
func DecodeWeights(payload []byte) []Reading {
	out := make([]Reading, NumChannels)
	for i := range out {
		out[i] = Reading{Channel: i + 1}
		start := i * BytesPerChannel
		if start >= len(payload) {
			continue
		}
		end := min(start+BytesPerChannel, len(payload))
		raw := strings.TrimSpace(string(payload[start:end]))
		if raw == "" {
			continue
		}
		out[i].Raw = raw
		out[i].Value = parseDecimal(raw)
	}
	return out
}

func parseDecimal(raw string) float64 {
	if !decimalField.MatchString(raw) {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// Total 读数求和
func Total(readings []Reading) float64 {
	var sum float64
	for _, r := range readings {
		sum += r.Value
	}
	return sum
}

// LoadCell 10 通道称重传感器
type LoadCell struct {
	inv    Invoker
	logger *zap.Logger

	mu   sync.RWMutex
	last []Reading
}

// NewLoadCell 创建称重控制器
func NewLoadCell(inv Invoker, logger *zap.Logger) *LoadCell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoadCell{inv: inv, logger: logger}
}

// ReadAll 读取全部通道 (RQ-IW)；失败返回 nil 和错误
func (l *LoadCell) ReadAll(ctx context.Context) ([]Reading, error) {
	payload, err := l.inv.Invoke(ctx, ioboard.CommandRQ, ioboard.SubIW, nil)
	if err != nil {
		l.logger.Error("failed to query loadcell weights", zap.Error(err))
		return nil, err
	}
	if len(payload) < WeightsLen {
		l.logger.Warn("incomplete loadcell data",
			zap.Int("len", len(payload)), zap.Int("want", WeightsLen))
	}
	readings := DecodeWeights(payload)

	l.mu.Lock()
	l.last = readings
	l.mu.Unlock()
	l.logger.Debug("loadcell readings", zap.Float64s("values", values(readings)))
	return readings, nil
}

// ReadChannel 读取单个通道 (1..10)，越界时不发起 I/O
func (l *LoadCell) ReadChannel(ctx context.Context, channel int) (Reading, error) {
	if channel < 1 || channel > NumChannels {
		return Reading{}, boarderr.Errorf(boarderr.KindValidation, "read channel",
			"invalid channel %d (valid: 1-%d)", channel, NumChannels)
	}
	readings, err := l.ReadAll(ctx)
	if err != nil {
		return Reading{}, err
	}
	return readings[channel-1], nil
}

// ZeroCalibration 零点校准 (MC-LZ)
func (l *LoadCell) ZeroCalibration(ctx context.Context) error {
	if _, err := l.inv.Invoke(ctx, ioboard.CommandMC, ioboard.SubLZ, nil); err != nil {
		l.logger.Error("loadcell zero calibration failed", zap.Error(err))
		return err
	}
	l.logger.Info("loadcell zero calibration completed")
	return nil
}

// TotalWeight 全部通道重量之和
func (l *LoadCell) TotalWeight(ctx context.Context) (float64, error) {
	readings, err := l.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	return Total(readings), nil
}

// ChannelValues 全部通道数值
func (l *LoadCell) ChannelValues(ctx context.Context) ([]float64, error) {
	readings, err := l.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return values(readings), nil
}

// LastReadings 最近一次成功读取的缓存；从未读取时为 nil
func (l *LoadCell) LastReadings() []Reading {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.last == nil {
		return nil
	}
	out := make([]Reading, len(l.last))
	copy(out, l.last)
	return out
}

func values(readings []Reading) []float64 {
	out := make([]float64, len(readings))
	for i, r := range readings {
		out[i] = r.Value
	}
	return out
}
