// Package dispatch 命令调度：编码 → 收发 → 解码，负责超时与重试策略。
// 本层不理解业务含义。
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/boarderr"
	"github.com/taoyao-code/io-board/internal/metrics"
	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
)

// 默认策略
const (
	DefaultTimeout    = time.Second
	DefaultRetryCount = 3
	DefaultRetryDelay = 100 * time.Millisecond
)

// Exchanger 一次原子的发送+接收；serialport.Channel 实现该接口
type Exchanger interface {
	Exchange(tx []byte, timeout time.Duration) ([]byte, error)
}

// Config 调度策略（构造后只读）
type Config struct {
	Timeout          time.Duration
	RetryCount       int // 总尝试次数
	RetryDelay       time.Duration
	ValidateChecksum bool
}

// Dispatcher 带重试的请求/应答调用
type Dispatcher struct {
	ch       Exchanger
	cfg      Config
	logger   *zap.Logger
	metrics  *metrics.AppMetrics
	recorder Recorder
}

// New 创建调度器
func New(ch Exchanger, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = DefaultRetryCount
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{ch: ch, cfg: cfg, logger: logger}
}

// SetMetrics 安装指标（可选）
func (d *Dispatcher) SetMetrics(m *metrics.AppMetrics) { d.metrics = m }

// SetRecorder 安装调用记录器（可选）
func (d *Dispatcher) SetRecorder(r Recorder) { d.recorder = r }

// Config 当前策略
func (d *Dispatcher) Config() Config { return d.cfg }

// CallOption 单次调用参数
type CallOption func(*callOptions)

type callOptions struct {
	timeout time.Duration
}

// WithTimeout 覆盖本次调用的单次应答超时
func WithTimeout(t time.Duration) CallOption {
	return func(o *callOptions) {
		if t > 0 {
			o.timeout = t
		}
	}
}

// ExhaustedError 所有尝试均失败，Last 为最后一次错误
type ExhaustedError struct {
	Command    ioboard.Command
	SubCommand ioboard.SubCommand
	Attempts   int
	Last       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("ioboard: %s-%s failed after %d attempt(s): %v", e.Command, e.SubCommand, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Invoke 发送命令并返回应答 payload。
// 帧结构错误与 Timeout/Communication 错误会重试，至多 RetryCount 次，间隔 RetryDelay；
// 每次尝试都重新收发，不复用上次残缺数据。应答子命令不一致只记录，不算失败。
func (d *Dispatcher) Invoke(ctx context.Context, cmd ioboard.Command, sub ioboard.SubCommand, payload []byte, opts ...CallOption) ([]byte, error) {
	if !cmd.Valid() || !sub.Valid() {
		return nil, boarderr.Errorf(boarderr.KindValidation, "invoke", "invalid command %s-%s", cmd, sub)
	}
	o := callOptions{timeout: d.cfg.Timeout}
	for _, opt := range opts {
		opt(&o)
	}

	tx := ioboard.Build(cmd, sub, payload)
	d.logger.Debug("sending command",
		zap.String("cmd", cmd.String()),
		zap.String("sub", sub.String()),
		zap.String("hex", fmt.Sprintf("% X", tx)))

	start := time.Now()
	resp, attempts, err := d.run(ctx, cmd, sub, tx, o.timeout, d.cfg.RetryCount)
	d.finish(Record{
		Command:    cmd,
		SubCommand: sub,
		Request:    payload,
		Response:   resp,
		Attempts:   attempts,
		Duration:   time.Since(start),
		Err:        err,
		At:         start,
	})
	return resp, err
}

// InvokeRaw 发送预构造帧（ioboard.Prebuilt），单次尝试，不重试
func (d *Dispatcher) InvokeRaw(ctx context.Context, key string, opts ...CallOption) ([]byte, error) {
	tx, ok := ioboard.Prebuilt(key)
	if !ok {
		return nil, boarderr.Errorf(boarderr.KindValidation, "invoke raw", "unknown frame key %q", key)
	}
	f, _, err := ioboard.Decode(tx, true)
	if err != nil {
		return nil, err
	}
	o := callOptions{timeout: d.cfg.Timeout}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	resp, attempts, err := d.run(ctx, f.Command, f.SubCommand, tx, o.timeout, 1)
	d.finish(Record{
		Command:    f.Command,
		SubCommand: f.SubCommand,
		Request:    f.Payload,
		Response:   resp,
		Attempts:   attempts,
		Duration:   time.Since(start),
		Err:        err,
		At:         start,
	})
	return resp, err
}

func (d *Dispatcher) run(ctx context.Context, cmd ioboard.Command, sub ioboard.SubCommand, tx []byte, timeout time.Duration, maxAttempts int) ([]byte, int, error) {
	var last error
	attempt := 0
	for attempt < maxAttempts {
		if err := ctx.Err(); err != nil {
			if last == nil {
				last = err
			}
			break
		}
		attempt++

		payload, err := d.attempt(cmd, sub, tx, timeout)
		if err == nil {
			d.observeAttempt(sub, "ok")
			return payload, attempt, nil
		}
		last = err
		d.observeAttempt(sub, boarderr.KindOf(err).String())

		if !boarderr.Retryable(err) {
			d.logger.Error("command failed with non-retryable error",
				zap.String("sub", sub.String()), zap.Error(err))
			break
		}
		d.logger.Warn("command attempt failed",
			zap.String("cmd", cmd.String()),
			zap.String("sub", sub.String()),
			zap.Int("attempt", attempt),
			zap.Int("max", maxAttempts),
			zap.Error(err))

		if attempt < maxAttempts {
			if err := sleepCtx(ctx, d.cfg.RetryDelay); err != nil {
				break
			}
		}
	}

	d.logger.Error("command failed",
		zap.String("cmd", cmd.String()),
		zap.String("sub", sub.String()),
		zap.Int("attempts", attempt),
		zap.Error(last))
	return nil, attempt, &ExhaustedError{Command: cmd, SubCommand: sub, Attempts: attempt, Last: last}
}

func (d *Dispatcher) attempt(cmd ioboard.Command, sub ioboard.SubCommand, tx []byte, timeout time.Duration) ([]byte, error) {
	raw, err := d.ch.Exchange(tx, timeout)
	if err != nil {
		return nil, err
	}
	f, payload, err := ioboard.Decode(raw, d.cfg.ValidateChecksum)
	if err != nil {
		d.logger.Warn("frame parse error", zap.Error(err), zap.String("hex", fmt.Sprintf("% X", raw)))
		return nil, err
	}
	if f.SubCommand != sub {
		d.logger.Warn("subcommand mismatch",
			zap.String("expected", sub.String()),
			zap.String("got", f.SubCommand.String()))
		if d.metrics != nil {
			d.metrics.SubcommandMismatch.WithLabelValues(sub.String()).Inc()
		}
	}
	if payload == nil {
		payload = []byte{}
	}
	d.logger.Debug("response", zap.String("cmd", cmd.String()), zap.String("payload", fmt.Sprintf("% X", payload)))
	return payload, nil
}

func (d *Dispatcher) observeAttempt(sub ioboard.SubCommand, outcome string) {
	if d.metrics == nil {
		return
	}
	d.metrics.DispatchAttempts.WithLabelValues(sub.String(), outcome).Inc()
}

func (d *Dispatcher) finish(rec Record) {
	rec.Success = rec.Err == nil
	if d.metrics != nil {
		result := "ok"
		if !rec.Success {
			result = "error"
		}
		d.metrics.DispatchTotal.WithLabelValues(rec.SubCommand.String(), result).Inc()
		d.metrics.DispatchDuration.WithLabelValues(rec.SubCommand.String()).Observe(rec.Duration.Seconds())
	}
	if d.recorder != nil {
		d.recorder.Record(rec)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsExhausted 判断是否为重试耗尽
func IsExhausted(err error) bool {
	var e *ExhaustedError
	return errors.As(err, &e)
}
