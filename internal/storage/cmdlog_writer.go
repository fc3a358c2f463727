package storage

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/dispatch"
	"github.com/taoyao-code/io-board/internal/storage/models"
)

const (
	defaultLogBuffer   = 256
	defaultFlushBatch  = 50
	defaultFlushPeriod = time.Second
	flushWriteTimeout  = 5 * time.Second
)

// CmdLogWriter 异步写入命令日志，实现 dispatch.Recorder。
// 缓冲满时丢弃新记录，不阻塞串口调用方。
type CmdLogWriter struct {
	repo    Repo
	logger  *zap.Logger
	ch      chan models.CmdLog
	batch   int
	period  time.Duration
	dropped atomic.Int64
	done    chan struct{}
}

// NewCmdLogWriter 创建写入器；buffer<=0 使用默认值
func NewCmdLogWriter(repo Repo, buffer int, logger *zap.Logger) *CmdLogWriter {
	if buffer <= 0 {
		buffer = defaultLogBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CmdLogWriter{
		repo:   repo,
		logger: logger,
		ch:     make(chan models.CmdLog, buffer),
		batch:  defaultFlushBatch,
		period: defaultFlushPeriod,
		done:   make(chan struct{}),
	}
}

var _ dispatch.Recorder = (*CmdLogWriter)(nil)

// Record 非阻塞入队
func (w *CmdLogWriter) Record(rec dispatch.Record) {
	select {
	case w.ch <- ToCmdLog(rec):
	default:
		if n := w.dropped.Add(1); n == 1 || n%100 == 0 {
			w.logger.Warn("cmd log buffer full, dropping records", zap.Int64("dropped", n))
		}
	}
}

// Dropped 累计丢弃条数
func (w *CmdLogWriter) Dropped() int64 { return w.dropped.Load() }

// Done Run 退出后关闭
func (w *CmdLogWriter) Done() <-chan struct{} { return w.done }

// Run 批量落库直到 ctx 取消；退出前尽力写完缓冲中的记录
func (w *CmdLogWriter) Run(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	buf := make([]models.CmdLog, 0, w.batch)
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case l := <-w.ch:
					buf = append(buf, l)
				default:
					w.flush(buf)
					return
				}
			}
		case l := <-w.ch:
			buf = append(buf, l)
			if len(buf) >= w.batch {
				w.flush(buf)
				buf = buf[:0]
			}
		case <-ticker.C:
			if len(buf) > 0 {
				w.flush(buf)
				buf = buf[:0]
			}
		}
	}
}

func (w *CmdLogWriter) flush(buf []models.CmdLog) {
	if len(buf) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushWriteTimeout)
	defer cancel()
	if err := w.repo.AppendCmdLogs(ctx, buf); err != nil {
		w.logger.Error("write cmd log failed", zap.Int("count", len(buf)), zap.Error(err))
	}
}

// ToCmdLog 调度记录转为存储模型
func ToCmdLog(rec dispatch.Record) models.CmdLog {
	l := models.CmdLog{
		Command:    rec.Command.String(),
		SubCommand: rec.SubCommand.String(),
		Request:    rec.Request,
		Response:   rec.Response,
		Success:    rec.Success,
		Attempts:   int32(rec.Attempts),
		DurationMs: int32(rec.Duration.Milliseconds()),
		CreatedAt:  rec.At,
	}
	if rec.Err != nil {
		msg := rec.Err.Error()
		l.Error = &msg
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	return l
}
