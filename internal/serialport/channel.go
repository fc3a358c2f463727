package serialport

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/io-board/internal/boarderr"
	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
)

const (
	defaultWriteTimeout  = time.Second
	defaultMaxFrameBytes = 500
)

// Config 通道配置
type Config struct {
	Name          string
	WriteTimeout  time.Duration
	MaxFrameBytes int // 单次接收字节上限，防止设备不发终止符
}

// Channel 独占一个半双工串口，所有收发互斥
type Channel struct {
	mu     sync.Mutex
	cfg    Config
	open   Opener
	port   Port
	logger *zap.Logger

	onTx func(n int)
	onRx func(n int)

	// 上次超时仍未返回的写操作；完成前不允许新的写
	pending <-chan writeResult
}

// NewChannel 创建通道（初始为关闭状态）；opener 为 nil 时使用真实串口
func NewChannel(cfg Config, opener Opener, logger *zap.Logger) *Channel {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.MaxFrameBytes <= 0 {
		cfg.MaxFrameBytes = defaultMaxFrameBytes
	}
	if opener == nil {
		opener = OpenSerial
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{cfg: cfg, open: opener, logger: logger}
}

// SetMetricsCallbacks 安装收发字节数回调
func (c *Channel) SetMetricsCallbacks(onTx, onRx func(n int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTx = onTx
	c.onRx = onRx
}

// Name 端口名
func (c *Channel) Name() string { return c.cfg.Name }

// IsOpen 是否已打开
func (c *Channel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port != nil
}

// Open 打开端口；已打开时直接返回
func (c *Channel) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port != nil {
		c.logger.Warn("serial port already open", zap.String("port", c.cfg.Name))
		return nil
	}
	p, err := c.open(c.cfg.Name)
	if err != nil {
		return boarderr.Wrap(boarderr.KindConnection, "open", err)
	}
	c.port = p
	c.logger.Info("serial port opened",
		zap.String("port", c.cfg.Name),
		zap.Int("baud", BaudRate))
	return nil
}

// Close 释放端口；重复调用安全
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		return nil
	}
	if err := c.port.Close(); err != nil {
		c.logger.Error("close serial port", zap.String("port", c.cfg.Name), zap.Error(err))
	} else {
		c.logger.Info("serial port closed", zap.String("port", c.cfg.Name))
	}
	c.port = nil
	c.pending = nil
	return nil
}

// Send 清空收发缓冲后写出全部字节并刷新
func (c *Channel) Send(tx []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(tx)
}

// ReceiveUntilFrameEnd 读取直到 ETX 后再读到 1 字节 LRC、达到字节上限或超时。
// 超时且未收到任何字节返回 Timeout；收到部分数据则原样返回，由上层解码判定。
func (c *Channel) ReceiveUntilFrameEnd(timeout time.Duration) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receive(timeout)
}

// Exchange 在同一临界区内完成一次发送与对应接收
func (c *Channel) Exchange(tx []byte, timeout time.Duration) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.send(tx); err != nil {
		return nil, err
	}
	return c.receive(timeout)
}

type writeResult struct {
	n   int
	err error
}

func (c *Channel) send(tx []byte) error {
	if c.port == nil {
		return boarderr.Wrap(boarderr.KindCommunication, "send", boarderr.ErrNotConnected)
	}
	if err := c.awaitPending(); err != nil {
		return err
	}
	if err := c.port.ResetInputBuffer(); err != nil {
		return boarderr.Wrap(boarderr.KindCommunication, "send", fmt.Errorf("reset input: %w", err))
	}
	if err := c.port.ResetOutputBuffer(); err != nil {
		return boarderr.Wrap(boarderr.KindCommunication, "send", fmt.Errorf("reset output: %w", err))
	}

	port := c.port
	done := make(chan writeResult, 1)
	go func() {
		n, err := writeAll(port, tx)
		if err == nil {
			err = port.Drain()
		}
		done <- writeResult{n: n, err: err}
	}()

	timer := time.NewTimer(c.cfg.WriteTimeout)
	defer timer.Stop()
	select {
	case r := <-done:
		if r.err != nil {
			return boarderr.Wrap(boarderr.KindCommunication, "send", r.err)
		}
		if c.onTx != nil {
			c.onTx(r.n)
		}
		c.logger.Debug("tx", zap.Int("bytes", r.n), zap.String("hex", fmt.Sprintf("% X", tx)))
		return nil
	case <-timer.C:
		c.pending = done
		return boarderr.New(boarderr.KindTimeout, "send", "write timeout")
	}
}

// awaitPending 等待上次超时的写完成，最多再等一个写超时
func (c *Channel) awaitPending() error {
	if c.pending == nil {
		return nil
	}
	timer := time.NewTimer(c.cfg.WriteTimeout)
	defer timer.Stop()
	select {
	case r := <-c.pending:
		c.pending = nil
		if r.err != nil {
			c.logger.Warn("previous write finished with error", zap.Error(r.err))
		}
		return nil
	case <-timer.C:
		return boarderr.New(boarderr.KindTimeout, "send", "previous write still pending")
	}
}

func writeAll(w io.Writer, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := w.Write(p[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

func (c *Channel) receive(timeout time.Duration) ([]byte, error) {
	if c.port == nil {
		return nil, boarderr.Wrap(boarderr.KindCommunication, "receive", boarderr.ErrNotConnected)
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 0, 64)
	one := make([]byte, 1)
	etxSeen := false

	for len(buf) < c.cfg.MaxFrameBytes {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := c.port.SetReadTimeout(remaining); err != nil {
			return nil, boarderr.Wrap(boarderr.KindCommunication, "receive", err)
		}
		n, err := c.port.Read(one)
		if err != nil {
			return nil, boarderr.Wrap(boarderr.KindCommunication, "receive", err)
		}
		if n == 0 {
			continue
		}
		buf = append(buf, one[0])
		if etxSeen {
			c.traceRx(buf)
			return buf, nil
		}
		if one[0] == ioboard.ETX {
			etxSeen = true
		}
	}

	if len(buf) == 0 {
		return nil, boarderr.New(boarderr.KindTimeout, "receive", "no response")
	}
	c.logger.Warn("partial data without terminator",
		zap.Int("bytes", len(buf)),
		zap.Bool("limit_reached", len(buf) >= c.cfg.MaxFrameBytes))
	c.traceRx(buf)
	return buf, nil
}

func (c *Channel) traceRx(buf []byte) {
	if c.onRx != nil {
		c.onRx(len(buf))
	}
	c.logger.Debug("rx", zap.Int("bytes", len(buf)), zap.String("hex", fmt.Sprintf("% X", buf)))
}
