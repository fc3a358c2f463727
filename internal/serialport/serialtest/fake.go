// Package serialtest 内存串口，模拟 IO 板的请求/应答行为
package serialtest

import (
	"errors"
	"sync"
	"time"

	"github.com/taoyao-code/io-board/internal/serialport"
)

// Responder 根据下行帧生成上行字节；返回 nil 表示设备不应答
type Responder func(tx []byte) []byte

// Port 满足 serialport.Port
type Port struct {
	mu          sync.Mutex
	respond     Responder
	rx          []byte
	readTimeout time.Duration
	writes      [][]byte
	closed      bool

	// 故障注入
	WriteDelay time.Duration
	WriteErr   error
	ReadErr    error
}

var ErrClosed = errors.New("serialtest: port closed")

// New 创建内存串口
func New(respond Responder) *Port {
	return &Port{respond: respond, readTimeout: time.Second}
}

// Opener 返回总是打开 p 的 Opener
func Opener(p *Port) serialport.Opener {
	return func(string) (serialport.Port, error) { return p, nil }
}

// FailingOpener 返回总是失败的 Opener
func FailingOpener(err error) serialport.Opener {
	return func(string) (serialport.Port, error) { return nil, err }
}

// Inject 直接向接收缓冲追加字节（模拟上一轮残留数据）
func (p *Port) Inject(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rx = append(p.rx, b...)
}

// SetResponder 替换应答逻辑
func (p *Port) SetResponder(r Responder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.respond = r
}

// Writes 已写出的帧
func (p *Port) Writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.writes))
	copy(out, p.writes)
	return out
}

// WriteCount 写出次数
func (p *Port) WriteCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.writes)
}

// Closed 是否已关闭
func (p *Port) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Port) Write(b []byte) (int, error) {
	if p.WriteDelay > 0 {
		time.Sleep(p.WriteDelay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}
	if p.WriteErr != nil {
		return 0, p.WriteErr
	}
	p.writes = append(p.writes, append([]byte(nil), b...))
	if p.respond != nil {
		p.rx = append(p.rx, p.respond(b)...)
	}
	return len(b), nil
}

func (p *Port) Read(b []byte) (int, error) {
	p.mu.Lock()
	deadline := time.Now().Add(p.readTimeout)
	p.mu.Unlock()

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return 0, ErrClosed
		}
		if p.ReadErr != nil {
			err := p.ReadErr
			p.mu.Unlock()
			return 0, err
		}
		if len(p.rx) > 0 {
			n := copy(b, p.rx)
			p.rx = p.rx[n:]
			p.mu.Unlock()
			return n, nil
		}
		p.mu.Unlock()

		if !time.Now().Before(deadline) {
			// 与 go.bug.st/serial 一致：超时返回 0, nil
			return 0, nil
		}
		time.Sleep(time.Millisecond)
	}
}

func (p *Port) Drain() error { return nil }

func (p *Port) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rx = nil
	return nil
}

func (p *Port) ResetOutputBuffer() error { return nil }

func (p *Port) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = t
	return nil
}

func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
