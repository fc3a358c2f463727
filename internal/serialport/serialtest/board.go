package serialtest

import (
	"sync"

	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
)

// Board 按子命令应答的模拟 IO 板
type Board struct {
	mu       sync.Mutex
	payloads map[ioboard.SubCommand][]byte
	silent   map[ioboard.SubCommand]bool
	requests []ioboard.Frame
}

// NewBoard 创建模拟板，默认对所有子命令回空数据
func NewBoard() *Board {
	return &Board{
		payloads: make(map[ioboard.SubCommand][]byte),
		silent:   make(map[ioboard.SubCommand]bool),
	}
}

// Set 设置某子命令的应答数据
func (b *Board) Set(sub ioboard.SubCommand, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads[sub] = payload
	delete(b.silent, sub)
}

// Silence 让某子命令不应答（触发超时）
func (b *Board) Silence(sub ioboard.SubCommand) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.silent[sub] = true
}

// Requests 已收到的下行帧
func (b *Board) Requests() []ioboard.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ioboard.Frame, len(b.requests))
	copy(out, b.requests)
	return out
}

// Respond 实现 Responder
func (b *Board) Respond(tx []byte) []byte {
	f, _, err := ioboard.Decode(tx, true)
	if err != nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, ioboard.Frame{
		Command:    f.Command,
		SubCommand: f.SubCommand,
		Payload:    append([]byte(nil), f.Payload...),
	})
	if b.silent[f.SubCommand] {
		return nil
	}
	return ioboard.Build(f.Command, f.SubCommand, b.payloads[f.SubCommand])
}

// Port 返回连接此模拟板的内存串口
func (b *Board) Port() *Port {
	return New(b.Respond)
}
