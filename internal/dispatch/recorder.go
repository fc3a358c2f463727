package dispatch

import (
	"time"

	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
)

// Record 一次调度调用的结果摘要
type Record struct {
	Command    ioboard.Command
	SubCommand ioboard.SubCommand
	Request    []byte
	Response   []byte
	Success    bool
	Attempts   int
	Duration   time.Duration
	Err        error
	At         time.Time
}

// Recorder 接收调用记录；实现不得阻塞调用方
type Recorder interface {
	Record(rec Record)
}

// RecorderFunc 函数适配
type RecorderFunc func(rec Record)

func (f RecorderFunc) Record(rec Record) { f(rec) }
