// Package boarderr IO 板通信错误分类（连接/通信/超时/帧/校验/响应/参数）
package boarderr

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind int

const (
	KindUnknown       Kind = iota
	KindConnection         // 端口无法打开（占用、不存在、无权限）
	KindCommunication      // 已打开端口上的读写失败（超时除外）
	KindTimeout            // 截止时间前未观察到数据
	KindFrame              // 帧结构错误
	KindChecksum           // 校验和不匹配（仅在开启校验时）
	KindResponse           // 响应存在但不满足解码前置条件
	KindValidation         // 本地参数校验失败，未发生 I/O
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindCommunication:
		return "communication"
	case KindTimeout:
		return "timeout"
	case KindFrame:
		return "frame"
	case KindChecksum:
		return "checksum"
	case KindResponse:
		return "response"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error 带类别的错误，Op 为发生错误的操作名
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("ioboard %s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("ioboard %s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("ioboard %s: %s", e.Kind, e.Op)
	default:
		return "ioboard " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is 与类别哨兵比较：errors.Is(err, ErrTimeout)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// 类别哨兵，仅用于 errors.Is 比较
var (
	ErrConnection    = &Error{Kind: KindConnection}
	ErrCommunication = &Error{Kind: KindCommunication}
	ErrTimeout       = &Error{Kind: KindTimeout}
	ErrFrame         = &Error{Kind: KindFrame}
	ErrChecksum      = &Error{Kind: KindChecksum}
	ErrResponse      = &Error{Kind: KindResponse}
	ErrValidation    = &Error{Kind: KindValidation}
)

// ErrNotConnected 通道未打开；重试无意义
var ErrNotConnected = errors.New("not connected")

// New 以消息文本创建带类别错误
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Wrap 为底层错误附加类别；err 为 nil 时返回 nil
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf 格式化创建带类别错误，支持 %w
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf 返回错误链中第一个 *Error 的类别
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable 传输层与帧结构错误可由调度器重试；通道未打开除外
func Retryable(err error) bool {
	if errors.Is(err, ErrNotConnected) {
		return false
	}
	switch KindOf(err) {
	case KindTimeout, KindCommunication, KindFrame, KindChecksum:
		return true
	}
	return false
}
