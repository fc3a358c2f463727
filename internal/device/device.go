// Package device 将 IO 板应答 payload 解释为业务数据：门锁、称重、系统信息。
//
// 每个公开操作恰好发起一次调度调用；重试策略全部由 dispatch 负责。
// 调度失败时查询操作返回约定的兜底值并附带错误，payload 存在但
// 无法解释时返回 boarderr.ErrResponse，本地参数校验失败返回
// boarderr.ErrValidation 且不产生任何 I/O。
package device

import (
	"context"

	"github.com/taoyao-code/io-board/internal/dispatch"
	"github.com/taoyao-code/io-board/internal/protocol/ioboard"
)

// Invoker 命令调用入口；dispatch.Dispatcher 实现该接口
type Invoker interface {
	Invoke(ctx context.Context, cmd ioboard.Command, sub ioboard.SubCommand, payload []byte, opts ...dispatch.CallOption) ([]byte, error)
}

var _ Invoker = (*dispatch.Dispatcher)(nil)
