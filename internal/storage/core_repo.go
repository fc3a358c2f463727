package storage

import (
	"context"
	"time"

	"github.com/taoyao-code/io-board/internal/storage/models"
)

// Repo 命令日志与采集记录的存储抽象。
// 约束：
// - 上层不直接写 SQL，统一通过本接口访问
// - 接口保持 DB-agnostic（面向模型与基础类型）
type Repo interface {
	// ---------- 命令日志 ----------
	// AppendCmdLogs 批量写入命令日志
	AppendCmdLogs(ctx context.Context, logs []models.CmdLog) error
	// ListCmdLogs 按条件倒序查询
	ListCmdLogs(ctx context.Context, q CmdLogQuery) ([]models.CmdLog, error)
	// PurgeCmdLogs 删除早于 before 的日志，返回删除条数
	PurgeCmdLogs(ctx context.Context, before time.Time) (int64, error)

	// ---------- 采集记录 ----------
	CreateCollectRecord(ctx context.Context, rec *models.CollectRecord) error
	ListCollectRecords(ctx context.Context, limit int) ([]models.CollectRecord, error)

	// Ping 连通性检查
	Ping(ctx context.Context) error
}

// CmdLogQuery 命令日志查询条件；零值字段不参与过滤
type CmdLogQuery struct {
	SubCommand string
	OnlyFailed bool
	Since      time.Time
	Limit      int
}
