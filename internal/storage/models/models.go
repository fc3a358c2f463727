package models

import (
	"time"
)

// 注意：
// - 保持与 internal/migrate/sql 下的迁移脚本对齐
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// CmdLog 映射 cmd_log 表（IO 板命令审计日志）
type CmdLog struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Command    string `gorm:"column:command;type:varchar(2);not null"`
	SubCommand string `gorm:"column:subcommand;type:varchar(2);not null;index:idx_cmdlog_sub_time,priority:1"`
	Request    []byte `gorm:"column:request"`
	Response   []byte `gorm:"column:response"`
	Success    bool   `gorm:"column:success;not null"`
	Attempts   int32  `gorm:"column:attempts;not null"`
	DurationMs int32  `gorm:"column:duration_ms;not null"`
	// 最后一次失败原因，成功时为空
	Error     *string   `gorm:"column:error;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_cmdlog_sub_time,priority:2,sort:desc"`
}

func (CmdLog) TableName() string { return "cmd_log" }

// CollectRecord 映射 collect_records 表（一次采集流程结束时的称重结果）
type CollectRecord struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SysID     string    `gorm:"column:sys_id;type:text;not null;index"`
	DeviceIdx string    `gorm:"column:device_idx;type:text;not null"`
	Total     float64   `gorm:"column:total;not null"`
	Weights   []byte    `gorm:"column:weights;type:jsonb"` // 10 通道读数 JSON 数组
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CollectRecord) TableName() string { return "collect_records" }
