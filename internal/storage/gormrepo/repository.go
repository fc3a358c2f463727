package gormrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taoyao-code/io-board/internal/storage"
	"github.com/taoyao-code/io-board/internal/storage/models"
)

// 单次查询上限
const maxListLimit = 1000

// Open 在已有 pgx 连接池上创建 *gorm.DB，两者共享同一组连接
func Open(pool *pgxpool.Pool) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
}

// Repository 基于 GORM 的 storage.Repo 实现。
type Repository struct {
	db *gorm.DB
}

// New 返回一个使用给定 *gorm.DB 的 Repo 实例。
func New(db *gorm.DB) storage.Repo {
	return &Repository{db: db}
}

// AppendCmdLogs 批量写入命令日志。
func (r *Repository) AppendCmdLogs(ctx context.Context, logs []models.CmdLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}

// ListCmdLogs 按条件倒序查询命令日志。
func (r *Repository) ListCmdLogs(ctx context.Context, q storage.CmdLogQuery) ([]models.CmdLog, error) {
	var logs []models.CmdLog
	tx := r.db.WithContext(ctx).Order("created_at DESC")
	if q.SubCommand != "" {
		tx = tx.Where("subcommand = ?", q.SubCommand)
	}
	if q.OnlyFailed {
		tx = tx.Where("success = ?", false)
	}
	if !q.Since.IsZero() {
		tx = tx.Where("created_at >= ?", q.Since)
	}
	tx = tx.Limit(clampLimit(q.Limit))
	if err := tx.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// PurgeCmdLogs 删除过期命令日志。
func (r *Repository) PurgeCmdLogs(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.CmdLog{})
	return res.RowsAffected, res.Error
}

// CreateCollectRecord 写入采集记录。
func (r *Repository) CreateCollectRecord(ctx context.Context, rec *models.CollectRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// ListCollectRecords 返回最近的采集记录。
func (r *Repository) ListCollectRecords(ctx context.Context, limit int) ([]models.CollectRecord, error) {
	var recs []models.CollectRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(clampLimit(limit)).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Ping 检查底层连接。
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func clampLimit(n int) int {
	if n <= 0 {
		return 100
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}
