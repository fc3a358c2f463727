package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/io-board/internal/config"
	"github.com/taoyao-code/io-board/internal/migrate"
	"github.com/taoyao-code/io-board/internal/storage"
	"github.com/taoyao-code/io-board/internal/storage/gormrepo"
	pgstorage "github.com/taoyao-code/io-board/internal/storage/pg"
)

// ConnectDBAndMigrate 建立数据库连接并按需执行迁移
func ConnectDBAndMigrate(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	dbpool, err := pgstorage.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error("db connect error", zap.Error(err))
		return nil, err
	}
	if cfg.AutoMigrate {
		applied, err := (migrate.Runner{}).Up(ctx, dbpool)
		if err != nil {
			log.Error("db migrate error", zap.Error(err))
			return dbpool, err
		}
		log.Info("db migrations applied", zap.Int64s("versions", applied))
	}
	return dbpool, nil
}

// NewRepository 在连接池之上构造 gorm 仓储
func NewRepository(dbpool *pgxpool.Pool) (storage.Repo, error) {
	db, err := gormrepo.Open(dbpool)
	if err != nil {
		return nil, err
	}
	return gormrepo.New(db), nil
}
