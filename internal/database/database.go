package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolSettings is the database/sql pool shape derived from configuration.
type PoolSettings struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// Pool maps the pool size and overflow onto database/sql limits. A disabled
// pool keeps no idle connections so every session dials fresh.
func Pool(cfg *config.Config) PoolSettings {
	if cfg.DBPoolDisable {
		return PoolSettings{MaxOpen: 0, MaxIdle: 0, MaxLifetime: cfg.DBPoolRecycle}
	}
	return PoolSettings{
		MaxOpen:     cfg.DBPoolSize + cfg.DBPoolMaxOverflow,
		MaxIdle:     cfg.DBPoolSize,
		MaxLifetime: cfg.DBPoolRecycle,
		MaxIdleTime: cfg.DBPoolRecycle,
	}
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.DBEcho {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		TranslateError:         true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	pool := Pool(cfg)
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.MaxIdleTime)

	if cfg.DBPoolPrePing {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DBPoolTimeout)
		defer cancel()
		if err := Ping(ctx, db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to reach database: %w", err)
		}
	}

	slog.Info("database connected", "max_open", pool.MaxOpen, "max_idle", pool.MaxIdle)
	return db, nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
