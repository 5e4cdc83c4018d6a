package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/database/migrations"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

var gooseOnce sync.Once
var gooseErr error

// goose keeps its dialect and filesystem in package globals.
func setupGoose() error {
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)
		gooseErr = goose.SetDialect("postgres")
	})
	return gooseErr
}

func rawDB(db *gorm.DB) (*sql.DB, error) {
	if err := setupGoose(); err != nil {
		return nil, fmt.Errorf("goose setup: %w", err)
	}
	return db.DB()
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := rawDB(db)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Purge rolls back every applied migration, dropping all managed tables.
func Purge(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := rawDB(db)
	if err != nil {
		return err
	}
	if err := goose.ResetContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migrate reset: %w", err)
	}
	return nil
}

// Reset drops and recreates the schema.
func Reset(ctx context.Context, db *gorm.DB) error {
	if err := Purge(ctx, db); err != nil {
		return err
	}
	return Migrate(ctx, db)
}

// Version reports the currently applied migration version.
func Version(ctx context.Context, db *gorm.DB) (int64, error) {
	sqlDB, err := rawDB(db)
	if err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	return v, nil
}
