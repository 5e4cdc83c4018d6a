package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultRetention = 30 * 24 * time.Hour
	cleanupInterval  = 24 * time.Hour
)

// Cleanup deletes system_logs rows older than retention.
func Cleanup(ctx context.Context, db *gorm.DB, retention time.Duration, now time.Time) (int64, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	result := db.WithContext(ctx).
		Where("timestamp < ?", now.Add(-retention)).
		Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup runs Cleanup once a day until ctx is cancelled.
func StartCleanup(ctx context.Context, db *gorm.DB, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := Cleanup(ctx, db, retention, time.Now())
				if err != nil {
					slog.Error("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
