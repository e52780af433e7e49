package logging

import (
	"log/slog"
	"time"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"gorm.io/gorm"
)

// Retention for persisted indexer error logs. The system_logs table only
// exists for operator debugging, so old rows have no value.
const (
	logRetention  = 30 * 24 * time.Hour
	cleanupPeriod = 24 * time.Hour
)

// StartCleanup prunes expired system_logs rows once per period until done
// is closed.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(cleanupPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().Add(-logRetention)
				result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
				switch {
				case result.Error != nil:
					slog.Error("system log retention sweep failed", "error", result.Error)
				case result.RowsAffected > 0:
					slog.Info("pruned expired system logs", "rows", result.RowsAffected)
				}
			case <-done:
				return
			}
		}
	}()
}
