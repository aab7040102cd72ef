package utils

import (
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/avelichko/litepost/models"
)

// StartUploadCleaner launches a background goroutine that periodically
// removes post images whose retention window has passed, together with
// their tracking rows. Best-effort: failures are logged and retried on
// the next tick.
func StartUploadCleaner(db *gorm.DB, interval time.Duration, enabled func() bool) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing migrations at startup.
			time.Sleep(interval)
			if db == nil || (enabled != nil && !enabled()) {
				continue
			}
			var items []models.UploadedFile
			if err := db.Where("expire_at <= ?", time.Now()).Limit(100).Find(&items).Error; err != nil {
				if Sugar != nil {
					Sugar.Warnf("upload cleaner query failed: %v", err)
				}
				continue
			}
			for _, it := range items {
				if it.FilePath != "" {
					_ = os.Remove(it.FilePath)
				}
				// Remove the row regardless of file deletion outcome.
				if err := db.Delete(&models.UploadedFile{}, it.ID).Error; err != nil && Sugar != nil {
					Sugar.Warnf("upload cleaner delete row failed: %v", err)
				}
			}
		}
	}()
}
