package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/avelichko/litepost/models"
	"github.com/avelichko/litepost/utils"
)

// StatsController provides site statistics such as entity counts and
// daily active readers.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the site. Individual count
// failures fall back to zero instead of failing the whole endpoint.
func (s *StatsController) GetStats(ctx *gin.Context) {
	counts := map[string]interface{}{}
	for name, model := range map[string]interface{}{
		"user_count":    &models.User{},
		"group_count":   &models.Group{},
		"post_count":    &models.Post{},
		"comment_count": &models.Comment{},
		"follow_count":  &models.Follow{},
	} {
		var n int64
		if err := s.db.Model(model).Count(&n).Error; err != nil {
			n = 0
		}
		counts[name] = n
	}

	// Daily active: sum of today's page views across all paths. String
	// date equality avoids timezone mismatches with the DATE column.
	var dailyActive int64
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&dailyActive).Error; err != nil {
		dailyActive = 0
	}
	counts["daily_active_count"] = dailyActive

	utils.Success(ctx, counts)
}
