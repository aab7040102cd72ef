package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/litepost/utils"
)

// AdminController exposes operator actions. Access is limited to the
// usernames listed in the configuration.
type AdminController struct {
	cache utils.PageCache
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(cache utils.PageCache) *AdminController {
	return &AdminController{cache: cache}
}

// ClearIndexCache drops every cached index page so the next read
// recomputes the listing. This is the only write-path into the index
// cache besides TTL expiry.
func (a *AdminController) ClearIndexCache(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40310, "admin access required")
		return
	}
	a.cache.Invalidate(utils.IndexCachePrefix)
	utils.Success(ctx, gin.H{"message": "index cache cleared"})
}
