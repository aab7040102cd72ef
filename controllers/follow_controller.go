package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/avelichko/litepost/models"
	"github.com/avelichko/litepost/queries"
	"github.com/avelichko/litepost/utils"
)

// FollowController maintains the follower edge set and serves the
// personalized feed derived from it.
type FollowController struct {
	db *gorm.DB
}

// NewFollowController creates a new FollowController instance.
func NewFollowController(db *gorm.DB) *FollowController {
	return &FollowController{db: db}
}

// Follow subscribes the viewer to the author named in the path.
// Following yourself or an author you already follow succeeds without
// creating anything; exactly one edge exists afterwards.
func (f *FollowController) Follow(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	author, err := f.resolveAuthor(ctx)
	if err != nil {
		return
	}

	if err := models.FollowAuthor(f.db, viewerID, author.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to follow user")
		return
	}

	following, _ := models.IsFollowing(f.db, viewerID, author.ID)
	utils.Success(ctx, gin.H{"following": following})
}

// Unfollow removes the viewer's subscription to the author named in the
// path. Removing a subscription that does not exist is a no-op.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, "unauthorized")
		return
	}

	author, err := f.resolveAuthor(ctx)
	if err != nil {
		return
	}

	if err := models.UnfollowAuthor(f.db, viewerID, author.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to unfollow user")
		return
	}

	utils.Success(ctx, gin.H{"following": false})
}

// Feed returns the paginated posts of every author the viewer follows,
// newest first. An empty follow set yields an empty page.
func (f *FollowController) Feed(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40122, "unauthorized")
		return
	}

	posts, err := queries.ListFeed(f.db, viewerID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load feed")
		return
	}

	utils.Success(ctx, gin.H{"page": utils.Paginate(posts, ctx.Query("page"))})
}

// resolveAuthor loads the user named in the :username path parameter,
// writing the error response itself when it cannot.
func (f *FollowController) resolveAuthor(ctx *gin.Context) (*models.User, error) {
	username := strings.TrimSpace(ctx.Param("username"))
	var author models.User
	if err := f.db.Where("username = ?", username).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40407, "user not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load user")
		}
		return nil, err
	}
	return &author, nil
}
