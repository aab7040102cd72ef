package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelichko/litepost/config"
	"github.com/avelichko/litepost/middleware"
	"github.com/avelichko/litepost/models"
	"github.com/avelichko/litepost/queries"
	"github.com/avelichko/litepost/utils"
)

// PostController serves post listings, post details and post/comment
// mutations. The injected cache holds rendered index pages only; every
// other view is recomputed on each request.
type PostController struct {
	db       *gorm.DB
	cache    utils.PageCache
	cacheTTL time.Duration
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, cache utils.PageCache, cacheTTL time.Duration) *PostController {
	return &PostController{db: db, cache: cache, cacheTTL: cacheTTL}
}

// Index returns the paginated global listing of posts, newest first.
// Rendered pages are cached for the configured TTL and stay byte-stable
// until expiry or an explicit admin clear; new posts become visible on
// the index only after one of the two.
func (p *PostController) Index(ctx *gin.Context) {
	pageNum := parsePage(ctx.Query("page"))

	key := utils.IndexCacheKey(pageNum)
	if b, ok := p.cache.Get(key); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := queries.ListAll(p.db)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}

	body, err := renderEnvelope(gin.H{"page": utils.PageAt(posts, pageNum)})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to render posts")
		return
	}
	p.cache.Put(key, body, p.cacheTTL)
	ctx.Data(http.StatusOK, "application/json", body)
}

// Groups returns the group directory.
func (p *PostController) Groups(ctx *gin.Context) {
	groups, err := queries.ListGroups(p.db)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to list groups")
		return
	}
	utils.Success(ctx, gin.H{"groups": groups})
}

// GroupPosts returns the paginated posts of one group. Always computed
// live; a slug that resolves to no group is a 404, an existing group
// with no posts is an empty page.
func (p *PostController) GroupPosts(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))
	group, posts, err := queries.ListByGroup(p.db, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to list group posts")
		return
	}
	utils.Success(ctx, gin.H{
		"group": group,
		"page":  utils.Paginate(posts, ctx.Query("page")),
	})
}

// UserPosts returns the paginated posts of one author.
func (p *PostController) UserPosts(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	author, posts, err := queries.ListByAuthor(p.db, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to list user posts")
		return
	}
	utils.Success(ctx, gin.H{
		"author": sanitizeUserResponse(*author),
		"page":   utils.Paginate(posts, ctx.Query("page")),
	})
}

// GetPost returns a single post with its comments and the viewer's
// follow state toward the author.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	post, err := queries.GetPost(p.db, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}

	comments, err := queries.ListComments(p.db, post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load comments")
		return
	}

	viewerID, _ := getUserID(ctx)
	following, err := models.IsFollowing(p.db, viewerID, post.UserID)
	if err != nil {
		following = false
	}

	utils.Success(ctx, gin.H{
		"post":      post,
		"comments":  comments,
		"following": following,
	})
}

// ListComments returns the paginated comments of a post, newest first.
func (p *PostController) ListComments(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
		return
	}
	comments, err := queries.ListComments(p.db, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to list comments")
		return
	}
	utils.Success(ctx, gin.H{"page": utils.Paginate(comments, ctx.Query("page"))})
}

type postRequest struct {
	Text    string `json:"text"`
	GroupID *uint  `json:"group_id"`
	Image   string `json:"image"`
}

// CreatePost allows authenticated users to publish a new post, optionally
// into a group.
func (p *PostController) CreatePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	text, groupID, fields := p.validatePostRequest(req)
	if len(fields) > 0 {
		utils.ValidationError(ctx, 40021, fields)
		return
	}

	post := models.Post{
		UserID:  userID,
		Text:    text,
		GroupID: groupID,
		Image:   strings.TrimSpace(req.Image),
	}
	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to create post")
		return
	}

	created, err := queries.GetPost(p.db, post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to create post")
		return
	}
	// The index cache is deliberately left untouched: the new post shows
	// up there once the snapshot expires or an operator clears it.
	utils.Success(ctx, gin.H{"post": created})
}

// UpdatePost allows the author, and only the author, to edit their post.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	postID, idOK := parseID(ctx.Param("id"))
	if !idOK {
		utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
		return
	}

	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load post")
		return
	}

	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only edit your own posts")
		return
	}

	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	text, groupID, fields := p.validatePostRequest(req)
	if len(fields) > 0 {
		utils.ValidationError(ctx, 40023, fields)
		return
	}

	post.Text = text
	post.GroupID = groupID
	post.Image = strings.TrimSpace(req.Image)
	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to update post")
		return
	}

	updated, err := queries.GetPost(p.db, post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to update post")
		return
	}
	utils.Success(ctx, gin.H{"post": updated})
}

// CreateComment allows authenticated users to comment on an existing post.
func (p *PostController) CreateComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	postID, idOK := parseID(ctx.Param("id"))
	if !idOK {
		utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
		return
	}

	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load post")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	text := utils.Sanitize(strings.TrimSpace(req.Text))
	if text == "" {
		meta, _ := models.CommentField("text")
		utils.ValidationError(ctx, 40025, map[string]string{
			"text": meta.Label + " is required",
		})
		return
	}

	comment := models.Comment{
		PostID: post.ID,
		UserID: userID,
		Text:   text,
	}
	if err := p.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to create comment")
		return
	}
	if err := p.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to load comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// UploadImage stores a post image under static/uploads and records it
// for timed cleanup.
func (p *PostController) UploadImage(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	defer file.Close()

	const maxSize = 10 * 1024 * 1024
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40031, "file size exceeds 10MB")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		meta, _ := models.PostField("image")
		utils.ValidationError(ctx, 40032, map[string]string{
			"image": meta.Label + " must be a jpg, png, gif or webp file",
		})
		return
	}

	now := time.Now()
	baseDir := filepath.Join(".", "static", "uploads", now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to create upload directory")
		return
	}

	safeName := fmt.Sprintf("%d_%s%s", userID, uuid.NewString(), ext)
	dstPath := filepath.Join(baseDir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusBadRequest, 40031, "file size exceeds 10MB")
		return
	}

	relURL := "/static/uploads/" + now.Format("2006") + "/" + now.Format("01") + "/" + safeName
	conf := config.Get()
	expireAt := now.Add(time.Duration(conf.UploadsSelfDestructMinutes) * time.Minute)
	absPath, _ := filepath.Abs(dstPath)
	if err := p.db.Create(&models.UploadedFile{FilePath: absPath, URL: relURL, ExpireAt: expireAt}).Error; err != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("failed to record uploaded file %s: %v", relURL, err)
	}

	utils.Success(ctx, gin.H{"url": relURL})
}

// validatePostRequest sanitizes the submitted text and resolves the
// optional group, collecting per-field messages built from the typed
// field metadata.
func (p *PostController) validatePostRequest(req postRequest) (string, *uint, map[string]string) {
	fields := map[string]string{}

	text := utils.Sanitize(strings.TrimSpace(req.Text))
	if text == "" {
		meta, _ := models.PostField("text")
		fields["text"] = meta.Label + " is required"
	}

	var groupID *uint
	if req.GroupID != nil {
		var group models.Group
		if err := p.db.First(&group, *req.GroupID).Error; err != nil {
			meta, _ := models.PostField("group")
			fields["group"] = meta.Label + " does not exist"
		} else {
			groupID = &group.ID
		}
	}

	return text, groupID, fields
}

func renderEnvelope(data interface{}) ([]byte, error) {
	return json.Marshal(utils.JSONResponse{Code: 0, Message: "success", Data: data})
}

func parsePage(raw string) int {
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return 1
}

func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func isAdmin(ctx *gin.Context) bool {
	unameVal, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return false
	}
	uname, _ := unameVal.(string)
	if uname == "" {
		return false
	}
	cfg := config.Get()
	for _, u := range cfg.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}
