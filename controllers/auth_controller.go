package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/avelichko/litepost/models"
	"github.com/avelichko/litepost/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController handles registration, login and public profiles.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a new account and issues a token for it.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Email    string `json:"email" binding:"omitempty,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	if !validUsername(username) {
		utils.ValidationError(ctx, 40011, map[string]string{
			"username": "username may only contain letters, digits, '.', '-' and '_'",
		})
		return
	}
	if !validPassword(req.Password) {
		utils.ValidationError(ctx, 40012, map[string]string{
			"password": "password must be at least 6 characters and contain a letter and a digit",
		})
		return
	}

	var existing models.User
	err := a.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		utils.Error(ctx, http.StatusConflict, 40910, "username already taken")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to check username")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to hash password")
		return
	}

	user := models.User{
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"token": token, "user": sanitizeUserResponse(user)})
}

// Login verifies credentials and issues a token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"token": token, "user": sanitizeUserResponse(user)})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		token := strings.TrimSpace(parts[1])
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's own record.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "unauthorized")
		return
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40408, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": sanitizeUserResponse(user)})
}

// Profile returns a public author profile: bio, post count, follower
// counts and whether the current viewer follows them. Anonymous viewers
// always see following=false.
func (a *AuthController) Profile(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	var user models.User
	if err := a.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40409, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to load user")
		return
	}

	var postCount int64
	if err := a.db.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&postCount).Error; err != nil {
		postCount = 0
	}
	followers, _ := models.FollowerCount(a.db, user.ID)
	followingCount, _ := models.FollowingCount(a.db, user.ID)

	viewerID, _ := getUserID(ctx)
	following, err := models.IsFollowing(a.db, viewerID, user.ID)
	if err != nil {
		following = false
	}

	utils.Success(ctx, gin.H{
		"author":          sanitizeUserResponse(user),
		"post_count":      postCount,
		"follower_count":  followers,
		"following_count": followingCount,
		"following":       following,
	})
}

func validUsername(s string) bool {
	if len(s) < 3 || len(s) > 64 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func validPassword(s string) bool {
	if len(s) < 6 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// sanitizeUserResponse strips credential fields from user payloads.
func sanitizeUserResponse(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"bio":        user.Bio,
		"avatar_url": user.AvatarURL,
		"created_at": user.CreatedAt,
	}
}
