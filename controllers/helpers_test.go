package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avelichko/litepost/config"
	"github.com/avelichko/litepost/middleware"
	"github.com/avelichko/litepost/models"
	"github.com/avelichko/litepost/utils"
)

type testEnv struct {
	db    *gorm.DB
	cache utils.PageCache
	r     *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.AppConfig{
		JWTSecret:            "test-secret",
		IndexCacheTTLSeconds: 20,
		AdminUsernames:       []string{"admin"},
	})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Group{}, &models.Post{},
		&models.Comment{}, &models.Follow{}, &models.PageView{},
		&models.UploadedFile{},
	))

	cache := utils.NewMemoryPageCache()

	r := gin.New()
	authController := NewAuthController(db)
	postController := NewPostController(db, cache, 20*time.Second)
	followController := NewFollowController(db)
	statsController := NewStatsController(db)
	adminController := NewAdminController(cache)

	api := r.Group("/api/v1")
	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.GET("/auth/me", middleware.AuthRequired(), authController.Me)

	api.GET("/posts", postController.Index)
	api.GET("/posts/:id", middleware.AuthOptional(), postController.GetPost)
	api.GET("/posts/:id/comments", postController.ListComments)
	api.GET("/groups", postController.Groups)
	api.GET("/groups/:slug/posts", postController.GroupPosts)
	api.GET("/users/:username", middleware.AuthOptional(), authController.Profile)
	api.GET("/users/:username/posts", postController.UserPosts)
	api.GET("/stats", statsController.GetStats)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.POST("/users/:username/follow", followController.Follow)
	protected.DELETE("/users/:username/follow", followController.Unfollow)
	protected.GET("/feed", followController.Feed)
	protected.POST("/admin/cache/clear", adminController.ClearIndexCache)

	return &testEnv{db: db, cache: cache, r: r}
}

func (e *testEnv) createUser(t *testing.T, username string) models.User {
	t.Helper()
	u := models.User{Username: username}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) createPost(t *testing.T, author models.User, text string, group *models.Group, at time.Time) models.Post {
	t.Helper()
	p := models.Post{UserID: author.ID, Text: text, CreatedAt: at}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *testEnv) createGroup(t *testing.T, title, slug string) models.Group {
	t.Helper()
	g := models.Group{Title: title, Slug: slug}
	require.NoError(t, e.db.Create(&g).Error)
	return g
}

func (e *testEnv) token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

// decodeData unpacks the data field of the uniform response envelope.
func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func pageItems(t *testing.T, data map[string]interface{}) []interface{} {
	t.Helper()
	page, ok := data["page"].(map[string]interface{})
	require.True(t, ok, "payload has no page object")
	items, ok := page["items"].([]interface{})
	require.True(t, ok, "page has no items list")
	return items
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
