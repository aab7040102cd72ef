package controllers

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/litepost/models"
	"github.com/avelichko/litepost/utils"
)

// The index listing is served from a rendered snapshot: creating a post
// must not change the response until the cache is cleared or expires.
func TestIndexCacheServesStaleSnapshotUntilCleared(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createPost(t, alice, "first post", nil, time.Now().Add(-time.Hour))

	w1 := env.request(t, http.MethodGet, "/api/v1/posts", "", nil)
	requireStatus(t, w1, http.StatusOK)
	body1 := w1.Body.String()
	require.Contains(t, body1, "first post")

	env.createPost(t, alice, "second post", nil, time.Now())

	w2 := env.request(t, http.MethodGet, "/api/v1/posts", "", nil)
	requireStatus(t, w2, http.StatusOK)
	assert.Equal(t, body1, w2.Body.String(), "cached page must be byte-identical")
	assert.NotContains(t, w2.Body.String(), "second post")

	env.cache.Invalidate(utils.IndexCachePrefix)

	w3 := env.request(t, http.MethodGet, "/api/v1/posts", "", nil)
	requireStatus(t, w3, http.StatusOK)
	assert.NotEqual(t, body1, w3.Body.String())
	assert.Contains(t, w3.Body.String(), "second post")
}

func TestAdminCacheClear(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin")
	bob := env.createUser(t, "bob")
	env.createPost(t, bob, "before clear", nil, time.Now().Add(-time.Minute))

	w := env.request(t, http.MethodGet, "/api/v1/posts", "", nil)
	requireStatus(t, w, http.StatusOK)
	stale := w.Body.String()

	env.createPost(t, bob, "after clear", nil, time.Now())

	// Regular users cannot clear the cache.
	w = env.request(t, http.MethodPost, "/api/v1/admin/cache/clear", env.token(t, bob), nil)
	requireStatus(t, w, http.StatusForbidden)
	w = env.request(t, http.MethodGet, "/api/v1/posts", "", nil)
	assert.Equal(t, stale, w.Body.String())

	w = env.request(t, http.MethodPost, "/api/v1/admin/cache/clear", env.token(t, admin), nil)
	requireStatus(t, w, http.StatusOK)

	w = env.request(t, http.MethodGet, "/api/v1/posts", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "after clear")
}

func TestGroupPageScenario(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	group := env.createGroup(t, "Test Group", "testgroup")
	env.createPost(t, alice, "group post", &group, time.Now())

	w := env.request(t, http.MethodGet, "/api/v1/groups/testgroup/posts", "", nil)
	requireStatus(t, w, http.StatusOK)
	data := decodeData(t, w)
	require.Len(t, pageItems(t, data), 1)

	// A numeric page past the end is a valid, empty page.
	w = env.request(t, http.MethodGet, "/api/v1/groups/testgroup/posts?page=2", "", nil)
	requireStatus(t, w, http.StatusOK)
	data = decodeData(t, w)
	assert.Empty(t, pageItems(t, data))
}

func TestGroupPostsUnknownSlug(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/api/v1/groups/no-such-group/posts", "", nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodPost, "/api/v1/posts", "", map[string]string{"text": "hello"})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	token := env.token(t, alice)

	w := env.request(t, http.MethodPost, "/api/v1/posts", token, map[string]string{"text": "   "})
	requireStatus(t, w, http.StatusBadRequest)
	data := decodeData(t, w)
	fields, ok := data["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields["text"], "Post text")

	var count int64
	require.NoError(t, env.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count, "invalid submissions must not create posts")
}

func TestCreatePostUnknownGroup(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	missing := uint(999)

	w := env.request(t, http.MethodPost, "/api/v1/posts", env.token(t, alice), map[string]interface{}{
		"text":     "hello",
		"group_id": missing,
	})
	requireStatus(t, w, http.StatusBadRequest)
	data := decodeData(t, w)
	fields, ok := data["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "group")
}

func TestCreateAndFetchPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	group := env.createGroup(t, "Test Group", "testgroup")

	w := env.request(t, http.MethodPost, "/api/v1/posts", env.token(t, alice), map[string]interface{}{
		"text":     "a brand new post",
		"group_id": group.ID,
	})
	requireStatus(t, w, http.StatusOK)
	data := decodeData(t, w)
	post, ok := data["post"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "a brand new post", post["text"])

	id := int(post["id"].(float64))
	w = env.request(t, http.MethodGet, "/api/v1/posts/"+strconv.Itoa(id), "", nil)
	requireStatus(t, w, http.StatusOK)
	data = decodeData(t, w)
	fetched := data["post"].(map[string]interface{})
	assert.Equal(t, "a brand new post", fetched["text"])
	assert.Equal(t, false, data["following"])
}

func TestUpdatePostOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, alice, "original text", nil, time.Now())

	w := env.request(t, http.MethodPut, "/api/v1/posts/"+strconv.Itoa(int(post.ID)), env.token(t, bob), map[string]string{"text": "hijacked"})
	requireStatus(t, w, http.StatusForbidden)

	var unchanged models.Post
	require.NoError(t, env.db.First(&unchanged, post.ID).Error)
	assert.Equal(t, "original text", unchanged.Text)

	w = env.request(t, http.MethodPut, "/api/v1/posts/"+strconv.Itoa(int(post.ID)), env.token(t, alice), map[string]string{"text": "edited by author"})
	requireStatus(t, w, http.StatusOK)
	require.NoError(t, env.db.First(&unchanged, post.ID).Error)
	assert.Equal(t, "edited by author", unchanged.Text)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	w := env.request(t, http.MethodPost, "/api/v1/posts/12345/comments", env.token(t, alice), map[string]string{"text": "hello?"})
	requireStatus(t, w, http.StatusNotFound)
}

func TestCreateComment(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, alice, "commentable", nil, time.Now())
	other := env.createPost(t, alice, "untouched", nil, time.Now())

	w := env.request(t, http.MethodPost, "/api/v1/posts/"+strconv.Itoa(int(post.ID))+"/comments", env.token(t, bob), map[string]string{"text": "nice post"})
	requireStatus(t, w, http.StatusOK)

	w = env.request(t, http.MethodGet, "/api/v1/posts/"+strconv.Itoa(int(post.ID))+"/comments", "", nil)
	requireStatus(t, w, http.StatusOK)
	require.Len(t, pageItems(t, decodeData(t, w)), 1)

	// The comment is attached to exactly one post.
	w = env.request(t, http.MethodGet, "/api/v1/posts/"+strconv.Itoa(int(other.ID))+"/comments", "", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Empty(t, pageItems(t, decodeData(t, w)))
}

func TestGetPostNotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/api/v1/posts/999", "", nil)
	requireStatus(t, w, http.StatusNotFound)
	w = env.request(t, http.MethodGet, "/api/v1/posts/abc", "", nil)
	requireStatus(t, w, http.StatusNotFound)
}
