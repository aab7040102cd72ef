// Package queries builds the scoped, ordered result sets behind every
// listing view: global index, group page, author profile, follow feed
// and per-post comments. All functions are read-only; zero matching
// rows is a normal empty result, and only an unresolvable scoping
// entity (group slug, username, post id) yields gorm.ErrRecordNotFound.
package queries

import (
	"gorm.io/gorm"

	"github.com/avelichko/litepost/models"
)

// postOrder is the global display ordering: newest first, with the id
// as a tiebreak so posts created within the same instant stay stable.
const postOrder = "created_at DESC, id DESC"

const commentOrder = "created_at DESC, id DESC"

// ListAll returns every post, newest first, with author and group loaded.
func ListAll(db *gorm.DB) ([]models.Post, error) {
	var posts []models.Post
	err := db.Preload("User").Preload("Group").
		Order(postOrder).
		Find(&posts).Error
	return posts, err
}

// ListByGroup returns the group identified by slug and its posts, newest
// first. Posts without a group never match any slug.
func ListByGroup(db *gorm.DB, slug string) (*models.Group, []models.Post, error) {
	var group models.Group
	if err := db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, nil, err
	}
	var posts []models.Post
	err := db.Preload("User").Preload("Group").
		Where("group_id = ?", group.ID).
		Order(postOrder).
		Find(&posts).Error
	return &group, posts, err
}

// ListByAuthor returns the user identified by username and their posts,
// newest first.
func ListByAuthor(db *gorm.DB, username string) (*models.User, []models.Post, error) {
	var author models.User
	if err := db.Where("username = ?", username).First(&author).Error; err != nil {
		return nil, nil, err
	}
	var posts []models.Post
	err := db.Preload("User").Preload("Group").
		Where("user_id = ?", author.ID).
		Order(postOrder).
		Find(&posts).Error
	return &author, posts, err
}

// ListFeed returns posts authored by users the viewer follows, newest
// first. A viewer following nobody gets an empty feed; the viewer's own
// posts appear only behind a self-edge, which the handlers never create.
func ListFeed(db *gorm.DB, viewerID uint) ([]models.Post, error) {
	var posts []models.Post
	err := db.Preload("User").Preload("Group").
		Where("user_id IN (?)",
			db.Table("follows").Select("author_id").Where("follower_id = ?", viewerID),
		).
		Order(postOrder).
		Find(&posts).Error
	return posts, err
}

// ListGroups returns the group directory ordered by title.
func ListGroups(db *gorm.DB) ([]models.Group, error) {
	var groups []models.Group
	err := db.Order("title ASC").Find(&groups).Error
	return groups, err
}

// GetPost loads a single post with its author and group.
func GetPost(db *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := db.Preload("User").Preload("Group").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListComments returns the comments of a post, newest first. The post
// must exist; comments of other posts are never included.
func ListComments(db *gorm.DB, postID uint) ([]models.Comment, error) {
	var post models.Post
	if err := db.Select("id").First(&post, postID).Error; err != nil {
		return nil, err
	}
	var comments []models.Comment
	err := db.Preload("User").
		Where("post_id = ?", post.ID).
		Order(commentOrder).
		Find(&comments).Error
	return comments, err
}
