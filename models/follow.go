package models

import (
	"time"

	"gorm.io/gorm"
)

// Follow is a directed subscription edge from a follower to an author.
// The composite unique index guarantees at most one edge per pair; the
// handlers never create an edge where follower and author coincide.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"index;uniqueIndex:idx_follower_author;not null" json:"follower_id"`
	AuthorID   uint      `gorm:"index;uniqueIndex:idx_follower_author;not null" json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowAuthor subscribes follower to author. Following yourself or an
// already-followed author is a no-op; at most one edge ever exists per pair.
func FollowAuthor(db *gorm.DB, followerID, authorID uint) error {
	if followerID == authorID {
		return nil
	}
	return db.Where(Follow{FollowerID: followerID, AuthorID: authorID}).
		FirstOrCreate(&Follow{}).Error
}

// UnfollowAuthor removes the edge if present; removing a missing edge is a no-op.
func UnfollowAuthor(db *gorm.DB, followerID, authorID uint) error {
	return db.Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&Follow{}).Error
}

// IsFollowing reports whether follower has an edge to author.
// Anonymous viewers (followerID 0) never follow anyone.
func IsFollowing(db *gorm.DB, followerID, authorID uint) (bool, error) {
	if followerID == 0 {
		return false, nil
	}
	var count int64
	err := db.Model(&Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	return count > 0, err
}

// FollowerCount returns how many users follow the given author.
func FollowerCount(db *gorm.DB, authorID uint) (int64, error) {
	var count int64
	err := db.Model(&Follow{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// FollowingCount returns how many authors the given user follows.
func FollowingCount(db *gorm.DB, followerID uint) (int64, error) {
	var count int64
	err := db.Model(&Follow{}).Where("follower_id = ?", followerID).Count(&count).Error
	return count, err
}
