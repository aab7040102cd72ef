package models

import "time"

// Group is a named category that posts can be published into.
// Deleting a group never deletes its posts: the posts.group_id
// foreign key is declared ON DELETE SET NULL so they fall back to
// the global listing only.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Posts       []Post    `json:"-"`
}

// String returns the display name of the group.
func (g Group) String() string {
	return g.Title
}
