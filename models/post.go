package models

import "time"

// Post is an entry authored by a user, optionally published into a group.
// The author is fixed at creation time; only the author may edit the text,
// group or image afterwards.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	GroupID   *uint     `gorm:"index" json:"group_id"`
	Image     string    `gorm:"size:1024" json:"image"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Group     *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group,omitempty"`
	Comments  []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

const excerptRunes = 15

// Excerpt returns the leading characters of the post text, used as its
// display name in listings and logs.
func (p Post) Excerpt() string {
	r := []rune(p.Text)
	if len(r) <= excerptRunes {
		return p.Text
	}
	return string(r[:excerptRunes])
}
