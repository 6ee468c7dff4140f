package models

import "time"

// Reaction targets exactly one of post/comment/answer. Uniqueness per
// (target, user, emoji) is enforced by the toggle operation, which re-checks
// current state inside its transaction rather than relying on a constraint.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    *uint     `gorm:"index" json:"post_id,omitempty"`
	CommentID *uint     `gorm:"index" json:"comment_id,omitempty"`
	AnswerID  *uint     `gorm:"index" json:"answer_id,omitempty"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	EmojiName string    `gorm:"size:32;not null" json:"emoji_name"`
	CreatedAt time.Time `json:"created_at"`
}
