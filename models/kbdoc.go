package models

import "time"

// KBDoc is a knowledge-base document used to ground AI answers.
type KBDoc struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Tags      string    `gorm:"size:512" json:"tags"`
	AuthorID  *uint     `gorm:"index" json:"author_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
