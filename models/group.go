package models

import "time"

// Group is an interest club any user may create. The member relation also
// serves as the user's "interests" set consulted by feed visibility.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null;index" json:"name"`
	Slug        string    `gorm:"size:128;not null;uniqueIndex" json:"slug"`
	Emoji       string    `gorm:"size:16" json:"emoji"`
	Description string    `gorm:"size:1024" json:"description"`
	IconURL     string    `gorm:"size:512" json:"icon_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupMember is the explicit membership relation for groups.
type GroupMember struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	GroupID   uint      `gorm:"not null;uniqueIndex:idx_group_member" json:"group_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_group_member;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
