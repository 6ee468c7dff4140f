package models

import (
	"time"

	"gorm.io/gorm"
)

// User is created on first authenticated contact and keyed by the identity
// provider's stable subject id. Streak and points are denormalized mirrors
// owned by the quiz and reaction/acceptance services respectively. Birthday
// is a YYYY-MM-DD string; SocialLinks holds a JSON array of {platform, url}.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SubjectID    string         `gorm:"size:255;uniqueIndex" json:"-"`
	Name         string         `gorm:"size:128;not null" json:"name"`
	Email        string         `gorm:"size:255;index" json:"email"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	BannerURL    string         `gorm:"size:512" json:"banner_url"`
	Bio          string         `gorm:"size:1024" json:"bio"`
	Birthday     string         `gorm:"size:10" json:"birthday"`
	SocialLinks  string         `gorm:"type:text" json:"social_links"`
	DepartmentID *uint          `gorm:"index" json:"department_id"`
	Streak       int            `gorm:"default:0" json:"streak"`
	Points       int            `gorm:"default:0" json:"points"`
	LastActiveAt *time.Time     `json:"last_active_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Badges       []UserBadge    `json:"badges,omitempty"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// UserBadge is one earned badge. The badge evaluator replaces a user's rows
// wholesale on recompute; nothing else writes this table.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"-"`
	Badge     string    `gorm:"size:64;not null;uniqueIndex:idx_user_badge" json:"badge"`
	CreatedAt time.Time `json:"created_at"`
}
