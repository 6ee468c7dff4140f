package models

import "time"

// Quiz is the one daily challenge, keyed by UTC calendar date string.
// Options are stored as a JSON array of strings.
type Quiz struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Date          string    `gorm:"size:10;not null;uniqueIndex" json:"date"` // YYYY-MM-DD (UTC)
	Question      string    `gorm:"type:text;not null" json:"question"`
	Options       string    `gorm:"type:text;not null" json:"options"`
	CorrectAnswer int       `gorm:"not null" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// Streak is the per-user quiz streak record. users.streak mirrors
// CurrentStreak and both are written in the same transaction by AnswerToday.
type Streak struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	CurrentStreak    int       `gorm:"not null;default:0" json:"current_streak"`
	LastAnsweredDate string    `gorm:"size:10;not null" json:"last_answered_date"` // YYYY-MM-DD (UTC)
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
