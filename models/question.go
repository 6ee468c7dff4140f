package models

import "time"

// Question is a Q&A entry. AcceptedAnswerID is only ever moved by the accept
// operation, which also settles the point transfer.
type Question struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AuthorID         uint      `gorm:"index;not null" json:"author_id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Body             string    `gorm:"type:text;not null" json:"body"`
	Tags             string    `gorm:"size:512" json:"tags"` // comma separated
	AcceptedAnswerID *uint     `json:"accepted_answer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Author           User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// Answer to a question. Reactions on answers carry points for the author.
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"index;not null" json:"question_id"`
	AuthorID   uint      `gorm:"index;not null" json:"author_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
